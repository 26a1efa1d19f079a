package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
	"github.com/quemtemboca/marketplace-api/internal/service"
)

// errorBody is the shape of every rejection.  Message is a string, or a list
// of strings for validation failures.
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

var kindStatus = map[service.Kind]int{
	service.KindInternal:           http.StatusInternalServerError,
	service.KindInvalidCredentials: http.StatusUnauthorized,
	service.KindTokenInvalid:       http.StatusUnauthorized,
	service.KindUnauthorized:       http.StatusUnauthorized,
	service.KindForbidden:          http.StatusForbidden,
	service.KindNotFound:           http.StatusNotFound,
	service.KindConflict:           http.StatusConflict,
}

// ErrorHandler is installed as echo's HTTPErrorHandler.  Service errors map
// to a status by kind; echo errors keep their status; anything else is a 500
// whose detail is logged and never written to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		msg    any
	)
	var svcErr *service.Error
	var valErr *ValidationError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &valErr):
		status, msg = http.StatusUnprocessableEntity, valErr.Messages
	case errors.As(err, &svcErr):
		status, msg = kindStatus[svcErr.Kind], svcErr.Message
		if status == 0 {
			status = http.StatusInternalServerError
		}
	case errors.As(err, &httpErr):
		status, msg = httpErr.Code, httpErr.Message
		if status >= 500 {
			msg = service.ErrInternal.Message
		}
	default:
		l := logutil.GetOrDefault(c.Request().Context())
		l.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		status, msg = http.StatusInternalServerError, service.ErrInternal.Message
	}

	body := errorBody{StatusCode: status, Message: msg, Error: http.StatusText(status)}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		l := logutil.GetOrDefault(c.Request().Context())
		l.Error().Err(err).Msg("write error response")
	}
}
