package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/api/users/:id", func(c echo.Context) error {
		l := logutil.GetOrDefault(c.Request().Context())
		l.Info().Msg("inside")
		return echo.ErrNotFound
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/3", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "rid-1")
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, summary map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &summary))
	assert.Equal(t, "rid-1", inside["request_id"])
	assert.Equal(t, "/api/users/:id", summary["path"])
	assert.Equal(t, float64(http.StatusNotFound), summary["status"])
}
