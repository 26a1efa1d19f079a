package utils // package utils provides the hashing and token helpers used by authentication

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quemtemboca/marketplace-api/internal/config"
	"github.com/quemtemboca/marketplace-api/internal/model"
)

// ErrTokenInvalid is the single error returned for any token that fails
// verification: bad signature, wrong issuer or audience, expired, malformed
// or carrying an unreadable subject.  Callers cannot tell these apart.
var ErrTokenInvalid = errors.New("token invalid")

// AccessToken represents a signed JWT access token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenCodec signs and verifies HS256 access tokens.  The identity claim is
// serialized to JSON and stored in the registered "sub" claim.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// CodecOption customizes a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used when signing.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec builds a codec from the process-wide auth configuration.
func NewTokenCodec(cfg config.AuthConfig, opts ...CodecOption) *TokenCodec {
	c := &TokenCodec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.Expiration,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Sign issues a token whose subject is the JSON form of claim.
func (c *TokenCodec) Sign(claim model.IdentityClaim) (AccessToken, error) {
	sub, err := json.Marshal(claim)
	if err != nil {
		return AccessToken{}, err
	}
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   string(sub),
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks signature, issuer, audience and expiration and returns the
// embedded identity claim.  Every failure is reported as ErrTokenInvalid.
func (c *TokenCodec) Verify(raw string) (model.IdentityClaim, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return model.IdentityClaim{}, ErrTokenInvalid
	}
	var claim model.IdentityClaim
	if err := json.Unmarshal([]byte(claims.Subject), &claim); err != nil || claim.ID == 0 {
		return model.IdentityClaim{}, ErrTokenInvalid
	}
	return claim, nil
}
