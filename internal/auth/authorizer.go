// Package auth attaches credentials to requests sent to the persistence API.
package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

var authLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

type Authorizer interface {
	// Authorize adds credentials to req.
	Authorize(ctx context.Context, req *http.Request) error
	// Reset drops cached credentials after the API rejected them.
	Reset()
}

// None sends requests without credentials.
type None struct{}

func (None) Authorize(context.Context, *http.Request) error { return nil }
func (None) Reset()                                         {}

// StaticToken sends a fixed bearer token.
type StaticToken struct {
	Header string
	Token  string
}

func NewStaticToken(header, token string) *StaticToken {
	if header == "" {
		header = "Authorization"
	}
	return &StaticToken{Header: header, Token: token}
}

func (s *StaticToken) Authorize(_ context.Context, req *http.Request) error {
	if s.Token != "" {
		req.Header.Set(s.Header, "Bearer "+s.Token)
	}
	return nil
}

// Reset is a no-op: a static token cannot be refreshed, the user has to
// provide a new one.
func (s *StaticToken) Reset() {}
