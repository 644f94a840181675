// Package popclient attaches PoP request tokens to outgoing HTTP requests.
//
// Transport is an http.RoundTripper: every request that flows through it is
// snapshotted, bound to a fresh access token from the configured provider,
// and sent with the minted token attached. The caller's request is cloned,
// never mutated, and nothing is retried here — retry policy belongs to the
// caller.
package popclient

import (
	"context"
	"errors"
	"net/http"

	goPoP "github.com/MrEthical07/goPoP"
)

var (
	// ErrNilEngine is returned when the transport has no engine to mint with.
	ErrNilEngine = errors.New("popclient: nil engine")
	// ErrNilTokenProvider is returned when the transport has no access-token
	// provider.
	ErrNilTokenProvider = errors.New("popclient: nil token provider")
)

// TokenProvider supplies the bearer access token each minted PoP token binds.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (string, error)

// AccessToken implements TokenProvider.
func (f TokenProviderFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken is a TokenProvider that always returns the same access token.
type StaticToken string

// AccessToken implements TokenProvider.
func (s StaticToken) AccessToken(context.Context) (string, error) {
	return string(s), nil
}

// Transport signs each outgoing request with a PoP token before delegating to
// Base (http.DefaultTransport when nil).
type Transport struct {
	Base   http.RoundTripper
	Engine *goPoP.Engine
	Tokens TokenProvider
}

// NewTransport builds a Transport over base.
func NewTransport(base http.RoundTripper, engine *goPoP.Engine, tokens TokenProvider) *Transport {
	return &Transport{Base: base, Engine: engine, Tokens: tokens}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t == nil || t.Engine == nil {
		return nil, ErrNilEngine
	}
	if t.Tokens == nil {
		return nil, ErrNilTokenProvider
	}

	ctx := req.Context()

	accessToken, err := t.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	// RoundTrippers must not mutate the caller's request
	clone := req.Clone(ctx)

	if err := t.Engine.SignRequest(ctx, clone, accessToken); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

var _ http.RoundTripper = (*Transport)(nil)
