package goPoP

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by this package wraps exactly one of
// these, so callers can classify with errors.Is without matching strings.
var (
	// ErrInvalidArgument reports a null or empty required input: nil descriptor,
	// empty access token, missing headers when h is enabled, missing URI when
	// u or p is enabled, empty method when m is enabled.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClaimCreation reports an input that is present but malformed under the
	// PoP rules: a lower-case method, a relative URI where an absolute one is
	// required.
	ErrClaimCreation = errors.New("claim creation failed")
	// ErrSigning reports a delegated failure from the signature primitive:
	// unknown algorithm, key of the wrong type, or a failed signing operation.
	ErrSigning = errors.New("signing failed")
)

var (
	// ErrNilDescriptor is returned when token creation is invoked without a descriptor.
	ErrNilDescriptor = fmt.Errorf("%w: nil creation descriptor", ErrInvalidArgument)
	// ErrEmptyAccessToken is returned when the descriptor carries no access token.
	ErrEmptyAccessToken = fmt.Errorf("%w: access token is empty", ErrInvalidArgument)
	// ErrMissingSigningMaterial is returned when neither the descriptor nor the
	// engine's key source supplies signing material.
	ErrMissingSigningMaterial = fmt.Errorf("%w: signing material is required", ErrInvalidArgument)
	// ErrMissingHeaders is returned when the h claim is enabled but the request
	// carries no header collection at all.
	ErrMissingHeaders = fmt.Errorf("%w: headers required for h claim", ErrInvalidArgument)
	// ErrMissingURI is returned when the u or p claim is enabled but the request
	// carries no URI.
	ErrMissingURI = fmt.Errorf("%w: uri required for u and p claims", ErrInvalidArgument)
	// ErrEmptyMethod is returned when the m claim is enabled but the request
	// method is absent.
	ErrEmptyMethod = fmt.Errorf("%w: method required for m claim", ErrInvalidArgument)

	// ErrMethodNotUpperCase is returned when the request method is present but
	// not upper-case. The method is validated, never normalized.
	ErrMethodNotUpperCase = fmt.Errorf("%w: method must be upper-case", ErrClaimCreation)
	// ErrRelativeURI is returned when the u claim is enabled but the request URI
	// has no scheme or host.
	ErrRelativeURI = fmt.Errorf("%w: u claim requires an absolute uri", ErrClaimCreation)

	// ErrUnknownAlgorithm is returned when the signing material names an
	// algorithm the signature primitive does not register.
	ErrUnknownAlgorithm = fmt.Errorf("%w: unknown signing algorithm", ErrSigning)

	// ErrKeySourceUnavailable is returned by Engine.Issue when the configured
	// key source cannot produce signing material.
	ErrKeySourceUnavailable = errors.New("key source unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or
	// unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
