package goPoP

import (
	"context"
	"net/url"
	"time"

	"github.com/MrEthical07/goPoP/internal/canon"
)

// HeaderField is one entry of the ordered header multi-map carried by
// [HTTPRequestData]. The same name may appear in several fields, under any
// casing; canonicalization resolves that explicitly.
type HeaderField = canon.HeaderField

// HTTPRequestData is the immutable per-token snapshot of the request being
// bound. Any field may be absent when the corresponding claim is disabled.
type HTTPRequestData struct {
	// Method is the HTTP method, required upper-case when the m claim is
	// enabled. It is validated, never normalized.
	Method string
	// URL is the request URI. The u claim requires it to be absolute; the
	// p and q claims accept relative URIs.
	URL *url.URL
	// Headers is an ordered multi-map. Order is the canonical order of the
	// h claim's surviving names, so it must be deterministic for the same
	// logical request.
	Headers []HeaderField
	// Body is the raw request body. nil is treated as a zero-length body by
	// the b claim, not skipped.
	Body []byte
}

// SigningMaterial names the key and algorithm used to sign one token. It is
// borrowed from the caller (or a [KeySource]) for the duration of a single
// signing operation and never persisted.
type SigningMaterial struct {
	// Key is the signing key, in whatever type the algorithm's signing method
	// expects (*rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey, or
	// []byte for HMAC).
	Key any
	// Algorithm is the JWS algorithm name registered with the signature
	// primitive, e.g. "RS256", "ES256", "EdDSA", "HS256".
	Algorithm string
	// KeyID, when non-empty, is emitted as the kid header claim.
	KeyID string
	// CertThumbprint, when non-empty, marks the material as certificate-backed
	// and is emitted as the x5t header claim.
	CertThumbprint string
}

func (m SigningMaterial) isZero() bool {
	return m.Key == nil && m.Algorithm == "" && m.KeyID == "" && m.CertThumbprint == ""
}

// KeySource supplies signing material and policy defaults. The engine only
// reads from it; retrieval, caching, and staleness policy belong to the
// implementation (see the keysource package).
type KeySource interface {
	Material(ctx context.Context) (SigningMaterial, error)
}

// ClaimsHook is an extension point invoked at a fixed place in the claim
// pipeline. It receives the payload accumulator and the descriptor and may
// insert claims directly. A hook that reuses a reserved claim name silently
// overwrites the value; callers control their own hooks.
type ClaimsHook func(*PayloadAccumulator, *CreationDescriptor)

// ClaimsConfig selects which structural claims a token carries. The at claim
// is always present and has no switch. Use [DefaultClaims] for the default
// all-enabled configuration; the zero value disables every structural claim,
// which yields a payload containing only at.
type ClaimsConfig struct {
	Body      bool // b
	Headers   bool // h
	Method    bool // m
	Nonce     bool // nonce
	Path      bool // p
	Query     bool // q
	Timestamp bool // ts
	Host      bool // u

	// TimeAdjustment is added to the ts claim and may be negative.
	TimeAdjustment time.Duration

	// CustomNonce fully replaces the default nonce claim when set. It runs in
	// place of the default generator and inserts its own claim name and value.
	CustomNonce ClaimsHook
	// AdditionalClaims runs after every structural claim and may insert
	// arbitrary extra entries.
	AdditionalClaims ClaimsHook
}

// DefaultClaims returns the default per-token configuration: every structural
// claim enabled, zero time adjustment, no hooks.
func DefaultClaims() ClaimsConfig {
	return ClaimsConfig{
		Body:      true,
		Headers:   true,
		Method:    true,
		Nonce:     true,
		Path:      true,
		Query:     true,
		Timestamp: true,
		Host:      true,
	}
}

// CreationDescriptor is the input contract for one token creation. It is
// validated before assembly begins and never mutated afterwards.
type CreationDescriptor struct {
	// AccessToken is the bearer token being bound. Required, non-empty.
	AccessToken string
	// Request is the HTTP request snapshot the token commits to.
	Request HTTPRequestData
	// Material signs the token. Required for [CreateToken]; Engine.Issue
	// fills it from the engine's key source when left zero.
	Material SigningMaterial
	// Claims selects structural claims. nil means [DefaultClaims] for
	// CreateToken, or the engine's configured claims for Engine.Issue.
	Claims *ClaimsConfig
	// Now overrides the clock for the ts claim, for deterministic testing.
	// nil means time.Now.
	Now func() time.Time
}
