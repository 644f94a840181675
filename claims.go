package goPoP

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goPoP/internal/canon"
	"github.com/google/uuid"
)

// Reserved claim names. Extension hooks that reuse one of these overwrite the
// structural value.
const (
	ClaimAccessToken = "at"
	ClaimBody        = "b"
	ClaimHeaders     = "h"
	ClaimMethod      = "m"
	ClaimNonce       = "nonce"
	ClaimPath        = "p"
	ClaimQuery       = "q"
	ClaimTimestamp   = "ts"
	ClaimHost        = "u"
)

// Header claim names.
const (
	headerType           = "typ"
	headerAlgorithm      = "alg"
	headerKeyID          = "kid"
	headerCertThumbprint = "x5t"

	// popTokenType marks the compact artifact as a PoP request token.
	popTokenType = "pop"
)

// buildHeader assembles the protected header object: the fixed token-type
// marker, the signing algorithm, and — independently optional — the key id
// and certificate thumbprint exposed by the signing material.
func buildHeader(m SigningMaterial) *PayloadAccumulator {
	header := NewPayloadAccumulator()
	header.Set(headerType, popTokenType)
	header.Set(headerAlgorithm, m.Algorithm)
	if m.KeyID != "" {
		header.Set(headerKeyID, m.KeyID)
	}
	if m.CertThumbprint != "" {
		header.Set(headerCertThumbprint, m.CertThumbprint)
	}
	return header
}

// buildPayload assembles the payload for a validated descriptor. The at claim
// is unconditional; each structural claim is computed by its canonical builder
// only when enabled; hooks run last.
func buildPayload(d *CreationDescriptor) (*PayloadAccumulator, error) {
	cfg := d.resolved()
	payload := NewPayloadAccumulator()

	payload.Set(ClaimAccessToken, d.AccessToken)

	if cfg.Timestamp {
		payload.Set(ClaimTimestamp, timestampValue(d.Now, cfg.TimeAdjustment))
	}
	if cfg.Method {
		method, err := methodValue(d.Request.Method)
		if err != nil {
			return nil, err
		}
		payload.Set(ClaimMethod, method)
	}
	if cfg.Host {
		host, ok := canon.Host(d.Request.URL)
		if !ok {
			return nil, fmt.Errorf("%s claim: %w", ClaimHost, ErrRelativeURI)
		}
		payload.Set(ClaimHost, host)
	}
	if cfg.Path {
		payload.Set(ClaimPath, canon.Path(d.Request.URL))
	}
	if cfg.Query {
		names, canonical := canon.Query(rawQuery(d))
		payload.Set(ClaimQuery, hashedClaim(names, canonical))
	}
	if cfg.Headers {
		names, canonical := canon.Headers(d.Request.Headers)
		payload.Set(ClaimHeaders, hashedClaim(names, canonical))
	}
	if cfg.Body {
		// nil body hashes as a zero-length byte sequence, it is not skipped.
		payload.Set(ClaimBody, canon.Digest(d.Request.Body))
	}
	if cfg.Nonce {
		if cfg.CustomNonce != nil {
			cfg.CustomNonce(payload, d)
		} else {
			payload.Set(ClaimNonce, newNonce())
		}
	}

	if cfg.AdditionalClaims != nil {
		cfg.AdditionalClaims(payload, d)
	}

	return payload, nil
}

// hashedClaim is the two-element claim shape shared by h and q:
// the surviving names in canonical order, then the digest of the canonical
// string. The names list marshals as [] when nothing survives, never null.
func hashedClaim(names []string, canonical string) []any {
	if names == nil {
		names = []string{}
	}
	return []any{names, canon.Digest([]byte(canonical))}
}

func timestampValue(now func() time.Time, adjustment time.Duration) int64 {
	if now == nil {
		now = time.Now
	}
	return now().Add(adjustment).Unix()
}

func methodValue(method string) (string, error) {
	if method != strings.ToUpper(method) {
		return "", fmt.Errorf("%s claim: %w", ClaimMethod, ErrMethodNotUpperCase)
	}
	return method, nil
}

func rawQuery(d *CreationDescriptor) string {
	if d.Request.URL == nil {
		return ""
	}
	return d.Request.URL.RawQuery
}

// newNonce returns a fresh unpredictable freshness value: a random UUID with
// the dashes stripped. Only the issuer reads it back, so the encoding is not
// load-bearing for interoperability.
func newNonce() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
