package goPoP

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// CreateToken runs the full creation pipeline for one descriptor: validation,
// header and payload assembly, compact serialization, and signing. It is pure
// with respect to the descriptor and safe to call from arbitrarily many
// goroutines.
//
// The returned string is the three-part compact form
// "{header}.{payload}.{signature}", each part base64url-encoded without
// padding. The signature covers the UTF-8 bytes of "{header}.{payload}".
func CreateToken(d *CreationDescriptor) (string, error) {
	if err := d.validate(); err != nil {
		return "", err
	}

	payload, err := buildPayload(d)
	if err != nil {
		return "", err
	}

	return signCompact(buildHeader(d.Material), payload, d.Material)
}

// signCompact serializes the header and payload objects and delegates the
// signature to the method registered for the material's algorithm. It has no
// conditional logic beyond delegation; its contract is the exact byte span
// signed.
func signCompact(header, payload *PayloadAccumulator, m SigningMaterial) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("%w: marshal header: %v", ErrSigning, err)
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal payload: %v", ErrSigning, err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	method := jwt.GetSigningMethod(m.Algorithm)
	if method == nil {
		return "", fmt.Errorf("%w %q", ErrUnknownAlgorithm, m.Algorithm)
	}

	signature, err := method.Sign(signingInput, m.Key)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSigning, m.Algorithm, err)
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}
