// Package goPoP issues signed proof-of-possession (PoP) request tokens: compact,
// three-part signed artifacts that bind a bearer access token to the method, URL,
// headers, body, and time of one specific HTTP request.
//
// The package is designed for concurrent client and service workloads: Engine
// methods are safe to call from multiple goroutines after initialization through
// [Builder.Build], and the canonicalization pipeline underneath [CreateToken] is
// pure and stateless.
//
// # Architecture boundaries
//
// goPoP is the public surface. It exposes [Engine], [Builder], [Config],
// [CreationDescriptor], and value types (SigningMaterial, HTTPRequestData,
// MetricsSnapshot, etc.). Canonicalization of attacker-influenced request data
// lives under internal/canon and is never exported.
//
// # What this package must NOT do
//
//   - Implement the signature primitive. Signing is delegated to golang-jwt
//     signing methods through the algorithm named by the [SigningMaterial].
//   - Persist signing keys. Material is borrowed for one signing operation;
//     long-lived retrieval and caching belongs to a [KeySource].
//   - Verify tokens, store nonces, or track revocation. Those are relying-party
//     concerns with their own components.
//
// # Canonicalization contract
//
// Header and query canonicalization removes ambiguity instead of guessing:
// a header name that appears under more than one casing, or with more than one
// value, is dropped from the h claim entirely; a query parameter name that
// repeats is dropped from the q claim entirely. Two byte-identical descriptors
// produce byte-identical header and payload JSON, except for the nonce claim.
package goPoP
