// Package canon turns raw, attacker-influenced HTTP request data into the
// deterministic canonical strings hashed into PoP token claims.
//
// Every function here is pure: no shared state, safe to call concurrently and
// repeatedly. Ambiguous input (duplicate header casings, repeated query
// parameter names) is dropped, never guessed at — any ambiguity in what was
// signed is a security defect, not a cosmetic one.
package canon
