// Package keysource supplies signing material to a goPoP engine.
//
// The token-creation core only borrows material for one signing operation;
// everything long-lived — fetching signing configuration from a secrets or
// metadata backend, parsing PEM keys, caching, staleness policy — lives here.
//
// [Caching] guarantees at most one in-flight refresh and prefers returning
// stale-but-present material over failing outright, so a flapping backend
// degrades issuance latency, not availability. [RedisCache] extends the same
// policy across processes by keeping the last fetched record in Redis.
package keysource
