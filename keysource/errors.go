package keysource

import "errors"

var (
	// ErrNoMaterial is returned when a source has nothing to serve: no cached
	// record and no backend result.
	ErrNoMaterial = errors.New("no signing material available")
	// ErrBadRecord is returned when a fetched or cached record cannot be
	// turned into usable signing material.
	ErrBadRecord = errors.New("invalid signing material record")
	// ErrSourceUnavailable is returned when the backing fetcher fails and no
	// stale record can stand in.
	ErrSourceUnavailable = errors.New("key source backend unavailable")
)
