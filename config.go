package goPoP

import (
	"errors"
	"strings"
	"time"
)

// Config is the engine-level configuration. It is cloned at Build time and
// treated as immutable afterwards.
type Config struct {
	Claims    ClaimsConfig
	KeySource KeySourceConfig
	Request   RequestConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
KEY SOURCE CONFIG
====================================
*/

// KeySourceConfig bounds how long the engine waits on its key source per
// issuance. Retrieval and caching policy live in the source itself.
type KeySourceConfig struct {
	// FetchTimeout caps one Material call. Zero means no engine-imposed cap.
	FetchTimeout time.Duration
}

/*
====================================
REQUEST CONFIG
====================================
*/

// RequestConfig controls how Engine.SignRequest attaches a minted token to an
// outgoing request.
type RequestConfig struct {
	// HeaderName defaults to "Authorization".
	HeaderName string
	// Scheme prefixes the token in the header value, default "PoP".
	Scheme string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// issuing call. Dropped events are counted and exported.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters and the issue-latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Claims: DefaultClaims(),
		Request: RequestConfig{
			HeaderName: "Authorization",
			Scheme:     "PoP",
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are values or function references owned by the caller;
	// a struct copy is a full clone.
	return cfg
}

// Validate reports the first configuration rule the receiver violates.
func (c *Config) Validate() error {
	if c.KeySource.FetchTimeout < 0 {
		return errors.New("invalid KeySource FetchTimeout configuration")
	}
	if c.Audit.BufferSize < 0 {
		return errors.New("invalid Audit BufferSize configuration")
	}
	if strings.TrimSpace(c.Request.HeaderName) == "" {
		return errors.New("Request HeaderName must not be blank")
	}
	if c.Request.Scheme != strings.TrimSpace(c.Request.Scheme) || strings.ContainsAny(c.Request.Scheme, " \t") {
		return errors.New("Request Scheme must not contain whitespace")
	}
	return nil
}
