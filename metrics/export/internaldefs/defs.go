// Package internaldefs holds the shared metric definitions used by every
// exporter, so Prometheus and OTel expose identical names and helps.
package internaldefs

import (
	goPoP "github.com/MrEthical07/goPoP"
)

// CounterDef binds one engine counter to its exported name.
type CounterDef struct {
	ID   goPoP.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported name.
type HistogramDef struct {
	ID   goPoP.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed order.
var CounterDefs = []CounterDef{
	{ID: goPoP.MetricTokenIssued, Name: "gopop_token_issued_total", Help: "Successfully signed PoP tokens."},
	{ID: goPoP.MetricInvalidArgument, Name: "gopop_invalid_argument_total", Help: "Issuances rejected before any claim was computed."},
	{ID: goPoP.MetricClaimCreationError, Name: "gopop_claim_creation_error_total", Help: "Issuances rejected by a claim builder."},
	{ID: goPoP.MetricSigningError, Name: "gopop_signing_error_total", Help: "Delegated signature failures."},
	{ID: goPoP.MetricKeySourceError, Name: "gopop_key_source_error_total", Help: "Key source fetches that produced no material."},
	{ID: goPoP.MetricKeySourceFetch, Name: "gopop_key_source_fetch_total", Help: "Key source fetches performed by the engine."},
	{ID: goPoP.MetricRequestSigned, Name: "gopop_request_signed_total", Help: "Outgoing requests annotated with a PoP token."},
	{ID: goPoP.MetricNonceGenerated, Name: "gopop_nonce_generated_total", Help: "Default nonce claims minted."},
}

// HistogramDefs lists every exported histogram in a fixed order.
var HistogramDefs = []HistogramDef{
	{ID: goPoP.MetricIssueLatency, Name: "gopop_issue_latency_seconds", Help: "Token issue latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, Prometheus style.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bound spellings usable inside metric names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed bucket
// count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus expects.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
