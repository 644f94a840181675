package goPoP

import (
	"bytes"
	"encoding/json"
)

// PayloadAccumulator is an ordered claim-name-to-value mapping. Insertion
// order is preserved in the marshaled JSON object; this affects readability
// only, never the hash inputs, which are defined independently per claim.
//
// It is built incrementally during one token creation and is not safe for
// concurrent use — it never needs to be, since a partially-built payload is
// never observable outside the creating call.
type PayloadAccumulator struct {
	names  []string
	values map[string]any
}

// NewPayloadAccumulator returns an empty accumulator.
func NewPayloadAccumulator() *PayloadAccumulator {
	return &PayloadAccumulator{values: make(map[string]any, 10)}
}

// Set inserts or overwrites a claim. Overwriting keeps the claim's original
// position.
func (a *PayloadAccumulator) Set(name string, value any) {
	if _, ok := a.values[name]; !ok {
		a.names = append(a.names, name)
	}
	a.values[name] = value
}

// Get returns the value for name and whether it is present.
func (a *PayloadAccumulator) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Has reports whether a claim with the given name has been inserted.
func (a *PayloadAccumulator) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Names returns the claim names in insertion order.
func (a *PayloadAccumulator) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Len returns the number of claims.
func (a *PayloadAccumulator) Len() int {
	return len(a.names)
}

// MarshalJSON writes the claims as a JSON object in insertion order.
func (a *PayloadAccumulator) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range a.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(a.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
