package goPoP

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAccumulatorPreservesInsertionOrder(t *testing.T) {
	acc := NewPayloadAccumulator()
	acc.Set("z", 1)
	acc.Set("a", 2)
	acc.Set("m", 3)

	raw, err := json.Marshal(acc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"z":1,"a":2,"m":3}` {
		t.Errorf("marshaled = %s, want insertion order preserved", got)
	}
}

func TestAccumulatorOverwriteKeepsPosition(t *testing.T) {
	acc := NewPayloadAccumulator()
	acc.Set("first", "a")
	acc.Set("second", "b")
	acc.Set("first", "c")

	if got := acc.Names(); !reflect.DeepEqual(got, []string{"first", "second"}) {
		t.Errorf("names = %v, want overwrite to keep position", got)
	}
	if v, _ := acc.Get("first"); v != "c" {
		t.Errorf("first = %v, want c", v)
	}
	if acc.Len() != 2 {
		t.Errorf("len = %d, want 2", acc.Len())
	}
}

func TestAccumulatorEmptyMarshalsAsObject(t *testing.T) {
	raw, err := json.Marshal(NewPayloadAccumulator())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "{}" {
		t.Errorf("marshaled = %s, want {}", raw)
	}
}

func TestAccumulatorNestedValues(t *testing.T) {
	acc := NewPayloadAccumulator()
	acc.Set("h", []any{[]string{"a", "b"}, "digest"})

	raw, err := json.Marshal(acc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"h":[["a","b"],"digest"]}` {
		t.Errorf("marshaled = %s", got)
	}
}
