package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestAuditAndErrorShape(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "error")
	defer Setup(&bytes.Buffer{}, "info")

	Info(nil, "ignored.info", nil)
	Audit(nil, "order.place", map[string]any{"order_id": "o-1"})
	Error(nil, "backend.fail", errors.New("boom"), nil)

	dec := json.NewDecoder(&buf)
	var got []map[string]any
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatal(err)
		}
		got = append(got, m)
	}
	if len(got) != 2 {
		t.Fatalf("want audit+error lines only, got %d: %v", len(got), got)
	}
	if got[0]["level"] != "audit" || got[0]["action"] != "order.place" {
		t.Fatalf("bad audit line: %v", got[0])
	}
	if got[1]["level"] != "error" || got[1]["err"] != "boom" {
		t.Fatalf("bad error line: %v", got[1])
	}
	if _, ok := got[1]["ts"]; !ok {
		t.Fatal("timestamp missing")
	}
}
