package telemetry

import (
	"testing"
)

func TestSafeAttributesFiltersSecrets(t *testing.T) {
	kvs := map[string]interface{}{
		"serial":        "SD1129",
		"serial_number": "10023329",
		"api_key":       "vx-123",
		"token":         "abc",
		"safe_key":      "ok",
		"long_string":   string(make([]byte, 600)),
		"short_string":  "fine",
		"client_id":     "atelier",
		"authorization": "secret",
	}

	attrs := SafeAttributes(kvs)
	for _, a := range attrs {
		switch string(a.Key) {
		case "serial", "serial_number", "api_key", "authorization", "token":
			t.Fatalf("unexpected unsafe attribute %s", a.Key)
		case "long_string":
			t.Fatalf("expected long string to be skipped")
		}
	}

	var sawSafe, sawClient bool
	for _, a := range attrs {
		if a.Key == "safe_key" {
			sawSafe = true
		}
		if a.Key == "client_id" {
			sawClient = true
		}
	}
	if !sawSafe || !sawClient {
		t.Fatalf("safe attributes missing: %+v", attrs)
	}
}
