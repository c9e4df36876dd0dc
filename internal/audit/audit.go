// Package audit records every decision the service hands out. Records are
// delivered asynchronously so audit trouble never slows or fails a request.
package audit

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/fusion"
	"github.com/veralux-ai/veralux/internal/redact"
)

// Logging levels. Metadata keeps the verdict only; full adds the complete
// evidence breakdown.
const (
	LevelMetadata = "metadata"
	LevelFull     = "full"
)

// Event is the canonical audit record for one decision.
type Event struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	ClientID  string    `json:"client_id,omitempty"`
	Operation string    `json:"operation"` // identify | authenticate

	Brand      string  `json:"brand,omitempty"`  // claimed brand, if any
	Serial     string  `json:"serial,omitempty"` // always masked
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Conclusive bool    `json:"conclusive"`
	Passed     bool    `json:"passed"`

	// Evidence detail, present only at level full.
	Reasons    []string                     `json:"reasons,omitempty"`
	Votes      []fusion.MethodVote          `json:"votes,omitempty"`
	Aggregates map[catalog.Category]float64 `json:"aggregates,omitempty"`

	LatencyMs float64 `json:"latency_ms"`
}

// BuildParams collects the inputs for one audit record.
type BuildParams struct {
	RequestID string
	ClientID  string
	Operation string
	Brand     catalog.Category
	Serial    string
	Result    fusion.Result
	Reasons   []string
	Latency   time.Duration
	Level     string
}

// BuildEvent assembles an audit record at the configured level. Serial
// numbers are masked before the event ever reaches a sink.
func BuildEvent(p BuildParams) *Event {
	ev := &Event{
		Version:    "1",
		Timestamp:  time.Now().UTC(),
		RequestID:  ensureRequestID(p.RequestID),
		ClientID:   p.ClientID,
		Operation:  p.Operation,
		Brand:      string(p.Brand),
		Serial:     redact.MaskSerial(p.Serial),
		Verdict:    string(p.Result.Category),
		Confidence: p.Result.Confidence,
		Conclusive: p.Result.Conclusive,
		Passed:     p.Result.Passed,
		LatencyMs:  float64(p.Latency) / float64(time.Millisecond),
	}

	if p.Level == LevelFull {
		ev.Reasons = append([]string(nil), p.Reasons...)
		ev.Votes = append([]fusion.MethodVote(nil), p.Result.Votes...)
		if len(p.Result.Aggregates) > 0 {
			ev.Aggregates = make(map[catalog.Category]float64, len(p.Result.Aggregates))
			for k, v := range p.Result.Aggregates {
				ev.Aggregates[k] = v
			}
		}
	}
	return ev
}

// LogEvent prints a redacted JSON representation of the record.
func LogEvent(ev *Event) {
	if ev == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		redact.Logf("audit: failed to marshal event: %v", err)
		return
	}
	redact.Logf("audit: %s", string(data))
}

func ensureRequestID(id string) string {
	if id != "" {
		return id
	}
	var buf [16]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
