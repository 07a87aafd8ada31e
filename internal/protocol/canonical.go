package protocol

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces deterministic JSON for a protocol snapshot.
//
// Canonical bytes are used for golden traces and for the structural
// equality checks behind the no-mutation-on-failure guarantee: two
// snapshots are identical exactly when their canonical bytes match.
//
// Rules:
//   - Object keys sorted lexicographically
//   - Strings NFC normalized; no HTML escaping
//   - Timestamps as RFC 3339 (UTC, nanosecond precision)
//   - Floats in shortest round-trip form; NaN and infinities rejected
//   - No nulls: absent optional fields are omitted entirely
func MarshalCanonical(p *Protocol) ([]byte, error) {
	return MarshalCanonicalValue(canonicalMap(p))
}

// MarshalCanonicalValue marshals a plain value tree (maps, slices,
// strings, integers, floats, bools, time.Time) to canonical JSON.
func MarshalCanonicalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// canonicalMap flattens a Protocol into the serialized field layout.
func canonicalMap(p *Protocol) map[string]any {
	history := make([]any, len(p.StageHistory))
	for i, h := range p.StageHistory {
		history[i] = map[string]any{
			"stage":         string(h.Stage),
			"startedAt":     h.StartedAt,
			"endedAt":       h.EndedAt,
			"durationHours": h.DurationHours,
			"outcome":       string(h.Outcome),
			"supervisorId":  h.SupervisorID,
			"notes":         h.Notes,
		}
	}

	alerts := make([]any, len(p.Alerts))
	for i, a := range p.Alerts {
		alerts[i] = map[string]any{
			"type":         a.Type,
			"message":      a.Message,
			"severity":     string(a.Severity),
			"raisedAt":     a.RaisedAt,
			"acknowledged": a.Acknowledged,
		}
	}

	m := map[string]any{
		"protocolId":             p.ProtocolID,
		"incidentId":             p.IncidentID,
		"playerId":               p.PlayerID,
		"currentStage":           string(p.CurrentStage),
		"stageStartedAt":         p.StageStartedAt,
		"stageHistory":           history,
		"symptomFreeRequired":    p.SymptomFreeRequired,
		"autoProgressionEnabled": p.AutoProgressionEnabled,
		"alerts":                 alerts,
		"version":                p.Version,
		"createdAt":              p.CreatedAt,
		"updatedAt":              p.UpdatedAt,
	}
	if p.LastSymptomCheck != nil {
		m["lastSymptomCheck"] = map[string]any{
			"checkedAt":   p.LastSymptomCheck.CheckedAt,
			"symptomFree": p.LastSymptomCheck.SymptomFree,
		}
	}
	return m
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
		return nil
	case Stage:
		writeCanonicalString(buf, string(val))
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("non-finite float is forbidden in canonical JSON: %v", val)
		}
		buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		return nil
	case time.Time:
		writeCanonicalString(buf, val.UTC().Format(time.RFC3339Nano))
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		buf.WriteByte('{')
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// writeCanonicalString escapes a string by hand rather than through
// encoding/json, which HTML-escapes <, >, & and escapes U+2028/U+2029.
// Only the quote, the backslash, and control characters are escaped.
// Strings are NFC normalized at the serialization boundary.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
