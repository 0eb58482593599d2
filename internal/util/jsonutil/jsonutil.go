// Package jsonutil recovers structured JSON values from raw LLM completion
// text. Completions routinely wrap valid JSON in markdown fences or
// explanatory prose, and token limits can leave trailing garbage after the
// logical structure closes. Recover tolerates those failure modes; it does
// not attempt to repair structures truncated mid-structure.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedResponseError is the terminal failure of Recover: every
// strategy was exhausted without producing a parseable JSON value.
// Raw preserves the original model text for diagnostic logging.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("jsonutil: no recoverable JSON value in %d-byte response", len(e.Raw))
}

// Recover extracts one JSON value (object or array) from raw model text.
//
// Two strategies run in order, each attempted only if the previous one
// failed:
//  1. Trim whitespace, strip a surrounding markdown code fence if present,
//     and parse directly.
//  2. Slice the original text from the first opening bracket to the last
//     closing bracket and parse the slice. This discards leading and
//     trailing prose around an otherwise complete structure.
//
// Decoder errors never escape; exhaustion yields *MalformedResponseError.
func Recover(raw string) (json.RawMessage, error) {
	if v, ok := tryParse(stripFence(strings.TrimSpace(raw))); ok {
		return v, nil
	}
	if candidate, ok := bracketSlice(raw); ok {
		if v, ok := tryParse(candidate); ok {
			return v, nil
		}
	}
	return nil, &MalformedResponseError{Raw: raw}
}

// RecoverInto recovers a JSON value from raw and unmarshals it into v.
func RecoverInto(raw string, v any) error {
	msg, err := Recover(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(msg, v)
}

func tryParse(s string) (json.RawMessage, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}

// stripFence removes a leading triple-backtick fence line (with optional
// language tag) and a trailing closing fence. Text without a leading
// fence is returned unchanged; leading prose is not stripped here.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	rest := s[3:]
	i := strings.IndexByte(rest, '\n')
	if i < 0 {
		return ""
	}
	rest = strings.TrimSpace(rest[i+1:])
	if strings.HasSuffix(rest, "```") {
		rest = strings.TrimSpace(strings.TrimSuffix(rest, "```"))
	}
	return rest
}

// bracketSlice cuts raw from its first opening bracket through its last
// closing bracket, inclusive. The object bracket is preferred at each end
// unless the array bracket strictly extends the span: `{` wins unless `[`
// occurs earlier, and `}` wins unless `]` occurs later. No bracket
// balancing is performed.
func bracketSlice(raw string) (string, bool) {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')
	start := objStart
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start = arrStart
	}

	objEnd := strings.LastIndexByte(raw, '}')
	arrEnd := strings.LastIndexByte(raw, ']')
	end := objEnd
	if arrEnd > objEnd {
		end = arrEnd
	}

	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// MarshalNoEscape encodes v as JSON without escaping <, >, and & to
// <-style sequences, keeping embedded prompt payloads readable.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
