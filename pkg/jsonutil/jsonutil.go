// Package jsonutil provides the JSON serialization forms used across
// confsync: pretty (the on-disk snapshot form) and canonical (a
// deterministic sorted-key form for stable comparisons).
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// PrettyMarshal serializes v with 2-space indentation, the single form used
// for every snapshot written to disk. json.RawMessage values are re-indented
// with their key order preserved.
func PrettyMarshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pretty marshal: %w", err)
	}
	return data, nil
}

// CanonicalMarshal produces deterministic JSON: object keys sorted
// lexicographically, no whitespace, null serialized as null. Two
// semantically equal documents canonicalize to identical bytes, which is
// what makes the form usable as an equality surface.
func CanonicalMarshal(v any) ([]byte, error) {
	// Normalize through a marshal round trip so structs, maps and raw
	// messages all reduce to the same generic shape.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("canonical normalize: %w", err)
	}

	var buf bytes.Buffer
	writeCanonical(&buf, generic)
	return buf.Bytes(), nil
}

// writeCanonical serializes a value that already passed through a marshal
// round trip, so re-marshaling keys and primitives cannot fail.
func writeCanonical(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(k)
			buf.Write(key)
			buf.WriteByte(':')
			writeCanonical(buf, val[k])
		}
		buf.WriteByte('}')

	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonical(buf, item)
		}
		buf.WriteByte(']')

	default:
		raw, _ := json.Marshal(val)
		buf.Write(raw)
	}
}
