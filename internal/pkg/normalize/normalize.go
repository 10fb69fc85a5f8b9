// Package normalize adapts duck-typed store payloads at the boundary so the
// engine only ever sees typed slices.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrNotACollection is returned when the payload is neither a bare array nor
// a results-wrapped object.
var ErrNotACollection = errors.New("payload is not a collection")

// Collection decodes a payload that arrives either as a bare JSON array or
// wrapped as {"results": [...]}. Null decodes to an empty slice.
func Collection[T any](raw []byte) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}
	if raw[0] == '[' {
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapped struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, ErrNotACollection
	}
	if wrapped.Results == nil {
		return []T{}, nil
	}
	return wrapped.Results, nil
}
