package services

import (
	"encoding/json"
	"fmt"
)

// Dynamic fields (ld_context, metadata, tags, payloads) persist as JSON text
// columns. Marshal/unmarshal helpers keep NULL handling in one place.

func marshalJSON(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return string(data), nil
}

func unmarshalMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return out, nil
}

func unmarshalStrings(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal string list column: %w", err)
	}
	return out, nil
}

func unmarshalFloats(data []byte) (map[string]float64, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out map[string]float64
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal float map column: %w", err)
	}
	return out, nil
}
