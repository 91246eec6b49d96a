package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// toRecord flattens a domain value into a backend record through its JSON form.
func toRecord(v any) (ports.Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var r ports.Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return r, nil
}

// normalizePatch converts patch values to the same JSON-compatible shapes
// records use, so every backend stores times and nested values alike.
func normalizePatch(p ports.Patch) (ports.Patch, error) {
	r, err := toRecord(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return ports.Patch(r), nil
}

func fromRecord(r ports.Record, v any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func decodeAll[T any](records []ports.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, r := range records {
		var v T
		if err := fromRecord(r, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
