package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Optional represents a value that may be unknown. The zero value is
// Unknown. Unknown is a distinct state from the zero value of T: a listing
// with no stated asking price is not a free listing.
type Optional[T any] struct {
	value T
	known bool
}

// Known wraps a present value.
func Known[T any](v T) Optional[T] {
	return Optional[T]{value: v, known: true}
}

// Unknown returns the absent value.
func Unknown[T any]() Optional[T] {
	return Optional[T]{}
}

// IsKnown reports whether the value is present.
func (o Optional[T]) IsKnown() bool {
	return o.known
}

// Value returns the wrapped value and whether it is present.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.known
}

// Or returns the wrapped value, or def when unknown.
func (o Optional[T]) Or(def T) T {
	if o.known {
		return o.value
	}
	return def
}

// MarshalJSON encodes Unknown as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.known {
		return []byte("null"), nil
	}
	data, err := json.Marshal(o.value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal optional value: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes null as Unknown.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to unmarshal optional value: %w", err)
	}
	*o = Optional[T]{value: v, known: true}
	return nil
}

func (o Optional[T]) String() string {
	if !o.known {
		return "unknown"
	}
	return fmt.Sprintf("%v", o.value)
}
