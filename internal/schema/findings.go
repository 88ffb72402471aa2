package schema

import (
	"bytes"
	"encoding/json"
)

// FindingState tells apart a manifest that was never scanned for a finding
// kind from one that was scanned and came back clean.
type FindingState uint8

const (
	NotScanned FindingState = iota
	ScannedClean
	ScannedFound
)

func (s FindingState) String() string {
	switch s {
	case ScannedClean:
		return "scanned-clean"
	case ScannedFound:
		return "scanned-found"
	default:
		return "not-scanned"
	}
}

// Findings is an optional sequence of findings. The zero value is NotScanned.
//
// On the wire NotScanned is an omitted field (via omitzero), ScannedClean is
// null and ScannedFound is an array; an empty array is never written. On input
// an empty array is treated the same as null: both decode to ScannedClean.
type Findings[T any] struct {
	state FindingState
	items []T
}

// Scanned wraps the result of a scan. An empty or nil slice is ScannedClean.
func Scanned[T any](items []T) Findings[T] {
	if len(items) == 0 {
		return Findings[T]{state: ScannedClean}
	}
	cp := make([]T, len(items))
	copy(cp, items)
	return Findings[T]{state: ScannedFound, items: cp}
}

func (f Findings[T]) State() FindingState { return f.state }
func (f Findings[T]) Scanned() bool       { return f.state != NotScanned }
func (f Findings[T]) Len() int            { return len(f.items) }

// IsZero lets encoding/json omit a not-scanned field.
func (f Findings[T]) IsZero() bool {
	return f.state == NotScanned
}

// Items returns a copy of the findings; nil unless ScannedFound.
func (f Findings[T]) Items() []T {
	if len(f.items) == 0 {
		return nil
	}
	cp := make([]T, len(f.items))
	copy(cp, f.items)
	return cp
}

func (f Findings[T]) MarshalJSON() ([]byte, error) {
	if f.state != ScannedFound {
		return []byte("null"), nil
	}
	return json.Marshal(f.items)
}

func (f *Findings[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Findings[T]{state: ScannedClean}
		return nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*f = Scanned(items)
	return nil
}
