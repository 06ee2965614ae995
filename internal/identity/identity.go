// Package identity is the single identity and merge policy shared by every
// collection: cart lines, wishlist entries, warehouse and store products.
//
// Identifiers reach the core from two directions: generated ids and ids typed
// or copied back in from a page. Older stored state also holds numeric ids
// (millisecond timestamps). All of them are folded into one representation,
// ID, at the boundary where they enter, and compared only through Same.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ID is the normalized identifier of a record.
//
// The zero value is the empty ID, which never identifies a record.
type ID string

// Normalize folds a raw identifier into its canonical form: surrounding
// whitespace trimmed and the text NFC-normalized so visually identical ids
// produced by different inputs compare equal.
func Normalize(raw string) ID {
	return ID(norm.NFC.String(strings.TrimSpace(raw)))
}

// FromInt converts a legacy numeric identifier.
func FromInt(n int64) ID {
	return ID(fmt.Sprintf("%d", n))
}

// String returns the identifier text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty after normalization.
func (id ID) IsZero() bool {
	return Normalize(string(id)) == ""
}

// Short returns at most n leading characters of the identifier.
func (id ID) Short(n int) string {
	r := []rune(string(id))
	if len(r) <= n {
		return string(id)
	}
	return string(r[:n])
}

// Same reports whether two identifiers denote the same entity.
// The empty identifier is never the same as anything, itself included.
func Same(a, b ID) bool {
	na, nb := Normalize(string(a)), Normalize(string(b))
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

// MarshalJSON always encodes the identifier as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(Normalize(string(id))))
}

// UnmarshalJSON accepts both JSON strings and JSON numbers.
// Numbers are kept verbatim via json.Number so large timestamps do not lose
// precision through float64.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = Normalize(s)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = Normalize(n.String())
	return nil
}

// Index returns the position of the first item whose key matches id, or -1.
func Index[T any](items []T, key func(T) ID, id ID) int {
	for i, item := range items {
		if Same(key(item), id) {
			return i
		}
	}
	return -1
}

// Contains reports whether any item's key matches id.
func Contains[T any](items []T, key func(T) ID, id ID) bool {
	return Index(items, key, id) >= 0
}

// Without returns the items whose key does not match id, preserving order.
// The returned slice is never nil.
func Without[T any](items []T, key func(T) ID, id ID) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !Same(key(item), id) {
			out = append(out, item)
		}
	}
	return out
}

// Filter returns the items for which keep returns true, preserving order.
// The returned slice is never nil.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
