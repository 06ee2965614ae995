package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp is a time read from records this core does not write. Decoding
// never fails: RFC 3339 strings, plain dates and epoch milliseconds are
// understood, anything else decodes to the zero time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp reads s with the same rules as UnmarshalJSON.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Timestamp{Time: time.UnixMilli(ms).UTC()}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}
		}
	}
	return Timestamp{}
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts a string, a number of epoch milliseconds or null.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*ts = Timestamp{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*ts = Timestamp{}
			return nil
		}
		*ts = ParseTimestamp(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			*ts = Timestamp{}
			return nil
		}
		*ts = Timestamp{Time: time.UnixMilli(int64(f)).UTC()}
	}
	return nil
}
