package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSame(t *testing.T) {
	tests := []struct {
		name string
		a, b ID
		want bool
	}{
		{"identical", "7", "7", true},
		{"surrounding whitespace", " 7 ", "7", true},
		{"nfc vs nfd", "caf\u00e9", "cafe\u0301", true},
		{"different", "7", "8", false},
		{"case sensitive", "abc", "ABC", false},
		{"empty never matches", "", "", false},
		{"blank never matches", "  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Same(tt.a, tt.b))
			assert.Equal(t, tt.want, Same(tt.b, tt.a), "Same must be symmetric")
		})
	}
}

func TestUnmarshalJSON_AcceptsNumbersAndStrings(t *testing.T) {
	var fromNumber, fromString ID
	require.NoError(t, json.Unmarshal([]byte(`1700000000123`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"1700000000123"`), &fromString))

	assert.Equal(t, ID("1700000000123"), fromNumber)
	assert.True(t, Same(fromNumber, fromString))
}

func TestUnmarshalJSON_Null(t *testing.T) {
	id := ID("x")
	require.NoError(t, json.Unmarshal([]byte(`null`), &id))
	assert.True(t, id.IsZero())
}

func TestMarshalJSON_AlwaysString(t *testing.T) {
	data, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: FromInt(42)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"42"}`, string(data))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "01234567", ID("0123456789abcdef").Short(8))
	assert.Equal(t, "42", ID("42").Short(8))
}

type rec struct {
	ID   ID
	Name string
}

func recKey(r rec) ID { return r.ID }

func TestIndexAndWithout(t *testing.T) {
	items := []rec{{"1", "a"}, {"2", "b"}, {"1", "c"}}

	assert.Equal(t, 0, Index(items, recKey, " 1"))
	assert.Equal(t, 1, Index(items, recKey, "2"))
	assert.Equal(t, -1, Index(items, recKey, "3"))
	assert.True(t, Contains(items, recKey, "2"))

	rest := Without(items, recKey, "1")
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].Name)

	assert.NotNil(t, Without([]rec(nil), recKey, "1"))
}

func TestFilter(t *testing.T) {
	items := []rec{{"1", "a"}, {"2", "b"}}
	got := Filter(items, func(r rec) bool { return r.Name == "b" })
	require.Len(t, got, 1)
	assert.Equal(t, ID("2"), got[0].ID)
	assert.Empty(t, Filter(nil, func(rec) bool { return true }))
}
