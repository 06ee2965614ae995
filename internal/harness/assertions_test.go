package harness

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shopsync/internal/storefront"
)

func intp(n int) *int { return &n }

func testState() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"cart":        json.RawMessage(`[{"id":"7","name":"Mug","price":10,"quantity":2},{"id":"8","name":"Pen","price":1.5,"quantity":1}]`),
		"currentUser": json.RawMessage(`{"id":"m1","name":"Mia","role":"manager"}`),
		"orders":      json.RawMessage(`null`),
	}
}

func TestAssertFinalState(t *testing.T) {
	state := testState()

	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"match by where", Assertion{Collection: "cart", Where: map[string]any{"id": "7"}, Expect: map[string]any{"quantity": 2}}, true},
		{"float field", Assertion{Collection: "cart", Where: map[string]any{"id": "8"}, Expect: map[string]any{"price": 1.5}}, true},
		{"wrong value", Assertion{Collection: "cart", Where: map[string]any{"id": "7"}, Expect: map[string]any{"quantity": 3}}, false},
		{"no record", Assertion{Collection: "cart", Where: map[string]any{"id": "9"}, Expect: map[string]any{"quantity": 1}}, false},
		{"singleton", Assertion{Collection: "currentUser", Expect: map[string]any{"role": "manager"}}, true},
		{"absent collection", Assertion{Collection: "wishlist", Expect: map[string]any{"id": "1"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(tt.a, state)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				var ae *AssertionError
				assert.ErrorAs(t, err, &ae)
			}
		})
	}
}

func TestAssertCollectionCount(t *testing.T) {
	state := testState()

	assert.NoError(t, assertCollectionCount(Assertion{Collection: "cart", Count: intp(2)}, state))
	assert.NoError(t, assertCollectionCount(Assertion{Collection: "orders", Count: intp(0)}, state))
	assert.NoError(t, assertCollectionCount(Assertion{Collection: "wishlist", Count: intp(0)}, state))
	assert.Error(t, assertCollectionCount(Assertion{Collection: "cart", Count: intp(1)}, state))
}

func TestEvaluateAssertions_CollectsEveryFailure(t *testing.T) {
	actx := &AssertionContext{
		Notifications: []string{"Mug added to cart!"},
		Badges:        storefront.Badges{Cart: 2},
		State:         testState(),
	}
	errs := EvaluateAssertions([]Assertion{
		{Type: AssertNotifications, Messages: []string{"Mug added to cart!"}},
		{Type: AssertNotifications, Messages: []string{}},
		{Type: AssertBadges, Badges: &storefront.Badges{Cart: 2}},
		{Type: AssertBadges, Badges: &storefront.Badges{Cart: 1}},
	}, actx)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], "assertions[3]")
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Type: AssertBadges, Expected: "{Cart:1}", Actual: "{Cart:2}"}
	assert.Equal(t, "Assertion failed: badges\n  Expected: {Cart:1}\n  Actual: {Cart:2}", err.Error())
}
