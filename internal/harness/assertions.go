package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/shopsync/internal/storefront"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext is what assertions are evaluated against.
type AssertionContext struct {
	Notifications []string
	Badges        storefront.Badges
	State         map[string]json.RawMessage
}

// EvaluateAssertions returns one message per failed assertion.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertNotifications:
		return assertNotifications(a, actx.Notifications)
	case AssertBadges:
		return assertBadges(a, actx.Badges)
	case AssertCollectionCount:
		return assertCollectionCount(a, actx.State)
	case AssertFinalState:
		return assertFinalState(a, actx.State)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertNotifications(a Assertion, got []string) error {
	if slices.Equal(a.Messages, got) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotifications,
		Expected: fmt.Sprintf("%q", a.Messages),
		Actual:   fmt.Sprintf("%q", got),
	}
}

func assertBadges(a Assertion, got storefront.Badges) error {
	if *a.Badges == got {
		return nil
	}
	return &AssertionError{
		Type:     AssertBadges,
		Expected: fmt.Sprintf("%+v", *a.Badges),
		Actual:   fmt.Sprintf("%+v", got),
	}
}

func assertCollectionCount(a Assertion, state map[string]json.RawMessage) error {
	records, err := recordsOf(state, a.Collection)
	if err != nil {
		return err
	}
	if len(records) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCollectionCount,
		Expected: fmt.Sprintf("%d records in %s", *a.Count, a.Collection),
		Actual:   fmt.Sprintf("%d records", len(records)),
	}
}

// assertFinalState finds the first record matching Where and checks that it
// carries every field in Expect.
func assertFinalState(a Assertion, state map[string]json.RawMessage) error {
	records, err := recordsOf(state, a.Collection)
	if err != nil {
		return err
	}
	where, err := normalize(a.Where)
	if err != nil {
		return err
	}
	expect, err := normalize(a.Expect)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if !matchFields(rec, where) {
			continue
		}
		if matchFields(rec, expect) {
			return nil
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s record %v to have %v", a.Collection, a.Where, a.Expect),
			Actual:   fmt.Sprintf("%v", rec),
		}
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("a %s record matching %v", a.Collection, a.Where),
		Actual:   fmt.Sprintf("none among %d records", len(records)),
	}
}

// recordsOf decodes a collection into records. A singleton collection is one
// record; an absent collection has none.
func recordsOf(state map[string]json.RawMessage, collection string) ([]map[string]any, error) {
	raw, ok := state[collection]
	if !ok {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return []map[string]any{t}, nil
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s is not a collection of records", collection)
	}
}

// normalize passes expected values through JSON so YAML ints compare equal
// to decoded JSON numbers.
func normalize(fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode expected fields: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode expected fields: %w", err)
	}
	return out, nil
}

// matchFields is a subset match: extra fields in actual are fine.
func matchFields(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
