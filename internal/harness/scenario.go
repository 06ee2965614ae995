package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/storefront"
)

// Scenario is a storefront conformance test.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Fixtures are raw collection payloads written before setup, for
	// exercising state left behind by older pages (numeric ids, missing
	// quantities).
	Fixtures map[string]any `yaml:"fixtures,omitempty"`

	// Setup intents must all succeed. They are not traced.
	Setup []storefront.Intent `yaml:"setup,omitempty"`

	// Flow intents are traced and checked against their expect clauses.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the notifications and final state.
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is an intent plus what the page should show afterwards.
type FlowStep struct {
	storefront.Intent `yaml:",inline"`

	// Expect is optional; without it the step only has to not fail storage.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks one Outcome.
type ExpectClause struct {
	// Code is "ok" for an applied intent or the rejection code.
	Code string `yaml:"code"`

	// Message, when set, must equal the notification text.
	Message string `yaml:"message,omitempty"`

	// Badges, when set, must equal the counts after the step.
	Badges *storefront.Badges `yaml:"badges,omitempty"`
}

// Assertion validates notifications or final state.
type Assertion struct {
	// Type is one of notifications, badges, collection_count, final_state.
	Type string `yaml:"type"`

	// Messages are the expected notifications (notifications).
	Messages []string `yaml:"messages,omitempty"`

	// Badges are the expected final counts (badges).
	Badges *storefront.Badges `yaml:"badges,omitempty"`

	// Collection names the collection (collection_count, final_state).
	Collection string `yaml:"collection,omitempty"`

	// Count is the expected record count (collection_count).
	Count *int `yaml:"count,omitempty"`

	// Where selects records by exact field values (final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect holds field values the selected record must have (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertNotifications   = "notifications"
	AssertBadges          = "badges"
	AssertCollectionCount = "collection_count"
	AssertFinalState      = "final_state"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so a typo never silently disables a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for name := range s.Fixtures {
		if !slices.Contains(model.Collections, name) {
			return fmt.Errorf("fixtures: unknown collection %q", name)
		}
	}
	for i, in := range s.Setup {
		if !slices.Contains(storefront.Kinds, in.Kind) {
			return fmt.Errorf("setup[%d]: unknown kind %q", i, in.Kind)
		}
	}
	for i, step := range s.Flow {
		if step.Kind == "" {
			return fmt.Errorf("flow[%d]: kind is required", i)
		}
		if step.Expect != nil && step.Expect.Code == "" {
			return fmt.Errorf("flow[%d].expect: code is required (use ok for success)", i)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNotifications:
		if a.Messages == nil {
			return fmt.Errorf("assertions[%d]: messages is required for notifications", index)
		}
	case AssertBadges:
		if a.Badges == nil {
			return fmt.Errorf("assertions[%d]: badges is required for badges", index)
		}
	case AssertCollectionCount:
		if a.Collection == "" || a.Count == nil {
			return fmt.Errorf("assertions[%d]: collection and count are required for collection_count", index)
		}
	case AssertFinalState:
		if a.Collection == "" {
			return fmt.Errorf("assertions[%d]: collection is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
