package harness

import (
	"encoding/json"

	"github.com/roach88/shopsync/internal/apperr"
	"github.com/roach88/shopsync/internal/identity"
	"github.com/roach88/shopsync/internal/storefront"
)

// TraceEvent records one dispatched flow intent and what the page showed.
type TraceEvent struct {
	Seq     int               `json:"seq"`
	Kind    storefront.Kind   `json:"kind"`
	ID      identity.ID       `json:"id,omitempty"`
	Code    apperr.Code       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Badges  storefront.Badges `json:"badges"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// State holds the encoded collections left in the store.
	State map[string]json.RawMessage `json:"state,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]json.RawMessage),
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a flow event.
func (r *Result) AddTrace(in storefront.Intent, out storefront.Outcome) {
	id := in.ID
	if id.IsZero() {
		id = in.Product.ID
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Kind:    in.Kind,
		ID:      identity.Normalize(id.String()),
		Code:    out.Code,
		Message: out.Message,
		Badges:  out.Badges,
	})
}
