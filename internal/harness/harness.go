package harness

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/shopsync/internal/idgen"
	"github.com/roach88/shopsync/internal/model"
	"github.com/roach88/shopsync/internal/store"
	"github.com/roach88/shopsync/internal/storefront"
	"github.com/roach88/shopsync/internal/testutil"
)

// IDPrefix prefixes every id generated during a scenario.
const IDPrefix = "p"

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	log *zap.Logger
}

// WithLogger routes page logs to l. Scenarios run silently by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) { c.log = l }
}

// Run executes a scenario against a fresh in-memory store.
//
// Expectation and assertion failures are reported in the Result. An error
// is returned only when the scenario could not be executed: a fixture that
// does not encode, a setup intent that was rejected, or a storage failure.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()
	st := store.New(store.NewMemory(0), store.WithLogger(cfg.log))
	defer st.Close()

	if err := writeFixtures(ctx, st, scenario.Fixtures); err != nil {
		return nil, err
	}

	inbox := &storefront.Inbox{}
	page, err := storefront.New(storefront.Deps{
		Store:    st,
		Clock:    testutil.NewDeterministicClock(),
		IDs:      idgen.NewSequenceGenerator(IDPrefix),
		Logger:   cfg.log,
		Notifier: inbox,
	})
	if err != nil {
		return nil, err
	}

	for i, in := range scenario.Setup {
		out, err := page.Dispatch(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, in.Kind, err)
		}
		if !out.OK() {
			return nil, fmt.Errorf("setup[%d] %s: rejected with %s: %s", i, in.Kind, out.Code, out.Message)
		}
	}
	setupNotes := len(inbox.Messages())

	result := NewResult()
	for i, step := range scenario.Flow {
		out, err := page.Dispatch(ctx, step.Intent)
		if err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Kind, err)
		}
		result.AddTrace(step.Intent, out)
		checkExpect(result, i, step, out)
	}

	badges, err := page.Badges(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range model.Collections {
		raw, ok, err := st.ReadRaw(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			result.State[name] = raw
		}
	}

	actx := &AssertionContext{
		Notifications: inbox.Messages()[setupNotes:],
		Badges:        badges,
		State:         result.State,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func writeFixtures(ctx context.Context, st *store.Store, fixtures map[string]any) error {
	if len(fixtures) == 0 {
		return nil
	}
	b := st.Batch()
	for name, v := range fixtures {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("fixture %s: %w", name, err)
		}
		b.PutRaw(name, raw)
	}
	return b.Commit(ctx)
}

func checkExpect(result *Result, i int, step FlowStep, out storefront.Outcome) {
	exp := step.Expect
	if exp == nil {
		return
	}
	got := string(out.Code)
	if got == "" {
		got = "ok"
	}
	if exp.Code != got {
		result.AddError(fmt.Sprintf("flow[%d] %s: expected code %s, got %s (%s)", i, step.Kind, exp.Code, got, out.Message))
	}
	if exp.Message != "" && exp.Message != out.Message {
		result.AddError(fmt.Sprintf("flow[%d] %s: expected message %q, got %q", i, step.Kind, exp.Message, out.Message))
	}
	if exp.Badges != nil && *exp.Badges != out.Badges {
		result.AddError(fmt.Sprintf("flow[%d] %s: expected badges %+v, got %+v", i, step.Kind, *exp.Badges, out.Badges))
	}
}
