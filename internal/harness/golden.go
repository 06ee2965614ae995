package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden form of a scenario run.
type TraceSnapshot struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`
}

// MarshalTrace renders the trace as indented JSON ending in a newline.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	data, err := json.MarshalIndent(TraceSnapshot{Scenario: scenarioName, Trace: result.Trace}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

// GoldenPath returns the golden file that sits next to a scenario file:
// <dir>/golden/<base>.golden.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// WriteGolden stores the trace as the golden file for scenarioFile.
func WriteGolden(scenarioFile string, scenario *Scenario, result *Result) error {
	data, err := MarshalTrace(scenario.Name, result)
	if err != nil {
		return err
	}
	path := GoldenPath(scenarioFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the trace equals the golden file for
// scenarioFile. found is false when no golden file exists.
func CompareGolden(scenarioFile string, scenario *Scenario, result *Result) (match, found bool, err error) {
	want, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("read golden file: %w", err)
	}
	got, err := MarshalTrace(scenario.Name, result)
	if err != nil {
		return false, true, err
	}
	return bytes.Equal(want, got), true, nil
}
