package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/notify"
)

// TraceSnapshot captures everything a scenario run produced.
// It is serialized as indented JSON with sorted keys for deterministic
// comparison.
type TraceSnapshot struct {
	ScenarioName string              `json:"scenario_name"`
	Trace        []TraceEvent        `json:"trace"`
	Audit        []model.AuditRecord `json:"audit"`
	Alerts       []notify.Alert      `json:"alerts"`
}

// Marshal renders the snapshot in its golden-file form.
func (s *TraceSnapshot) Marshal() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	// Decoding into any sorts every object's keys on re-encode.
	var canonical any
	if err := json.Unmarshal(raw, &canonical); err != nil {
		return nil, fmt.Errorf("canonicalize snapshot: %w", err)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(canonical); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func newSnapshot(name string, result *Result) *TraceSnapshot {
	s := &TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Audit:        result.Audit,
		Alerts:       result.Alerts,
	}
	if s.Audit == nil {
		s.Audit = []model.AuditRecord{}
	}
	if s.Alerts == nil {
		s.Alerts = []notify.Alert{}
	}
	return s
}

// RunWithGolden executes a scenario and compares its trace, audit log and
// alerts against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
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

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := newSnapshot(scenarioName, result).Marshal()
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
