package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScenarioOutcome is the result of running one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// Golden comparison states reported in ScenarioOutcome.Golden.
const (
	GoldenMatch   = "match"
	GoldenUpdated = "updated"
	GoldenMissing = "missing"
)

// SuiteOptions controls RunSuite.
type SuiteOptions struct {
	// Filter is a glob matched against the scenario file name without
	// extension. Empty runs everything.
	Filter string

	// Update rewrites golden files instead of comparing against them.
	Update bool
}

// RunSuite runs every .yaml/.yml scenario under dir, in lexical order.
//
// A scenario's golden file lives at <scenario dir>/golden/<file name>.golden.
// Without one, only the scenario's own expectations and assertions count.
// The returned error covers only problems finding the files; per-scenario
// failures are reported in the result.
func RunSuite(dir string, opts SuiteOptions) (*SuiteResult, error) {
	files, err := FindScenarioFiles(dir, opts.Filter)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{
		Scenarios: make([]ScenarioOutcome, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		outcome := RunFile(file, opts.Update)
		result.Scenarios = append(result.Scenarios, outcome)
		if outcome.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

// FindScenarioFiles finds all YAML scenario files in a directory.
// Golden directories are skipped.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// GoldenPath returns the path to the golden file for a scenario file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// RunFile loads, runs and golden-checks one scenario file.
func RunFile(path string, update bool) ScenarioOutcome {
	out := ScenarioOutcome{Name: filepath.Base(path), Path: path}

	scenario, err := LoadScenario(path)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
		return out
	}
	out.Name = scenario.Name

	result, err := Run(scenario)
	if err != nil {
		out.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return out
	}
	out.Errors = result.Errors

	data, err := newSnapshot(scenario.Name, result).Marshal()
	if err != nil {
		out.Errors = append(out.Errors, err.Error())
		return out
	}

	goldenPath := GoldenPath(path)
	switch {
	case update:
		if err := writeGolden(goldenPath, data); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("failed to update golden file: %v", err))
			return out
		}
		out.Golden = GoldenUpdated
	default:
		want, err := os.ReadFile(goldenPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			out.Golden = GoldenMissing
		case err != nil:
			out.Errors = append(out.Errors, fmt.Sprintf("failed to read golden file: %v", err))
			return out
		case !bytes.Equal(want, data):
			out.Errors = append(out.Errors, "trace does not match golden file (run with --update to regenerate)")
			return out
		default:
			out.Golden = GoldenMatch
		}
	}

	out.Pass = result.Pass
	return out
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
