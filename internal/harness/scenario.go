package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultActor performs steps that don't name an actor.
const DefaultActor = "harness"

// Scenario defines a ledger test scenario.
// A scenario seeds a fresh ledger, runs a flow of operations against it and
// asserts on the resulting trace, audit log, alerts and final tables.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Actor performs every step without an explicit "actor" arg.
	// Defaults to DefaultActor.
	Actor string `yaml:"actor,omitempty"`

	// Setup contains actions to invoke before the main flow.
	// These establish initial state (catalog, recipes, starting stock).
	// Every setup action must succeed.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the main test flow - invocations with expected results.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep represents a single action invocation.
// Used in Setup sections to establish initial state.
type ActionStep struct {
	// Action is the ledger operation (e.g., "register_material").
	Action string `yaml:"action"`

	// Args contains the operation arguments as a map.
	Args map[string]any `yaml:"args"`
}

// FlowStep represents a step in the main test flow.
type FlowStep struct {
	// Invoke is the ledger operation to invoke.
	Invoke string `yaml:"invoke"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args"`

	// Advance moves the scenario clock forward before the step runs
	// (a Go duration such as "90m").
	Advance string `yaml:"advance,omitempty"`

	// Expect specifies the expected completion result.
	// If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected completion behavior.
type ExpectClause struct {
	// Case is "Success" or a ledger error code (e.g., "INSUFFICIENT_MATERIAL").
	Case string `yaml:"case"`

	// Result contains expected result field values.
	// This is a subset match - only specified fields are validated.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check action appears in trace with args
	// - "trace_order": Check actions appear in order
	// - "trace_count": Check action appears exactly N times
	// - "final_state": Query table and verify expected values
	// - "audit_contains": Check the audit log has a matching record
	// - "audit_count": Check the number of audit records (optionally of one kind)
	// - "alert_count": Check the number of alerts (optionally for one item)
	Type string `yaml:"type"`

	// Action is the operation name (used by trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected action arguments (used by trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]any `yaml:"args,omitempty"`

	// Table is the ledger table name (used by final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (used by final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (used by final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences
	// (used by trace_count, audit_count, alert_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected action order (used by trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Kind, Actor and Detail filter audit records (audit_contains,
	// audit_count). Empty fields match anything.
	Kind   string `yaml:"kind,omitempty"`
	Actor  string `yaml:"actor,omitempty"`
	Detail string `yaml:"detail,omitempty"`

	// Item filters alerts (used by alert_count).
	Item string `yaml:"item,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertAuditContains = "audit_contains"
	AssertAuditCount    = "audit_count"
	AssertAlertCount    = "alert_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if scenario.Actor == "" {
		scenario.Actor = DefaultActor
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validIdentifier.MatchString(s.Name) {
		return fmt.Errorf("name %q must match %s", s.Name, validIdentifier.String())
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

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
		if _, ok := actions[step.Action]; !ok {
			return fmt.Errorf("setup[%d]: unknown action %q", i, step.Action)
		}
		if step.Args == nil {
			return fmt.Errorf("setup[%d]: args is required (use empty map if no args)", i)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if _, ok := actions[step.Invoke]; !ok {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		}
		if step.Args == nil {
			return fmt.Errorf("flow[%d]: args is required (use empty map if no args)", i)
		}
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("flow[%d]: advance: %w", i, err)
			}
			if d < 0 {
				return fmt.Errorf("flow[%d]: advance must not be negative", i)
			}
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d].expect: case is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if !stateTables[a.Table] {
			return fmt.Errorf("assertions[%d]: unknown table %q for final_state", index, a.Table)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertAuditContains:
		if a.Kind == "" && a.Actor == "" && a.Detail == "" {
			return fmt.Errorf("assertions[%d]: kind, actor or detail is required for audit_contains", index)
		}
	case AssertAuditCount, AssertAlertCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
