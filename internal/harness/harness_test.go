package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chairSetup() []ActionStep {
	return []ActionStep{
		{Action: "register_material", Args: map[string]any{"name": "Wood", "threshold": 5}},
		{Action: "register_product", Args: map[string]any{"name": "Chair", "price": 500, "threshold": 1}},
		{Action: "set_recipe_line", Args: map[string]any{"product": "Chair", "material": "Wood", "quantity": 3}},
		{Action: "adjust_stock", Args: map[string]any{"kind": "material", "item": "Wood", "delta": 10}},
	}
}

func TestRun_CraftAndSell(t *testing.T) {
	scenario := &Scenario{
		Name:        "craft_and_sell",
		Description: "craft then sell",
		Actor:       "alice",
		Setup:       chairSetup(),
		Flow: []FlowStep{
			{Invoke: "craft", Args: map[string]any{"product": "Chair", "quantity": 2}},
			{Invoke: "sell", Args: map[string]any{"product": "Chair"}},
		},
		Assertions: []Assertion{
			{Type: AssertAuditCount, Count: 3},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	// 4 setup steps + 2 flow steps, one invocation and one completion each
	require.Len(t, result.Trace, 12)
	for i, ev := range result.Trace {
		assert.Equal(t, int64(i+1), ev.Seq)
	}

	craft := result.Trace[9]
	assert.Equal(t, EventCompletion, craft.Type)
	assert.Equal(t, OutputSuccess, craft.OutputCase)
	assert.Equal(t, "req-0002", craft.Result["request_id"])
	assert.Equal(t, float64(2), craft.Result["product_stock"])

	sell := result.Trace[11]
	assert.Equal(t, float64(500), sell.Result["unit_price"], "price resolved from the catalog")
	assert.Equal(t, float64(1), sell.Result["product_stock"])

	require.Len(t, result.Audit, 3)
	assert.Equal(t, "Wood (+10)", result.Audit[0].Detail, "audit is oldest first")
	assert.Equal(t, "Chair x1 (500)", result.Audit[2].Detail)

	// Wood 10 - 6 = 4 <= 5; Chair 2 - 1 = 1 <= 1
	require.Len(t, result.Alerts, 2)
	assert.Equal(t, "Wood", result.Alerts[0].Item)
	assert.Equal(t, "Chair", result.Alerts[1].Item)
}

func TestRun_RejectionIsAnOutputCase(t *testing.T) {
	scenario := &Scenario{
		Name:        "shortfall",
		Description: "craft more than the stock covers",
		Setup:       chairSetup(),
		Flow: []FlowStep{
			{
				Invoke: "craft",
				Args:   map[string]any{"product": "Chair", "quantity": 4},
				Expect: &ExpectClause{
					Case:   "INSUFFICIENT_MATERIAL",
					Result: map[string]any{"item": "Wood", "needed": 12, "available": 10},
				},
			},
		},
		Assertions: []Assertion{
			{Type: AssertAuditCount, Kind: "CRAFT", Count: 0},
			{Type: AssertFinalState, Table: "materials", Where: map[string]any{"name": "Wood"}, Expect: map[string]any{"stock": 10}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, "INSUFFICIENT_MATERIAL", last.OutputCase)
	assert.Equal(t, "not enough Wood: needed 12, available 10", last.Result["message"])
	assert.Empty(t, result.Alerts)
}

func TestRun_ExpectMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Setup:       chairSetup(),
		Flow: []FlowStep{
			{Invoke: "craft", Args: map[string]any{"product": "Chair"}, Expect: &ExpectClause{Case: "INSUFFICIENT_MATERIAL"}},
			{Invoke: "craft", Args: map[string]any{"product": "Chair"}, Expect: &ExpectClause{Case: OutputSuccess, Result: map[string]any{"product_stock": 7, "bogus": 1}}},
			{Invoke: "sell", Args: map[string]any{"product": "Chair", "quantity": 9}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Action: "craft", Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, "flow[0] craft: expected case INSUFFICIENT_MATERIAL, got Success", result.Errors[0])
	assert.Equal(t, "flow[1] craft: result.bogus missing", result.Errors[1])
	assert.Equal(t, "flow[1] craft: result.product_stock = 2, want 7", result.Errors[2])
	assert.Contains(t, result.Errors[3], "flow[2] sell: expected Success, got INSUFFICIENT_STOCK")
}

func TestRun_AdvanceMovesClock(t *testing.T) {
	scenario := &Scenario{
		Name:        "shift",
		Description: "one shift",
		Flow: []FlowStep{
			{Invoke: "clock_in", Args: map[string]any{"actor": "bob"}},
			{Invoke: "clock_out", Args: map[string]any{"actor": "bob"}, Advance: "2h15m30s"},
		},
		Assertions: []Assertion{
			{Type: AssertFinalState, Table: "work_sessions", Where: map[string]any{"actor_id": "bob"}, Expect: map[string]any{"minutes": 135}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	out := result.Trace[3]
	assert.Equal(t, float64(135), out.Result["minutes"])
	assert.Equal(t, "2024-01-01T11:15:30Z", out.Result["ended_at"])
}

func TestRun_StepActorOverridesScenarioActor(t *testing.T) {
	scenario := &Scenario{
		Name:        "actors",
		Description: "per-step actors",
		Actor:       "alice",
		Setup: []ActionStep{
			{Action: "register_product", Args: map[string]any{"name": "Chair", "price": 100}},
			{Action: "adjust_stock", Args: map[string]any{"kind": "product", "item": "Chair", "delta": 3}},
		},
		Flow: []FlowStep{
			{Invoke: "sell", Args: map[string]any{"product": "Chair", "actor": "bob"}},
			{Invoke: "role_change", Args: map[string]any{"target": "bob", "role": "admin", "granted": false}},
		},
		Assertions: []Assertion{
			{Type: AssertAuditContains, Kind: "RESTOCK", Actor: "alice"},
			{Type: AssertAuditContains, Kind: "SALE", Actor: "bob"},
			{Type: AssertAuditContains, Kind: "ROLE_REVOKE", Actor: "alice", Detail: "bob -admin"},
			{Type: AssertFinalState, Table: "sales_totals", Where: map[string]any{"actor_id": "bob"}, Expect: map[string]any{"amount": 100}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_SetupFailureAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "setup references a missing product",
		Setup: []ActionStep{
			{Action: "set_recipe_line", Args: map[string]any{"product": "Chair", "material": "Wood", "quantity": 1}},
		},
		Flow:       []FlowStep{{Invoke: "craft", Args: map[string]any{"product": "Chair"}}},
		Assertions: []Assertion{{Type: AssertTraceCount, Action: "craft", Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup step 0 (set_recipe_line): UNKNOWN_ITEM")
}

func TestRun_MalformedArgsAbort(t *testing.T) {
	tests := []struct {
		name    string
		step    FlowStep
		wantErr string
	}{
		{"missing arg", FlowStep{Invoke: "craft", Args: map[string]any{}}, `missing arg "product"`},
		{"wrong type", FlowStep{Invoke: "craft", Args: map[string]any{"product": "Chair", "quantity": "three"}}, `arg "quantity": want integer`},
		{"fractional", FlowStep{Invoke: "craft", Args: map[string]any{"product": "Chair", "quantity": 1.5}}, "want integer, got 1.5"},
		{"bad kind", FlowStep{Invoke: "adjust_stock", Args: map[string]any{"kind": "widget", "item": "x", "delta": 1}}, "unknown item kind"},
		{"granted not bool", FlowStep{Invoke: "role_change", Args: map[string]any{"target": "bob", "role": "admin", "granted": "no"}}, "want bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "malformed",
				Description: "malformed args",
				Flow:        []FlowStep{tt.step},
				Assertions:  []Assertion{{Type: AssertTraceCount, Action: tt.step.Invoke, Count: 1}},
			}
			_, err := Run(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "flow step 0")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_InvalidScenario(t *testing.T) {
	_, err := Run(&Scenario{Name: "empty", Description: "no flow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scenario")
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/chair_craft.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Audit, second.Audit)
	assert.Equal(t, first.Alerts, second.Alerts)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	assert.NotNil(t, r.Trace)
	assert.NotNil(t, r.Audit)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
