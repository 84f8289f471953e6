package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sort"
	"time"

	"github.com/roach88/craftledger/internal/ledger"
	"github.com/roach88/craftledger/internal/model"
	"github.com/roach88/craftledger/internal/store"
	"github.com/roach88/craftledger/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs steps against a real ledger with a manual clock, sequential
// request IDs and recorded alerts so every run of a scenario produces the
// same trace.
type Harness struct {
	store  *store.Store
	ledger *ledger.Ledger
	clock  *testutil.ManualClock
	alerts *testutil.AlertRecorder
	logger *slog.Logger
	actor  string
	seq    int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The clock
// starts at testutil.Epoch and request IDs run req-0001, req-0002, ...
//
// Execution flow:
// 1. Create fresh in-memory database and ledger
// 2. Execute setup steps (each must succeed)
// 3. Execute flow steps with expect validation
// 4. Collect the audit log and alerts
// 5. Evaluate assertions and return the result
//
// A step whose arguments are malformed, or that hits a storage failure,
// aborts the run with an error. Ledger rejections are ordinary outcomes.
func Run(scenario *Scenario) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewManualClock(testutil.Epoch),
		alerts: &testutil.AlertRecorder{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		actor:  scenario.Actor,
	}
	if h.actor == "" {
		h.actor = DefaultActor
	}
	h.ledger = ledger.New(st,
		ledger.WithClock(h.clock),
		ledger.WithRequestIDs(testutil.NewSequenceGenerator("req")),
		ledger.WithAlerts(h.alerts),
		ledger.WithLogger(h.logger),
	)

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	audit, err := h.auditLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	result.Audit = audit
	result.Alerts = h.alerts.Alerts()

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup runs all setup steps.
// Setup completions are traced without a result to keep golden files short.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		result.AddInvocationTrace(step.Action, step.Args, h.nextSeq())

		outputCase, res, err := h.invoke(ctx, step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		if outputCase != OutputSuccess {
			return fmt.Errorf("setup step %d (%s): %s: %v", i, step.Action, outputCase, res["message"])
		}

		result.AddCompletionTrace(outputCase, nil, h.nextSeq())
		h.logger.Debug("setup step completed", "step", i, "action", step.Action)
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
//
// Each step:
// 1. Advances the clock if requested
// 2. Invokes the ledger operation
// 3. Records invocation and completion in the trace
// 4. Compares the completion against the expect clause
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		if step.Advance != "" {
			d, err := time.ParseDuration(step.Advance)
			if err != nil {
				return fmt.Errorf("flow step %d: advance: %w", i, err)
			}
			h.clock.Advance(d)
		}

		result.AddInvocationTrace(step.Invoke, step.Args, h.nextSeq())

		outputCase, res, err := h.invoke(ctx, step.Invoke, step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}
		result.AddCompletionTrace(outputCase, res, h.nextSeq())

		for _, msg := range checkExpect(step.Expect, outputCase, res) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		h.logger.Debug("flow step completed", "step", i, "action", step.Invoke, "output_case", outputCase)
	}
	return nil
}

// invoke runs one action and classifies its outcome. Ledger rejections come
// back as an output case named after the error code; everything else that
// fails is returned as err.
func (h *Harness) invoke(ctx context.Context, action string, args map[string]any) (string, map[string]any, error) {
	fn, ok := actions[action]
	if !ok {
		return "", nil, fmt.Errorf("unknown action %q", action)
	}
	a := stepArgs(args)
	actor, err := a.actorFor(h.actor)
	if err != nil {
		return "", nil, err
	}

	out, err := fn(ctx, h.ledger, actor, a)
	if err != nil {
		var lerr *ledger.Error
		if !errors.As(err, &lerr) || lerr.Code == ledger.CodeStorageUnavailable {
			return "", nil, err
		}
		res, nerr := normalizeMap(errorResult(lerr))
		if nerr != nil {
			return "", nil, nerr
		}
		return string(lerr.Code), res, nil
	}

	if out == nil {
		return OutputSuccess, nil, nil
	}
	res, err := normalizeMap(out)
	if err != nil {
		return "", nil, err
	}
	return OutputSuccess, res, nil
}

func (h *Harness) nextSeq() int64 {
	h.seq++
	return h.seq
}

// auditLog returns the whole audit log, oldest first.
func (h *Harness) auditLog(ctx context.Context) ([]model.AuditRecord, error) {
	var recs []model.AuditRecord
	err := h.store.View(ctx, func(tx *store.Tx) error {
		n, err := tx.AuditCount(ctx)
		if err != nil {
			return err
		}
		recs, err = tx.RecentAudit(ctx, int(n))
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(recs)
	return recs, nil
}

// errorResult is the completion result of a rejected step.
func errorResult(e *ledger.Error) map[string]any {
	res := map[string]any{"message": e.Message}
	if e.Kind != "" {
		res["kind"] = string(e.Kind)
	}
	if e.Item != "" {
		res["item"] = e.Item
	}
	if e.Code == ledger.CodeInsufficientMaterial || e.Code == ledger.CodeInsufficientStock {
		res["needed"] = e.Needed
		res["available"] = e.Available
	}
	return res
}

// checkExpect compares a completion with its expect clause. A nil clause
// expects Success.
func checkExpect(expect *ExpectClause, outputCase string, res map[string]any) []string {
	if expect == nil {
		if outputCase != OutputSuccess {
			return []string{fmt.Sprintf("expected Success, got %s: %v", outputCase, res["message"])}
		}
		return nil
	}
	if outputCase != expect.Case {
		return []string{fmt.Sprintf("expected case %s, got %s", expect.Case, outputCase)}
	}
	if len(expect.Result) == 0 {
		return nil
	}

	want, err := normalizeMap(expect.Result)
	if err != nil {
		return []string{fmt.Sprintf("expect.result: %v", err)}
	}
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		got, ok := res[k]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("result.%s missing", k))
			continue
		}
		if !reflect.DeepEqual(got, want[k]) {
			msgs = append(msgs, fmt.Sprintf("result.%s = %v, want %v", k, got, want[k]))
		}
	}
	return msgs
}

// normalizeMap round-trips v through JSON so results from Go structs and
// values decoded from YAML compare equal (numbers become float64, structs
// become maps keyed by their JSON names).
func normalizeMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("normalize result: %w", err)
	}
	return m, nil
}
