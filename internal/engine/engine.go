// Package engine is the execution engine (component F), the single-step
// cooperative state machine described in spec §4.6. It replaces the
// teacher's pkg/engine/dag_executor.go wave-parallel driver: no execution's
// in-memory state survives a Suspend — the only carrier across a suspension
// boundary is the database row plus the re-enqueued Job.
//
// Kept from the teacher: the adjacency-list traversal and structural
// validation already live on models.Workflow (Validate, GetNode, GetEdge);
// the "wrap node execution in a retry policy with backoff" idiom from
// pkg/engine/retry_policy.go (see retry.go); and the single-predecessor
// "merge input with parent output" idiom from the teacher's
// node_executor.go, reproduced in the Continue/Branch cases below.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openobserve/swisspipe/internal/nodes"
	"github.com/openobserve/swisspipe/internal/template"
	"github.com/openobserve/swisspipe/pkg/models"
)

// ExecutionStore is the subset of internal/storage.ExecutionRepository the
// engine needs.
type ExecutionStore interface {
	Get(ctx context.Context, id string) (*models.Execution, error)
	ClaimExecution(ctx context.Context, id string) (*models.Execution, error)
	UpdateProgress(ctx context.Context, id, currentNodeID string) error
	Finalize(ctx context.Context, id string, status models.ExecutionStatus, output map[string]any, execErr string) error
	CreateStep(ctx context.Context, s *models.ExecutionStep) error
	FindStep(ctx context.Context, executionID, nodeID string, attempt int) (*models.ExecutionStep, error)
	FinalizeStep(ctx context.Context, stepID string, status models.StepStatus, output map[string]any, stepErr string) error
}

// EventStore is the subset of internal/storage.EventRepository the engine
// needs for observability.
type EventStore interface {
	Append(ctx context.Context, e *models.Event) error
}

// VariableStore is the subset of internal/storage.VariableRepository the
// engine needs to build a template context.
type VariableStore interface {
	Snapshot(ctx context.Context) (map[string]any, error)
}

// WorkflowLoader is the subset of internal/cache.WorkflowCache the engine
// needs to resolve a pinned workflow version.
type WorkflowLoader interface {
	GetPinned(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error)
}

// Scheduler registers a suspended execution's eventual resumption (the
// delay/HIL heaps of component H).
type Scheduler interface {
	ScheduleResume(executionID string, reason models.SuspendReason, fireAt int64, token models.ResumeToken) error
}

// Enqueuer re-submits a Job to the worker pool (component G), used for
// Continue-outcome fan-out and Fail/Retry re-enqueue.
type Enqueuer interface {
	Enqueue(job models.Job) error
}

// Engine drives one Job at a time through the step loop.
type Engine struct {
	Executions ExecutionStore
	Events     EventStore
	Variables  VariableStore
	Workflows  WorkflowLoader
	Handlers   *nodes.Registry
	Scheduler  Scheduler
	Queue      Enqueuer
}

// ErrDuplicateJob is returned when a job arrives for an execution that is
// not in a claimable state; the caller (component G) should drop it
// silently — this is the ordinary at-least-once-delivery race, not a bug.
var ErrDuplicateJob = errors.New("duplicate job: execution not claimable")

// Step runs algorithm §4.6 for one Job: claim, load the pinned workflow
// version, build the template context, determine the cursor, then loop
// node-by-node until Suspend, a terminal Fail, or the graph is exhausted.
func (e *Engine) Step(ctx context.Context, job models.Job) error {
	exec, err := e.Executions.ClaimExecution(ctx, job.ExecutionID)
	if err != nil {
		if errors.Is(err, models.ErrAlreadyRunning) {
			return ErrDuplicateJob
		}
		return fmt.Errorf("claim execution: %w", err)
	}

	version, err := e.Workflows.GetPinned(ctx, exec.WorkflowID, exec.VersionNumber)
	if err != nil {
		return fmt.Errorf("load workflow version: %w", err)
	}
	graph := version.Snapshot

	env, err := e.Variables.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load variable snapshot: %w", err)
	}

	cursorNodeID, event, err := e.determineCursor(graph, job, exec)
	if err != nil {
		return e.failExecution(ctx, exec, models.ErrorKindValidation, err.Error())
	}

	return e.runStepLoop(ctx, exec, graph, env, cursorNodeID, event)
}

func (e *Engine) determineCursor(graph *models.Workflow, job models.Job, exec *models.Execution) (string, map[string]any, error) {
	if job.ResumeToken.Kind == models.ResumeStart {
		trigger, err := graph.TriggerNode()
		if err != nil {
			return "", nil, err
		}
		event := exec.Input
		if event == nil {
			event = map[string]any{}
		}
		return trigger.ID, event, nil
	}
	if _, err := graph.GetNode(job.ResumeToken.NodeID); err != nil {
		return "", nil, err
	}
	return job.ResumeToken.NodeID, job.ResumeToken.Payload, nil
}

// runStepLoop is the cooperative, single-goroutine step loop: it keeps
// advancing the cursor through Continue/Branch/Skip outcomes without
// re-enqueuing, and only returns once the execution has left Running (via
// Suspend, Fail, cancellation, or completion).
func (e *Engine) runStepLoop(ctx context.Context, exec *models.Execution, graph *models.Workflow, env map[string]any, cursorNodeID string, event map[string]any) error {
	for {
		select {
		case <-ctx.Done():
			return e.cancelExecution(ctx, exec)
		default:
		}

		node, err := graph.GetNode(cursorNodeID)
		if err != nil {
			return e.failExecution(ctx, exec, models.ErrorKindValidation, err.Error())
		}

		if err := e.Executions.UpdateProgress(ctx, exec.ID, cursorNodeID); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		outcome, terminal, err := e.runNode(ctx, exec, node, env, event)
		if err != nil {
			return err
		}
		if terminal {
			return nil
		}

		switch outcome.Variant {
		case models.OutcomeSkip:
			next, ok := nextSingle(graph, cursorNodeID, nil)
			if !ok {
				return e.completeExecution(ctx, exec, event)
			}
			cursorNodeID = next

		case models.OutcomeContinue:
			event = outcome.Event
			targets := nextTargets(graph, cursorNodeID, nil)
			if len(targets) == 0 {
				return e.completeExecution(ctx, exec, event)
			}
			e.fanOutExtra(exec, targets[1:], event)
			cursorNodeID = targets[0]

		case models.OutcomeBranch:
			event = outcome.Event
			branch := outcome.BranchResult
			next, ok := nextSingle(graph, cursorNodeID, &branch)
			if !ok {
				return e.completeExecution(ctx, exec, event)
			}
			cursorNodeID = next

		case models.OutcomeSuspend:
			if outcome.SuspendReason == models.SuspendReasonDelay && outcome.ResumeToken != nil && outcome.ResumeToken.NodeID == "" {
				// A Delay resumes at its successor, not at the Delay node itself.
				next, ok := nextSingle(graph, cursorNodeID, nil)
				if !ok {
					return e.completeExecution(ctx, exec, event)
				}
				token := *outcome.ResumeToken
				token.NodeID = next
				outcome.ResumeToken = &token
			}
			return e.suspendExecution(ctx, exec, cursorNodeID, outcome)

		case models.OutcomeFail:
			next, cont, err := e.handleFail(ctx, exec, graph, node, cursorNodeID, event, outcome)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
			cursorNodeID = next

		default:
			return e.failExecution(ctx, exec, models.ErrorKindValidation, fmt.Sprintf("unknown outcome variant %q", outcome.Variant))
		}
	}
}

// runNode resolves the node's config against env/event, dispatches to its
// handler, and persists the resulting step row. The bool return reports
// whether the execution already reached a terminal state internally (a
// resolution or dispatch error), so the caller's loop should stop without
// inspecting outcome further.
func (e *Engine) runNode(ctx context.Context, exec *models.Execution, node *models.Node, env, event map[string]any) (models.Outcome, bool, error) {
	attempt, err := e.latestAttempt(ctx, exec.ID, node.ID)
	if err != nil {
		return models.Outcome{}, true, fmt.Errorf("load attempt history: %w", err)
	}
	attempt++

	step := &models.ExecutionStep{
		ExecutionID: exec.ID,
		NodeID:      node.ID,
		Status:      models.StepStatusRunning,
		Input:       event,
		Attempt:     attempt,
		StartedAt:   time.Now().UTC(),
	}
	if err := e.Executions.CreateStep(ctx, step); err != nil {
		return models.Outcome{}, true, fmt.Errorf("create step row: %w", err)
	}

	resolvedConfig, err := resolveConfig(&node.Type, env, event)
	if err != nil {
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusFailed, nil, err.Error())
		return models.Outcome{}, true, e.failExecution(ctx, exec, models.ErrorKindMissingVariable, err.Error())
	}

	handler, err := e.Handlers.Get(node.Type.Kind)
	if err != nil {
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusFailed, nil, err.Error())
		return models.Outcome{}, true, e.failExecution(ctx, exec, models.ErrorKindValidation, err.Error())
	}

	outcome, err := handler.Execute(ctx, resolvedConfig, event)
	if err != nil {
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusFailed, nil, err.Error())
		return models.Outcome{}, true, e.failExecution(ctx, exec, models.ErrorKindScriptError, err.Error())
	}

	switch outcome.Variant {
	case models.OutcomeSkip:
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusSkipped, nil, "")
	case models.OutcomeFail:
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusFailed, nil, outcome.FailMsg)
	case models.OutcomeSuspend:
		// Suspension is not a failure: the step completes here, and the
		// resumed job opens a new step row at its resume node.
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusCompleted, nil, "")
	default:
		_ = e.Executions.FinalizeStep(ctx, step.ID, models.StepStatusCompleted, outcome.Event, "")
	}
	e.emit(ctx, exec.ID, node.ID, outcome)

	return outcome, false, nil
}

func (e *Engine) latestAttempt(ctx context.Context, executionID, nodeID string) (int, error) {
	// FindStep is keyed by exact attempt number; attempt discovery walks up
	// from 1 until a miss, bounded by a sane ceiling so a corrupted step
	// history can't spin forever.
	for attempt := 1; attempt <= 1000; attempt++ {
		step, err := e.Executions.FindStep(ctx, executionID, nodeID, attempt)
		if err != nil {
			return 0, err
		}
		if step == nil {
			return attempt - 1, nil
		}
	}
	return 0, fmt.Errorf("attempt history exceeded bound for node %s", nodeID)
}

// handleFail applies the failed node's FailureAction. It returns the next
// cursor and whether the loop should continue with it; cont is false once
// handleFail has already finalized the execution (Stop, exhausted Retry, or
// a Continue into a terminal node).
func (e *Engine) handleFail(ctx context.Context, exec *models.Execution, graph *models.Workflow, node *models.Node, cursorNodeID string, event map[string]any, outcome models.Outcome) (string, bool, error) {
	switch failureActionFor(&node.Type) {
	case models.FailureActionContinue:
		if event == nil {
			event = map[string]any{}
		}
		event["error"] = outcome.FailMsg
		targets := nextTargets(graph, cursorNodeID, nil)
		if len(targets) == 0 {
			return "", false, e.completeExecution(ctx, exec, event)
		}
		e.fanOutExtra(exec, targets[1:], event)
		return targets[0], true, nil

	case models.FailureActionRetry:
		retryCfg := retryConfigFor(&node.Type)
		policy := RetryPolicyFromConfig(retryCfg)
		attempt, err := e.latestAttempt(ctx, exec.ID, cursorNodeID)
		if err != nil {
			return "", false, e.failExecution(ctx, exec, outcome.FailKind, outcome.FailMsg)
		}
		if !policy.ShouldRetry(attempt) || !outcome.FailKind.Retryable() {
			return "", false, e.failExecution(ctx, exec, outcome.FailKind, outcome.FailMsg)
		}
		if retryCfg != nil && !evalRetryIf(retryCfg.RetryIf, event, outcome.FailMsg) {
			return "", false, e.failExecution(ctx, exec, outcome.FailKind, outcome.FailMsg)
		}
		delay := policy.GetDelay(attempt)
		fireAt := time.Now().Add(delay).UnixMilli()
		token := models.AtNodeToken(cursorNodeID, event)
		if err := e.Scheduler.ScheduleResume(exec.ID, models.SuspendReasonDelay, fireAt, token); err != nil {
			return "", false, fmt.Errorf("schedule retry: %w", err)
		}
		e.emitExecutionEvent(ctx, exec.ID, models.EventTypeNodeRetrying, map[string]any{"node_id": cursorNodeID, "attempt": attempt})
		return "", false, e.Executions.UpdateProgress(ctx, exec.ID, cursorNodeID)

	default: // Stop
		return "", false, e.failExecution(ctx, exec, outcome.FailKind, outcome.FailMsg)
	}
}

func (e *Engine) suspendExecution(ctx context.Context, exec *models.Execution, cursorNodeID string, outcome models.Outcome) error {
	token := *outcome.ResumeToken
	if token.NodeID == "" {
		token.NodeID = cursorNodeID
	}
	var fireAt int64
	if outcome.ResumeAt != nil {
		fireAt = *outcome.ResumeAt
	}
	if err := e.Scheduler.ScheduleResume(exec.ID, outcome.SuspendReason, fireAt, token); err != nil {
		return fmt.Errorf("schedule resume: %w", err)
	}
	if err := e.Executions.UpdateProgress(ctx, exec.ID, cursorNodeID); err != nil {
		return fmt.Errorf("update progress on suspend: %w", err)
	}
	e.emitExecutionEvent(ctx, exec.ID, models.EventTypeExecutionSuspended, map[string]any{"node_id": cursorNodeID})
	return nil
}

func (e *Engine) completeExecution(ctx context.Context, exec *models.Execution, output map[string]any) error {
	if err := e.Executions.Finalize(ctx, exec.ID, models.ExecutionStatusCompleted, output, ""); err != nil {
		return fmt.Errorf("finalize execution: %w", err)
	}
	e.emitExecutionEvent(ctx, exec.ID, models.EventTypeExecutionCompleted, nil)
	return nil
}

func (e *Engine) failExecution(ctx context.Context, exec *models.Execution, kind models.ErrorKind, msg string) error {
	if err := e.Executions.Finalize(ctx, exec.ID, models.ExecutionStatusFailed, nil, msg); err != nil {
		return fmt.Errorf("finalize execution: %w", err)
	}
	e.emitExecutionEvent(ctx, exec.ID, models.EventTypeExecutionFailed, map[string]any{"error": msg, "kind": string(kind)})
	return nil
}

func (e *Engine) cancelExecution(ctx context.Context, exec *models.Execution) error {
	if err := e.Executions.Finalize(ctx, exec.ID, models.ExecutionStatusCancelled, nil, "cancelled"); err != nil {
		return fmt.Errorf("finalize cancelled execution: %w", err)
	}
	e.emitExecutionEvent(ctx, exec.ID, models.EventTypeExecutionCancelled, nil)
	return nil
}

// fanOutExtra enqueues every target beyond the loop's own cursor as a new
// Job on the same execution, per spec §4.6's declared-edge-order fan-out.
func (e *Engine) fanOutExtra(exec *models.Execution, targets []string, event map[string]any) {
	for _, target := range targets {
		_ = e.Queue.Enqueue(models.Job{
			ExecutionID: exec.ID,
			ResumeToken: models.AtNodeToken(target, event),
			EnqueuedAt:  time.Now().UTC(),
			Attempt:     1,
		})
	}
}

func (e *Engine) emit(ctx context.Context, executionID, nodeID string, outcome models.Outcome) {
	eventType := models.EventTypeNodeCompleted
	switch outcome.Variant {
	case models.OutcomeFail:
		eventType = models.EventTypeNodeFailed
	case models.OutcomeSkip:
		eventType = models.EventTypeNodeSkipped
	}
	e.emitExecutionEvent(ctx, executionID, eventType, map[string]any{"node_id": nodeID})
}

func (e *Engine) emitExecutionEvent(ctx context.Context, executionID, eventType string, payload map[string]any) {
	_ = e.Events.Append(ctx, &models.Event{ExecutionID: executionID, EventType: eventType, Payload: payload})
}

// resolveConfig template-resolves every string field of a node's config
// against env/event by round-tripping through its wire JSON form (the
// single-key tagged-union encoding from pkg/models/node_types.go), so the
// original graph snapshot — shared across concurrent executions via the
// cache — is never mutated in place.
func resolveConfig(cfg *models.NodeConfig, env, event map[string]any) (*models.NodeConfig, error) {
	vctx := &template.VariableContext{EnvVars: env, EventVars: event}
	eng := template.NewEngineWithDefaults(vctx)

	wire, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal node config: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(wire, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal node config: %w", err)
	}

	resolved, err := eng.Resolve(generic)
	if err != nil {
		return nil, err
	}

	resolvedWire, err := json.Marshal(resolved)
	if err != nil {
		return nil, fmt.Errorf("marshal resolved node config: %w", err)
	}
	var out models.NodeConfig
	if err := json.Unmarshal(resolvedWire, &out); err != nil {
		return nil, fmt.Errorf("unmarshal resolved node config: %w", err)
	}
	return &out, nil
}

func retryConfigFor(cfg *models.NodeConfig) *models.RetryConfig {
	switch cfg.Kind {
	case models.NodeKindHttpRequest:
		return cfg.HttpRequest.RetryConfig
	case models.NodeKindEmail:
		return cfg.Email.RetryConfig
	case models.NodeKindAnthropic:
		return cfg.Anthropic.RetryConfig
	case models.NodeKindOpenObserve:
		return cfg.OpenObserve.RetryConfig
	}
	return nil
}

func failureActionFor(cfg *models.NodeConfig) models.FailureAction {
	var action string
	switch cfg.Kind {
	case models.NodeKindEmail:
		action = cfg.Email.FailureAction
	case models.NodeKindOpenObserve:
		action = cfg.OpenObserve.FailureAction
	}
	if action == "" {
		return models.FailureActionStop
	}
	return models.FailureAction(action)
}
