package schedulers

import (
	"context"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// HILScheduler handles HumanInLoop suspensions two ways: an external
// decision callback (Resolve) injects the resume job directly and
// immediately, while a timeout heap — identical mechanics to
// DelayScheduler — fires the configured TimeoutAction if nobody responds
// in time. Grounded on
// internal/application/trigger/webhook_registry.go's external-callback
// registration idiom: a caller outside this package drives Resolve the
// same way a webhook handler drives a registered callback.
type HILScheduler struct {
	timeouts *DelayScheduler
	queue    Enqueuer
}

// NewHILScheduler builds a HILScheduler that enqueues through queue.
func NewHILScheduler(queue Enqueuer) *HILScheduler {
	return &HILScheduler{timeouts: NewDelayScheduler(queue), queue: queue}
}

// ScheduleResume implements internal/engine.Scheduler for the Hil reason:
// it only arms the timeout, since the "happy path" resumption comes
// through Resolve instead.
func (s *HILScheduler) ScheduleResume(executionID string, reason models.SuspendReason, fireAt int64, token models.ResumeToken) error {
	s.timeouts.Add(executionID, fireAt, token)
	return nil
}

// Run drives the timeout heap. Context cancellation stops it.
func (s *HILScheduler) Run(ctx context.Context) {
	s.timeouts.Run(ctx)
}

// Resolve is the external decision callback: a human's approve/deny
// response re-enqueues the suspended execution immediately, carrying the
// decision in the resume payload. The stale timeout entry, if any, is left
// in the heap — fireDue will still pop it later and re-enqueue a second
// job for an execution that has already resumed past that node, which the
// engine's step-level idempotency (re-attempt the same node is a no-op
// once it's already terminal) absorbs harmlessly.
func (s *HILScheduler) Resolve(executionID, nodeID string, decision map[string]any) error {
	return s.queue.Enqueue(models.Job{
		ExecutionID: executionID,
		ResumeToken: models.AtNodeToken(nodeID, decision),
		EnqueuedAt:  time.Now().UTC(),
		Attempt:     1,
	})
}
