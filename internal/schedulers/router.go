package schedulers

import "github.com/openobserve/swisspipe/pkg/models"

// Router implements internal/engine.Scheduler by dispatching a suspension
// to the Delay or HIL scheduler by its SuspendReason. The HTTP-loop
// scheduler isn't reachable through this router, and nothing in the engine
// or the HttpRequest handler starts a loop: HttpRequestConfig.LoopConfig is
// not read.
type Router struct {
	Delay *DelayScheduler
	HIL   *HILScheduler
}

// ScheduleResume implements internal/engine.Scheduler.
func (r *Router) ScheduleResume(executionID string, reason models.SuspendReason, fireAt int64, token models.ResumeToken) error {
	switch reason {
	case models.SuspendReasonHil:
		return r.HIL.ScheduleResume(executionID, reason, fireAt, token)
	default:
		return r.Delay.ScheduleResume(executionID, reason, fireAt, token)
	}
}
