package schedulers

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// DelayScheduler wakes a suspended Delay node back up once its fire_at has
// passed, re-enqueuing the same resume token so the engine resumes exactly
// where it left off.
type DelayScheduler struct {
	queue   Enqueuer
	mu      sync.Mutex
	items   fireHeap
	wake    chan struct{}
	nowFunc func() time.Time
}

// NewDelayScheduler builds a DelayScheduler that enqueues through queue.
func NewDelayScheduler(queue Enqueuer) *DelayScheduler {
	return &DelayScheduler{
		queue:   queue,
		items:   fireHeap{},
		wake:    make(chan struct{}, 1),
		nowFunc: time.Now,
	}
}

// ScheduleResume implements internal/engine.Scheduler for the Delay reason;
// HIL suspensions are routed to HILScheduler instead by the caller.
func (s *DelayScheduler) ScheduleResume(executionID string, reason models.SuspendReason, fireAt int64, token models.ResumeToken) error {
	s.Add(executionID, fireAt, token)
	return nil
}

// Add schedules a wake-up; ScheduleResume is its caller. The heap is held
// in memory only: nothing rebuilds it from waiting executions at startup.
func (s *DelayScheduler) Add(executionID string, fireAt int64, token models.ResumeToken) {
	s.mu.Lock()
	heap.Push(&s.items, &fireItem{fireAt: fireAt, executionID: executionID, token: token})
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run drains the heap, sleeping until the next fire_at (or until Add wakes
// it early because a sooner item was just inserted), until ctx is done.
func (s *DelayScheduler) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		delay := s.nextDelay()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(delay)

		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			continue
		case <-timer.C:
			s.fireDue()
		}
	}
}

func (s *DelayScheduler) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return time.Hour
	}
	d := time.Duration(s.items[0].fireAt-s.nowFunc().UnixMilli()) * time.Millisecond
	if d < 0 {
		return 0
	}
	return d
}

func (s *DelayScheduler) fireDue() {
	now := s.nowFunc().UnixMilli()
	var due []*fireItem

	s.mu.Lock()
	for len(s.items) > 0 && s.items[0].fireAt <= now {
		due = append(due, heap.Pop(&s.items).(*fireItem))
	}
	s.mu.Unlock()

	for _, item := range due {
		_ = s.queue.Enqueue(models.Job{
			ExecutionID: item.executionID,
			ResumeToken: item.token,
			EnqueuedAt:  time.Now().UTC(),
			Attempt:     1,
		})
	}
}
