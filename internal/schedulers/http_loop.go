package schedulers

import (
	"sync"
	"time"

	"github.com/openobserve/swisspipe/pkg/models"
)

// LoopState is an HTTP-loop's run state.
type LoopState string

const (
	LoopStateRunning LoopState = "running"
	LoopStatePaused  LoopState = "paused"
	LoopStateStopped LoopState = "stopped"
)

type loopEntry struct {
	state      LoopState
	iteration  int
	maxIters   int
	intervalMs int
}

// HTTPLoopScheduler re-enqueues an HttpRequest node's own execution at a
// fixed interval until MaxIterations is reached or the loop is stopped,
// grounded on pkg/engine/dag_executor.go's processLoopEdges re-entry
// mechanics (repurposed per spec §9 Open Question 5: reuses the current
// execution rather than in-DAG edge looping).
type HTTPLoopScheduler struct {
	queue Enqueuer

	mu      sync.Mutex
	loops   map[string]*loopEntry // keyed by execution_id + ":" + node_id
	timers  map[string]*time.Timer
}

// NewHTTPLoopScheduler builds an HTTPLoopScheduler that enqueues through queue.
func NewHTTPLoopScheduler(queue Enqueuer) *HTTPLoopScheduler {
	return &HTTPLoopScheduler{
		queue:  queue,
		loops:  make(map[string]*loopEntry),
		timers: make(map[string]*time.Timer),
	}
}

func loopKey(executionID, nodeID string) string { return executionID + ":" + nodeID }

// Start begins a loop for (executionID, nodeID): after intervalMs, if the
// loop is still Running and under maxIterations, it re-enqueues an AtNode
// job for the same node with payload, then schedules its own next tick.
func (s *HTTPLoopScheduler) Start(executionID, nodeID string, maxIterations, intervalMs int, payload map[string]any) {
	key := loopKey(executionID, nodeID)
	entry := &loopEntry{state: LoopStateRunning, maxIters: maxIterations, intervalMs: intervalMs}

	s.mu.Lock()
	s.loops[key] = entry
	s.mu.Unlock()

	s.scheduleTick(executionID, nodeID, payload)
}

func (s *HTTPLoopScheduler) scheduleTick(executionID, nodeID string, payload map[string]any) {
	key := loopKey(executionID, nodeID)
	interval := s.intervalFor(key)

	timer := time.AfterFunc(interval, func() {
		s.tick(executionID, nodeID, payload)
	})

	s.mu.Lock()
	s.timers[key] = timer
	s.mu.Unlock()
}

func (s *HTTPLoopScheduler) intervalFor(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.loops[key]
	if !ok {
		return 0
	}
	return time.Duration(entry.intervalMs) * time.Millisecond
}

func (s *HTTPLoopScheduler) tick(executionID, nodeID string, payload map[string]any) {
	key := loopKey(executionID, nodeID)

	s.mu.Lock()
	entry, ok := s.loops[key]
	if !ok || entry.state != LoopStateRunning {
		s.mu.Unlock()
		return
	}
	entry.iteration++
	exhausted := entry.maxIters > 0 && entry.iteration >= entry.maxIters
	if exhausted {
		entry.state = LoopStateStopped
		delete(s.loops, key)
		delete(s.timers, key)
	}
	s.mu.Unlock()

	_ = s.queue.Enqueue(models.Job{
		ExecutionID: executionID,
		ResumeToken: models.AtNodeToken(nodeID, payload),
		EnqueuedAt:  time.Now().UTC(),
		Attempt:     1,
	})

	if !exhausted {
		s.scheduleTick(executionID, nodeID, payload)
	}
}

// Pause suspends re-enqueuing without losing iteration count.
func (s *HTTPLoopScheduler) Pause(executionID, nodeID string) {
	s.setState(executionID, nodeID, LoopStatePaused)
}

// Resume reactivates a paused loop.
func (s *HTTPLoopScheduler) Resume(executionID, nodeID string, payload map[string]any) {
	key := loopKey(executionID, nodeID)
	s.mu.Lock()
	entry, ok := s.loops[key]
	if ok {
		entry.state = LoopStateRunning
	}
	s.mu.Unlock()
	if ok {
		s.scheduleTick(executionID, nodeID, payload)
	}
}

// Stop ends a loop permanently.
func (s *HTTPLoopScheduler) Stop(executionID, nodeID string) {
	key := loopKey(executionID, nodeID)
	s.mu.Lock()
	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}
	delete(s.loops, key)
	delete(s.timers, key)
	s.mu.Unlock()
}

func (s *HTTPLoopScheduler) setState(executionID, nodeID string, state LoopState) {
	key := loopKey(executionID, nodeID)
	s.mu.Lock()
	if entry, ok := s.loops[key]; ok {
		entry.state = state
	}
	s.mu.Unlock()
}
