// Package schedulers implements the three background timing components of
// spec §4.8 — Delay, HumanInLoop timeout, and HTTP-loop re-entry. The Delay
// and HIL-timeout schedulers each run a goroutine driving a container/heap
// priority queue of (fire_at, execution_id, resume_token); the HTTP-loop
// scheduler arms one time.Timer per loop instead. Grounded on
// internal/application/trigger/cron_scheduler.go's background-goroutine
// shape; robfig/cron/v3 itself is kept for the Trigger node's optional
// recurring schedule (cron.go), not for these one-shot heaps.
package schedulers

import (
	"container/heap"

	"github.com/openobserve/swisspipe/pkg/models"
)

// fireItem is one scheduled wake-up.
type fireItem struct {
	fireAt      int64 // unix millis
	executionID string
	token       models.ResumeToken
	index       int
}

// fireHeap is a min-heap by fireAt implementing container/heap.Interface.
type fireHeap []*fireItem

func (h fireHeap) Len() int            { return len(h) }
func (h fireHeap) Less(i, j int) bool  { return h[i].fireAt < h[j].fireAt }
func (h fireHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *fireHeap) Push(x any) {
	item := x.(*fireItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *fireHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// Enqueuer re-submits a Job to the worker pool. Implemented by
// *internal/jobs.Pool.
type Enqueuer interface {
	Enqueue(job models.Job) error
}

var _ = heap.Interface(&fireHeap{})
