package schedulers

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CronAdmitter fires one ingestion event per tick. Implemented directly by
// *internal/ingestion.Ingestion's AdmitScheduled, which, unlike
// Ingestion.Trigger, takes no HTTP method/headers/body.
type CronAdmitter interface {
	AdmitScheduled(ctx context.Context, workflowID string) error
}

// CronScheduler drives Trigger nodes' optional cron_schedule field,
// grounded on internal/application/trigger/cron_scheduler.go's
// second-precision UTC cron.Cron plus an entries map for dynamic
// add/remove. Unlike the teacher's version, a workflow's schedule lives on
// its Trigger node config — cmd/server's registerCronSchedules re-derives
// it at startup from each workflow's current version rather than a
// separate trigger table.
type CronScheduler struct {
	admitter CronAdmitter
	cron     *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID // workflowID -> entryID
}

// NewCronScheduler builds a CronScheduler with second precision in UTC,
// matching the teacher's cron.WithSeconds/cron.WithLocation(time.UTC).
func NewCronScheduler(admitter CronAdmitter) *CronScheduler {
	return &CronScheduler{
		admitter: admitter,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		entries:  make(map[string]cron.EntryID),
	}
}

// Schedule registers or replaces workflowID's cron entry. An empty
// expression removes any existing entry (the Trigger node's cron_schedule
// was cleared).
func (s *CronScheduler) Schedule(workflowID, expression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[workflowID]; ok {
		s.cron.Remove(id)
		delete(s.entries, workflowID)
	}
	if expression == "" {
		return nil
	}

	id, err := s.cron.AddFunc(expression, func() {
		_ = s.admitter.AdmitScheduled(context.Background(), workflowID)
	})
	if err != nil {
		return err
	}
	s.entries[workflowID] = id
	return nil
}

// Start begins firing scheduled ticks.
func (s *CronScheduler) Start() { s.cron.Start() }

// Stop halts the cron scheduler, waiting for any in-flight tick to finish.
func (s *CronScheduler) Stop() { <-s.cron.Stop().Done() }
