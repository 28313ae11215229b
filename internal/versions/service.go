// Package versions is the version service (component I) described in spec
// §4.9: every workflow save is an immutable commit, never an in-place
// update. Grounded on the teacher's general "insert row, unique
// constraint, retry on conflict" pattern used across its repositories.
package versions

import (
	"context"
	"errors"

	"github.com/openobserve/swisspipe/pkg/models"
)

// Store is the subset of internal/storage.VersionRepository the service
// needs.
type Store interface {
	Create(ctx context.Context, v *models.WorkflowVersion) error
	Get(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error)
	GetLatest(ctx context.Context, workflowID string) (*models.WorkflowVersion, error)
	List(ctx context.Context, workflowID string) ([]*models.WorkflowVersion, error)
}

// Invalidator drops a workflow's cached "current version" pointer whenever
// a new commit lands. Implemented by *internal/cache.WorkflowCache.
type Invalidator interface {
	Invalidate(workflowID string)
}

// Service wraps Store with the validation and conflict-retry behavior of
// spec §4.9.
type Service struct {
	store Store
	cache Invalidator
}

// NewService builds a Service.
func NewService(store Store, cache Invalidator) *Service {
	return &Service{store: store, cache: cache}
}

// maxConflictRetries bounds the unique-constraint retry loop: a single
// retry recomputes max(version_number)+1 against the post-race state,
// which is enough to win against one concurrent committer; a second
// collision points at sustained contention the caller should surface
// instead of silently looping forever.
const maxConflictRetries = 1

// Save commits a new version of workflowID, auto-assigning the next
// version_number. Every workflow's first save becomes version 1.
func (s *Service) Save(ctx context.Context, workflowID string, snapshot *models.Workflow, commitMessage, description, author string) (*models.WorkflowVersion, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}

	v := &models.WorkflowVersion{
		WorkflowID:    workflowID,
		Snapshot:      snapshot,
		CommitMessage: commitMessage,
		Description:   description,
		Author:        author,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		err = s.store.Create(ctx, v)
		if err == nil {
			s.cache.Invalidate(workflowID)
			return v, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, err
}

// Get returns the full snapshot of a specific version.
func (s *Service) Get(ctx context.Context, workflowID string, versionNumber int) (*models.WorkflowVersion, error) {
	return s.store.Get(ctx, workflowID, versionNumber)
}

// Latest returns the full snapshot of the most recently committed version.
func (s *Service) Latest(ctx context.Context, workflowID string) (*models.WorkflowVersion, error) {
	return s.store.GetLatest(ctx, workflowID)
}

// VersionMetadata is a commit's history-list entry, deliberately excluding
// the snapshot itself — spec §4.9's "list() returns metadata only".
type VersionMetadata struct {
	VersionNumber int
	CommitMessage string
	Description   string
	Author        string
	CreatedAt     string
}

// List returns every commit's metadata, newest first, never the snapshot
// JSON — listing history shouldn't require shipping every historical
// workflow definition over the wire.
func (s *Service) List(ctx context.Context, workflowID string) ([]VersionMetadata, error) {
	versions, err := s.store.List(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	out := make([]VersionMetadata, len(versions))
	for i, v := range versions {
		out[i] = VersionMetadata{
			VersionNumber: v.VersionNumber,
			CommitMessage: v.CommitMessage,
			Description:   v.Description,
			Author:        v.Author,
			CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return out, nil
}
