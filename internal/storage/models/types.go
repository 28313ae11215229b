// Package models holds the Bun-ORM row shapes for the persistent store,
// kept separate from pkg/models (the public domain types) so a schema change
// here never breaks the public contract.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/openobserve/swisspipe/pkg/models"
)

// JSONBMap is a Bun column type backing Postgres jsonb columns.
type JSONBMap map[string]interface{}

// Value implements driver.Valuer.
func (j JSONBMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (j *JSONBMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONBMap)
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return errors.New("JSONBMap.Scan: unsupported source type")
		}
	}
	if len(b) == 0 {
		*j = make(JSONBMap)
		return nil
	}
	return json.Unmarshal(b, j)
}

// WorkflowSnapshot is a Bun column type holding a full Workflow (nodes,
// edges, node configs) as a single jsonb blob — one row per version, content
// addressed by (workflow_id, version_number) per spec §4.3's cache key.
type WorkflowSnapshot models.Workflow

// Value implements driver.Valuer.
func (s WorkflowSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(models.Workflow(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *WorkflowSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("WorkflowSnapshot.Scan: unsupported source type")
		}
	}
	var wf models.Workflow
	if err := json.Unmarshal(b, &wf); err != nil {
		return err
	}
	*s = WorkflowSnapshot(wf)
	return nil
}
