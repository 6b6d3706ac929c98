package sync

import (
	"fmt"
	"strings"
)

// Failure is one destination entity that could not be created or resolved.
type Failure struct {
	EntityType string
	Key        string
	Reason     string
}

// Report accumulates per-entity failures across the upsert steps. Entities
// that depend on a failed one are skipped and recorded here instead of being
// created with missing ids.
type Report struct {
	Failures []Failure
}

func (r *Report) Add(entityType, key string, err error) {
	r.Failures = append(r.Failures, Failure{
		EntityType: entityType,
		Key:        key,
		Reason:     err.Error(),
	})
}

func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Err summarizes the report as a single error, or nil for a clean run.
func (r *Report) Err() error {
	if !r.Failed() {
		return nil
	}
	keys := make([]string, 0, len(r.Failures))
	for _, failure := range r.Failures {
		keys = append(keys, fmt.Sprintf("%s %q", failure.EntityType, failure.Key))
	}
	return fmt.Errorf("sync: %d entities failed: %s", len(r.Failures), strings.Join(keys, ", "))
}
