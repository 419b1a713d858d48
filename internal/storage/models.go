// Package storage provides database models and repositories for the
// optional specline result store.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the lifecycle of a populate run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the populate pipeline over a feed.
type Run struct {
	ID               uuid.UUID
	InputPath        string
	Status           RunStatus
	Total            int
	AlreadyPopulated int
	NewlyPopulated   int
	Skipped          int
	SpecsExtracted   int
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// SpecListRecord is one persisted spec list: either a product-level list
// (VariantKey nil) or a variant-level list.
type SpecListRecord struct {
	ID         uuid.UUID
	RunID      uuid.UUID
	Handle     string
	VariantKey *string
	Specs      []string // stored as a JSON array of strings
	Skipped    bool
	CreatedAt  time.Time
}

// RecordID creates a deterministic ID for a spec list record, so re-runs
// over the same feed produce stable identifiers.
func RecordID(runID uuid.UUID, handle string, variantKey *string) uuid.UUID {
	data := runID.String() + ":" + handle
	if variantKey != nil {
		data += ":" + *variantKey
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(data))
}
