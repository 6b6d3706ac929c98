package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SyncPhase string

const (
	PhaseExtract SyncPhase = "extract"
	PhaseInsert  SyncPhase = "insert"
	PhaseFull    SyncPhase = "full"
)

type SyncStatus string

const (
	StatusRunning   SyncStatus = "RUNNING"
	StatusCompleted SyncStatus = "COMPLETED"
	StatusPartial   SyncStatus = "PARTIAL"
	StatusFailed    SyncStatus = "FAILED"
)

// SyncRun is the persisted report of one pipeline invocation.
type SyncRun struct {
	ID          string        `json:"id" gorm:"type:uuid;primary_key"`
	Phase       SyncPhase     `json:"phase" gorm:"not null"`
	Status      SyncStatus    `json:"status" gorm:"default:RUNNING"`
	ItemCount   int           `json:"item_count"`
	RecordCount int           `json:"record_count"`
	Error       *string       `json:"error"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at"`
	Failures    []SyncFailure `json:"failures" gorm:"foreignKey:RunID"`
}

// SyncFailure is one entity the upsert phase could not create or resolve.
type SyncFailure struct {
	ID         string    `json:"id" gorm:"type:uuid;primary_key"`
	RunID      string    `json:"run_id" gorm:"type:uuid;index;not null"`
	EntityType string    `json:"entity_type" gorm:"not null"`
	Key        string    `json:"key" gorm:"not null"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (f *SyncFailure) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
