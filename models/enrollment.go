package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus is one of the states in an Enrollment's lifecycle.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentInFlight  EnrollmentStatus = "in_flight"
	EnrollmentWaiting   EnrollmentStatus = "waiting"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentPaused    EnrollmentStatus = "paused"
	EnrollmentFailed    EnrollmentStatus = "failed"
)

// Enrollment binds one Recipient to one Sequence at a given step index.
// Version is the optimistic-concurrency guard the Scheduler's claim
// step uses: a claim is a conditional UPDATE on (id, version) that also
// bumps version, so two scheduler workers racing on the same row never
// both win.
type Enrollment struct {
	gorm.Model
	SequenceID  uint             `gorm:"not null;index" json:"sequence_id"`
	RecipientID uint             `gorm:"not null;index" json:"recipient_id"`
	StepIndex   int              `gorm:"not null" json:"step_index"`
	Status      EnrollmentStatus `gorm:"not null;default:'pending';index" json:"status"`
	DueAt       time.Time        `gorm:"not null;index" json:"due_at"`
	Attempts    int              `gorm:"default:0" json:"attempts"`
	Version     int              `gorm:"not null;default:0" json:"version"`

	LastError string `json:"last_error,omitempty"`

	Recipient Recipient `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Sequence  Sequence  `gorm:"foreignKey:SequenceID" json:"sequence,omitempty"`
}
