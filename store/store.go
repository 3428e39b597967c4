// Package store is the single source of truth for Enrollment state:
// the Scheduler's claim step and the Step Executor's commit step both
// go through it, so the optimistic-concurrency guard on
// Enrollment.Version lives in exactly one place. Mutations follow
// utils/campaign_sender.go's Model().Update() pattern combined with
// the RowsAffected == 0 lost-update check lead_controller.go uses
// after its own conditional updates, applied here to the version
// column to detect a lost race.
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/executor"
	"github.com/outreachhq/sequencer/models"
)

// ErrNotFound wraps gorm.ErrRecordNotFound so callers never need to
// import gorm directly.
var ErrNotFound = gorm.ErrRecordNotFound

// Store is the State Store: every enrollment mutation the Scheduler or
// Step Executor makes passes through one of these methods so the
// version guard and the log-entry write stay transactional together.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ClaimDue selects up to limit enrollments that are pending and due,
// and atomically marks each in_flight via a conditional
// update-with-version guard so two scheduler workers racing the same
// row never both win; a failed guard makes the worker abandon that
// claim rather than retry it. Enrollments are returned ordered by
// due_at then id for a stable same-due-at tie-break.
func (s *Store) ClaimDue(now time.Time, limit int) ([]models.Enrollment, error) {
	var candidates []models.Enrollment
	err := s.db.
		Where("status = ? AND due_at <= ?", models.EnrollmentPending, now).
		Order("due_at ASC, id ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("claim due: select candidates: %w", err)
	}

	var claimed []models.Enrollment
	for _, c := range candidates {
		result := s.db.Model(&models.Enrollment{}).
			Where("id = ? AND version = ?", c.ID, c.Version).
			Updates(map[string]interface{}{
				"status":  models.EnrollmentInFlight,
				"version": c.Version + 1,
			})
		if result.Error != nil {
			return nil, fmt.Errorf("claim due: claim enrollment %d: %w", c.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			// Another worker claimed or advanced this row first; move on.
			continue
		}
		c.Status = models.EnrollmentInFlight
		c.Version++
		claimed = append(claimed, c)
	}
	return claimed, nil
}

// LoadForExecution fetches the sequence, recipient, and sender an
// enrollment needs for one Step Executor call.
func (s *Store) LoadForExecution(enrollmentID uint) (enrollment models.Enrollment, sequence models.Sequence, recipient models.Recipient, sender models.Sender, err error) {
	if err = s.db.First(&enrollment, enrollmentID).Error; err != nil {
		return
	}
	if err = s.db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_index ASC")
	}).First(&sequence, enrollment.SequenceID).Error; err != nil {
		return
	}
	if err = s.db.First(&recipient, enrollment.RecipientID).Error; err != nil {
		return
	}
	err = s.db.Where("from_email = ?", sequence.SenderEmail).First(&sender).Error
	return
}

// Commit persists one Step Executor Outcome and its log entry (when
// present) in a single transaction. The version guard fires again
// here: Commit refuses to apply an Outcome computed
// against a version that has since moved, returning ConcurrencyConflict
// so the caller abandons the claim rather than clobbering a newer
// write.
func (s *Store) Commit(enrollmentID uint, claimedVersion int, outcome executor.Outcome) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Enrollment{}).
			Where("id = ? AND version = ?", enrollmentID, claimedVersion).
			Updates(map[string]interface{}{
				"status":     outcome.Status,
				"step_index": outcome.StepIndex,
				"due_at":     outcome.DueAt,
				"attempts":   outcome.Attempts,
				"last_error": outcome.LastError,
				"version":    claimedVersion + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("commit outcome: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return &executor.ConcurrencyConflict{EnrollmentID: enrollmentID}
		}
		if outcome.LogEntry != nil {
			outcome.LogEntry.EnrollmentID = enrollmentID
			if err := tx.Create(outcome.LogEntry).Error; err != nil {
				return fmt.Errorf("commit outcome: write log entry: %w", err)
			}
		}
		return nil
	})
}

// Release reverts an in_flight enrollment back to pending without
// touching attempts or due_at, used when the Scheduler abandons a
// claimed row before handing it to the Step Executor (e.g. during
// shutdown drain).
func (s *Store) Release(enrollmentID uint, claimedVersion int) error {
	result := s.db.Model(&models.Enrollment{}).
		Where("id = ? AND version = ?", enrollmentID, claimedVersion).
		Updates(map[string]interface{}{
			"status":  models.EnrollmentPending,
			"version": claimedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("release: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &executor.ConcurrencyConflict{EnrollmentID: enrollmentID}
	}
	return nil
}

// RecoverStale reverts in_flight rows older than staleThreshold back
// to pending with attempts incremented, reclaiming rows a crashed
// scheduler left stranded.
func (s *Store) RecoverStale(now time.Time, staleThreshold time.Duration) (int64, error) {
	cutoff := now.Add(-staleThreshold)
	result := s.db.Model(&models.Enrollment{}).
		Where("status = ? AND updated_at < ?", models.EnrollmentInFlight, cutoff).
		Updates(map[string]interface{}{
			"status":   models.EnrollmentPending,
			"attempts": gorm.Expr("attempts + 1"),
			"version":  gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// CreateEnrollment inserts a new Enrollment at step 0, due immediately,
// for the Control API's POST /sequences/{id}/enrollments.
func (s *Store) CreateEnrollment(sequenceID, recipientID uint) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		SequenceID:  sequenceID,
		RecipientID: recipientID,
		StepIndex:   0,
		Status:      models.EnrollmentPending,
		DueAt:       time.Now(),
	}
	if err := s.db.Create(enrollment).Error; err != nil {
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	return enrollment, nil
}

// SequenceStatus aggregates one sequence's enrollments by status for
// GET /sequences/{id}/status.
type SequenceStatus struct {
	SequenceID uint           `json:"sequence_id"`
	Counts     map[string]int `json:"counts"`
	Total      int            `json:"total"`
}

func (s *Store) SequenceStatus(sequenceID uint) (SequenceStatus, error) {
	var rows []struct {
		Status models.EnrollmentStatus
		Count  int
	}
	if err := s.db.Model(&models.Enrollment{}).
		Select("status, count(*) as count").
		Where("sequence_id = ?", sequenceID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return SequenceStatus{}, fmt.Errorf("sequence status: %w", err)
	}

	out := SequenceStatus{SequenceID: sequenceID, Counts: make(map[string]int)}
	for _, r := range rows {
		out.Counts[string(r.Status)] = r.Count
		out.Total += r.Count
	}
	return out, nil
}

// HasInFlight reports whether any enrollment on sequenceID is
// currently in_flight, the guard PUT /sequences/{id} uses to forbid
// replacing a sequence's steps mid-send.
func (s *Store) HasInFlight(sequenceID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Enrollment{}).
		Where("sequence_id = ? AND status = ?", sequenceID, models.EnrollmentInFlight).
		Count(&count).Error
	return count > 0, err
}

// SetSenderHold sets or clears a sender's on_hold flag and reason, the
// backing call for POST/DELETE /senders/by-email/{email}/hold.
func (s *Store) SetSenderHold(senderEmail string, hold bool, reason string) error {
	updates := map[string]interface{}{"on_hold": hold}
	if hold {
		updates["on_hold_reason"] = reason
	} else {
		updates["on_hold_reason"] = ""
	}
	result := s.db.Model(&models.Sender{}).Where("from_email = ?", senderEmail).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("set sender hold: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("set sender hold: %w", ErrNotFound)
	}
	return nil
}

// SenderByEmail is a small convenience used by controllers and the
// Rate Governor's status endpoint alike.
func (s *Store) SenderByEmail(email string) (*models.Sender, error) {
	var sender models.Sender
	err := s.db.Where("from_email = ?", email).First(&sender).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &sender, err
}
