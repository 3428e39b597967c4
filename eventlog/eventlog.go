// Package eventlog wraps the append-only LogEntry table for webhook
// ingress: AppendWebhookEvent keeps the dedup rule on (provider,
// provider_event_id) in one place, following the same
// unique-index-per-event pattern EmailTracking uses to keep one row
// per message event. Step-attempt, test-send and reply rows are
// written directly by store.Commit, the render controller and the
// reply watcher, not through this package.
package eventlog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
)

// ErrDuplicateEvent is returned by AppendWebhookEvent when a webhook event with
// the same (provider, provider_event_id) pair was already recorded.
// Callers treat this as a silent discard, not a failure.
var ErrDuplicateEvent = errors.New("eventlog: duplicate provider event")

type Log struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Log {
	return &Log{db: db}
}

// Append writes one log entry. Entries are never updated after
// creation; corrections are new rows, per the Event Log's append-only
// contract.
func (l *Log) Append(entry *models.LogEntry) error {
	if err := l.db.Create(entry).Error; err != nil {
		return fmt.Errorf("append log entry: %w", err)
	}
	return nil
}

// AppendWebhookEvent records an inbound provider callback, deduping on
// (provider, provider_event_id). A duplicate is accepted and silently
// discarded (ErrDuplicateEvent), never surfaced as a processing error.
func (l *Log) AppendWebhookEvent(entry *models.LogEntry) error {
	if entry.Provider == "" || entry.ProviderEventID == "" {
		return fmt.Errorf("append webhook event: provider and provider_event_id are required")
	}

	var existing models.LogEntry
	err := l.db.Where("provider = ? AND provider_event_id = ?", entry.Provider, entry.ProviderEventID).
		First(&existing).Error
	if err == nil {
		return ErrDuplicateEvent
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("append webhook event: check dedup: %w", err)
	}

	return l.Append(entry)
}

// ForEnrollment returns every log entry tied to one enrollment, oldest
// first.
func (l *Log) ForEnrollment(enrollmentID uint) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := l.db.Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("load log entries: %w", err)
	}
	return entries, nil
}

// ByExternalRef finds the send-attempt log entry a webhook callback
// refers back to, linking the asynchronous outcome to the original
// dispatch by external_ref.
func (l *Log) ByExternalRef(externalRef string) (*models.LogEntry, error) {
	var entry models.LogEntry
	err := l.db.Where("external_ref = ? AND kind = ?", externalRef, "send_attempt").
		Order("created_at DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find log entry by external ref: %w", err)
	}
	return &entry, nil
}
