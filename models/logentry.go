package models

import "gorm.io/gorm"

// LogEntry is an append-only record of one step attempt or inbound
// webhook event. Nothing updates a LogEntry after creation; corrections
// are new rows. ProviderEventID together with Provider gives webhook
// ingress its dedup key, the same role the unique `message_id` index
// plays on EmailTracking.
type LogEntry struct {
	gorm.Model
	EnrollmentID uint   `gorm:"not null;index" json:"enrollment_id"`
	StepIndex    int    `json:"step_index"`
	Kind         string `gorm:"not null" json:"kind"` // send_attempt, webhook_event, test_send, reply_detected

	Outcome string `gorm:"not null" json:"outcome"` // sent, transient_failure, permanent_failure, rate_denied, ...

	Provider        string `gorm:"index:idx_provider_event,unique,priority:1,where:provider_event_id <> ''" json:"provider,omitempty"`
	ProviderEventID string `gorm:"index:idx_provider_event,unique,priority:2" json:"provider_event_id,omitempty"`
	ExternalRef     string `json:"external_ref,omitempty"` // call_id, message_id, connection request id

	// Detail carries outcome-specific data (SMTP code, call duration,
	// transcript reference, recording reference) as free-form JSON so
	// the table shape never needs to change per channel.
	Detail map[string]string `gorm:"serializer:json" json:"detail,omitempty"`
}
