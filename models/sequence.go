package models

import "gorm.io/gorm"

// StepKind enumerates the five step variants a Sequence can be built
// from. Exactly one of the kind-specific fields on SequenceStep is
// populated for a given kind.
type StepKind string

const (
	StepEmail          StepKind = "email"
	StepWait           StepKind = "wait"
	StepCall           StepKind = "call"
	StepNetworkConnect StepKind = "network_connect"
	StepNetworkMessage StepKind = "network_message"
)

// PersonalizationMode selects how the Personalizer derives variables
// for an email step.
type PersonalizationMode string

const (
	ModeSignalBased       PersonalizationMode = "signal_based"
	ModeFullyPersonalized PersonalizationMode = "fully_personalized"
	ModeOpenerOnly        PersonalizationMode = "opener_only"
)

// Sequence is a named plan attached to a campaign, owned by one sender.
// Operators may append steps at the tail at any time; replacing the
// whole step list is forbidden while any enrollment on the sequence is
// in_flight (enforced by the store, not here).
type Sequence struct {
	gorm.Model
	CampaignID  string `gorm:"not null;index" json:"campaign_id"`
	Name        string `gorm:"not null" json:"name"`
	SenderEmail string `gorm:"not null;index" json:"sender_email"`

	Steps []SequenceStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// SequenceStep is one dense, 0-based position in a Sequence. Only the
// fields relevant to Kind are meaningful; the rest are zero-valued.
type SequenceStep struct {
	gorm.Model
	SequenceID uint     `gorm:"not null;index:idx_seq_step,unique,priority:1" json:"sequence_id"`
	StepIndex  int      `gorm:"not null;index:idx_seq_step,unique,priority:2" json:"step_index"`
	Kind       StepKind `gorm:"not null" json:"kind"`

	// Pre-step pause, valid for all non-wait kinds. StepWait uses
	// DelayDays as its own duration instead.
	DelayDays int `gorm:"default:0" json:"delay_days"`

	// email
	TemplateKey         string              `json:"template_key,omitempty"`
	InlineSubject       string              `gorm:"type:text" json:"inline_subject,omitempty"`
	InlineBody          string              `gorm:"type:text" json:"inline_body,omitempty"`
	PersonalizationMode PersonalizationMode `gorm:"default:''" json:"personalization_mode,omitempty"`

	// call
	Script string `gorm:"type:text" json:"script,omitempty"`

	// network_connect / network_message
	Message string `gorm:"type:text" json:"message,omitempty"`
}

// Template holds reusable subject/body pairs referenced by TemplateKey.
// Inline steps skip this table entirely.
type Template struct {
	gorm.Model
	Key     string `gorm:"not null;uniqueIndex" json:"key"`
	Subject string `gorm:"type:text" json:"subject"`
	Body    string `gorm:"type:text" json:"body"`
}
