package models

import (
	"time"

	"gorm.io/gorm"
)

// RampProfile names one of the Rate Governor's built-in warmup curves.
// The curves themselves are code-defined lookup tables in package
// ratelimit, not stored rows — only the chosen profile lives here.
type RampProfile string

const (
	RampConservative RampProfile = "conservative"
	RampModerate     RampProfile = "moderate"
	RampAggressive   RampProfile = "aggressive"
)

// AllDays is the SendWindowDays bitmask for a sender with no
// days-of-week restriction.
const AllDays = 1<<0 | 1<<1 | 1<<2 | 1<<3 | 1<<4 | 1<<5 | 1<<6

// Weekdays packs a set of time.Weekday values into a SendWindowDays
// bitmask, e.g. Weekdays(time.Monday, time.Tuesday, ..., time.Friday)
// for a Mon-Fri window.
func Weekdays(days ...time.Weekday) int {
	mask := 0
	for _, d := range days {
		mask |= 1 << uint(d)
	}
	return mask
}

// Sender is one outbound identity: its transport credentials, its
// warmup/ramp state, its send window, and its on-hold flag. The Rate
// Governor and Channel Adapters are the only components that mutate
// the usage counters below; everything else treats a Sender as config.
type Sender struct {
	gorm.Model
	FromEmail string `gorm:"not null;uniqueIndex" json:"from_email"`
	FromName  string `gorm:"not null" json:"from_name"`

	ProviderType string `gorm:"not null" json:"provider_type"` // smtp, gmail, outlook, yahoo

	// ========= SMTP Configuration =========
	SMTPHost     string `gorm:"not null" json:"smtp_host"`
	SMTPPort     int    `gorm:"not null" json:"smtp_port"`
	SMTPUsername string `gorm:"not null" json:"smtp_username"`
	SMTPPassword string `gorm:"not null" json:"-"` // AES-CFB encrypted at rest
	Encryption   string `gorm:"not null" json:"encryption"`

	// ========= IMAP Configuration (reply watcher) =========
	IMAPHost     string `json:"imap_host"`
	IMAPPort     int    `gorm:"default:993" json:"imap_port"`
	IMAPUsername string `json:"imap_username"`
	IMAPPassword string `json:"-"`
	IMAPMailbox  string `gorm:"default:'INBOX'" json:"imap_mailbox"`

	// ========= OAuth Configuration =========
	OAuthProvider     string    `gorm:"column:oauth_provider" json:"oauth_provider"`
	OAuthToken        string    `gorm:"column:oauth_token" json:"-"`
	OAuthRefreshToken string    `gorm:"column:oauth_refresh_token" json:"-"`
	OAuthExpiry       time.Time `gorm:"column:oauth_expiry" json:"oauth_expiry"`

	// ========= Warmup / Rate Governor state =========
	IsWarmingUp     bool        `gorm:"default:false" json:"is_warming_up"`
	RampProfile     RampProfile `gorm:"default:'moderate'" json:"ramp_profile"`
	WarmupStartedAt *time.Time  `json:"warmup_started_at"`
	WarmupDay       int         `gorm:"default:1" json:"warmup_day"`

	// Steady-state cap once ramp completes, or the ceiling used
	// directly when IsWarmingUp is false.
	DailyCap int `gorm:"default:100" json:"daily_cap"`

	// Send window, local to SendWindowTZ. Minutes are ignored; windows
	// are hour-granularity only. SendWindowDays is a bitmask of
	// time.Weekday values (bit 0 = Sunday ... bit 6 = Saturday);
	// AllDays covers every day. A window with SendWindowStartHour >
	// SendWindowEndHour wraps past midnight, e.g. 22-2 for a
	// 22:00-02:00 window; the wrapped early-morning hours only count
	// as open on a day that is itself in SendWindowDays, not because
	// the previous day's window is still "open" — see
	// ratelimit.Governor.Evaluate.
	SendWindowStartHour int    `gorm:"default:8" json:"send_window_start_hour"`
	SendWindowEndHour   int    `gorm:"default:18" json:"send_window_end_hour"`
	SendWindowDays      int    `gorm:"default:127" json:"send_window_days"`
	SendWindowTZ        string `gorm:"default:'UTC'" json:"send_window_tz"`

	// OnHold makes ratelimit.Governor.Evaluate deny every send for this
	// sender, rescheduling the step 30 minutes out. An operator sets and
	// clears it via the Control API; nothing in the engine sets it
	// automatically.
	OnHold       bool   `gorm:"default:false" json:"on_hold"`
	OnHoldReason string `json:"on_hold_reason,omitempty"`

	// ========= Signature =========
	ActiveSignatureID *uint `json:"active_signature_id,omitempty"`

	// ========= Status & Verification =========
	SMTPVerified bool       `gorm:"default:false" json:"smtp_verified"`
	IMAPVerified bool       `gorm:"default:false" json:"imap_verified"`
	LastTestedAt *time.Time `json:"last_tested_at"`
	LastError    *string    `json:"last_error"`

	// ========= Usage Metrics =========
	SentToday  int `gorm:"default:0" json:"sent_today"`
	TotalSent  int `gorm:"default:0" json:"total_sent"`
	ReplyCount int `gorm:"default:0" json:"reply_count"`
}

// Sanitize strips every secret before a Sender is returned from the
// Control API.
func (s *Sender) Sanitize() {
	s.SMTPPassword = ""
	s.IMAPPassword = ""
	s.OAuthToken = ""
	s.OAuthRefreshToken = ""
}
