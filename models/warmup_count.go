package models

import "time"

// WarmupCount is one sender's send count for one calendar date, never
// decremented: the historical ledger the daily cap is checked and
// audited against, keyed (sender_email, date). Sender.SentToday is a
// same-day cache of today's row here, zeroed at UTC midnight by the
// warmup ticker — that reset only replaces the cache; the row for the
// date it just left stays in this table untouched.
type WarmupCount struct {
	SenderEmail string    `gorm:"primaryKey;column:sender_email" json:"sender_email"`
	Date        time.Time `gorm:"primaryKey" json:"date"`
	Count       int       `gorm:"not null;default:0" json:"count"`
}
