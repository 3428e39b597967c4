package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/utils"
)

// Decision is the Rate Governor's verdict for one send attempt. A
// denial is a directive to reschedule, not an error: callers are
// expected to push the enrollment's due_at to RetryAfter and continue.
type Decision struct {
	Allowed    bool
	Reason     string
	RetryAfter time.Time
}

// Governor enforces per-sender ramp caps, send windows, and the
// operator on-hold flag ahead of every Channel Adapter call. Per-sender
// serialization is kept in-process via senderLocks: the warmup
// counters themselves live in the Sender row so a scheduler restart
// never loses ramp progress, but the lock that prevents two goroutines
// from racing the same sender's counters is memory-only and assumes a
// single scheduler process (recorded as an Open Question decision in
// DESIGN.md).
type Governor struct {
	db *gorm.DB

	mu          sync.Mutex
	senderLocks map[string]*sync.Mutex
}

func NewGovernor(db *gorm.DB) *Governor {
	return &Governor{
		db:          db,
		senderLocks: make(map[string]*sync.Mutex),
	}
}

// Lock returns the mutex guarding one sender's warmup counters and
// send pacing, creating it on first use. Callers must Unlock it.
func (g *Governor) Lock(senderEmail string) *sync.Mutex {
	g.mu.Lock()
	lock, ok := g.senderLocks[senderEmail]
	if !ok {
		lock = &sync.Mutex{}
		g.senderLocks[senderEmail] = lock
	}
	g.mu.Unlock()
	lock.Lock()
	return lock
}

// Evaluate decides whether sender may send right now. Callers must
// hold the sender's lock (via Lock) before calling Evaluate and until
// after any corresponding RecordSend, so the check-then-increment pair
// is atomic with respect to other goroutines targeting this sender.
func (g *Governor) Evaluate(sender *models.Sender, now time.Time) Decision {
	if sender.OnHold {
		return Decision{Allowed: false, Reason: "sender_on_hold", RetryAfter: now.Add(30 * time.Minute)}
	}

	loc, err := time.LoadLocation(sender.SendWindowTZ)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	if !inSendWindow(local, sender) {
		return Decision{Allowed: false, Reason: "outside_send_window", RetryAfter: nextWindowOpen(local, sender)}
	}

	limit := sender.DailyCap
	if sender.IsWarmingUp {
		limit = dailyCapForDay(sender.RampProfile, sender.WarmupDay, sender.DailyCap)
	}
	if sender.SentToday >= limit {
		return Decision{Allowed: false, Reason: "daily_cap_reached", RetryAfter: nextWindowOpen(local.AddDate(0, 0, 1), sender)}
	}

	return Decision{Allowed: true}
}

// inSendWindow reports whether local falls inside sender's send
// window: its weekday must be in SendWindowDays, and its hour must
// fall in [start, end). A window with start > end wraps past
// midnight (e.g. 22-2); the wrapped hours after midnight only count
// for a day that is itself in SendWindowDays — a Saturday-only window
// does not bleed into Sunday's early hours, matching the (days,
// start, end, tz) window contract literally rather than treating the
// wrap as "yesterday's window is still open".
func inSendWindow(local time.Time, sender *models.Sender) bool {
	if sender.SendWindowDays&(1<<uint(local.Weekday())) == 0 {
		return false
	}
	hour := local.Hour()
	start, end := sender.SendWindowStartHour, sender.SendWindowEndHour
	if start <= end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

// RecordSend increments the sender's usage counters atomically,
// appends to today's row in the warmup_counts ledger (creating it on
// first send of the day), and advances its warmup day once 24h have
// elapsed since it started (or since the last advance), mirroring
// record_send / check_and_advance_warmup in the ramp controller this
// replaces. SentToday is a same-day cache of the ledger row RecordSend
// just wrote; the ledger itself is never decremented, so it stays a
// complete per-sender, per-date history even across the midnight
// cache reset.
func (g *Governor) RecordSend(sender *models.Sender, now time.Time) error {
	if err := g.db.Model(sender).Updates(map[string]interface{}{
		"sent_today": gorm.Expr("sent_today + 1"),
		"total_sent": gorm.Expr("total_sent + 1"),
	}).Error; err != nil {
		return fmt.Errorf("record send: %w", err)
	}
	sender.SentToday++
	sender.TotalSent++

	if err := g.recordWarmupCount(sender.FromEmail, now); err != nil {
		return err
	}

	if sender.IsWarmingUp && sender.WarmupStartedAt != nil {
		elapsed := now.Sub(*sender.WarmupStartedAt)
		expectedDay := int(elapsed/(24*time.Hour)) + 1
		if expectedDay > sender.WarmupDay {
			if err := g.db.Model(sender).Update("warmup_day", expectedDay).Error; err != nil {
				utils.LogError("advance_warmup_day", err, map[string]interface{}{"sender_id": sender.ID})
			} else {
				sender.WarmupDay = expectedDay
			}
		}
	}
	return nil
}

// recordWarmupCount appends one send to the (sender_email, date) row
// in the warmup_counts ledger, creating it on the first send of the
// day. The ledger is additive only — nothing ever updates Count
// downward, and nothing ever deletes a row — so it remains a complete
// history of every sender's daily send volume regardless of what the
// same-day SentToday cache does at midnight.
func (g *Governor) recordWarmupCount(senderEmail string, now time.Time) error {
	day := truncateToDate(now)
	result := g.db.Model(&models.WarmupCount{}).
		Where("sender_email = ? AND date = ?", senderEmail, day).
		Update("count", gorm.Expr("count + 1"))
	if result.Error != nil {
		return fmt.Errorf("record warmup count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		if err := g.db.Create(&models.WarmupCount{SenderEmail: senderEmail, Date: day, Count: 1}).Error; err != nil {
			return fmt.Errorf("record warmup count: %w", err)
		}
	}
	return nil
}

// WarmupCountOn returns the sender's recorded send count for one
// calendar date from the warmup_counts ledger, the audit surface for
// the per-sender, per-date daily-cap property: zero, not an error,
// when no send was ever recorded for that date.
func (g *Governor) WarmupCountOn(senderEmail string, date time.Time) (int, error) {
	var wc models.WarmupCount
	err := g.db.Where("sender_email = ? AND date = ?", senderEmail, truncateToDate(date)).First(&wc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("warmup count on date: %w", err)
	}
	return wc.Count, nil
}

func truncateToDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ResetDailyCounters zeroes the sent_today cache for every sender,
// intended to run once at UTC midnight from a dedicated ticker
// goroutine (worker/warmup_ticker.go), the same midnight-reset loop
// CampaignSender.ResetDailyCounters runs. This only retires the
// same-day cache: the warmup_counts ledger row for the date just
// ended is left exactly as RecordSend last wrote it.
func (g *Governor) ResetDailyCounters() error {
	return g.db.Model(&models.Sender{}).Where("1 = 1").Update("sent_today", 0).Error
}

// WarmupStatus is the response shape for GET /senders/by-email/{email}/warmup.
type WarmupStatus struct {
	WarmupDay       int     `json:"warmup_day"`
	DailyLimit      int     `json:"daily_limit"`
	SentToday       int     `json:"sent_today"`
	ProgressPercent float64 `json:"progress_percent"`
	DaysUntilFull   int     `json:"days_until_full"`
	IsWarmingUp     bool    `json:"is_warming_up"`
}

// Status computes a sender's warmup status entirely from its stored
// counters and the ramp curve, rather than a separately maintained
// projection, mirroring warmup_controller.get_warmup_status.
func (g *Governor) Status(sender *models.Sender) WarmupStatus {
	schedule := rampSchedules[sender.RampProfile]
	limit := dailyCapForDay(sender.RampProfile, sender.WarmupDay, sender.DailyCap)

	daysUntilFull := 0
	for d := sender.WarmupDay; d <= len(schedule); d++ {
		if dailyCapForDay(sender.RampProfile, d, sender.DailyCap) >= sender.DailyCap {
			break
		}
		daysUntilFull++
	}

	progress := 0.0
	if len(schedule) > 0 {
		progress = float64(sender.WarmupDay) / float64(len(schedule)) * 100
		if progress > 100 {
			progress = 100
		}
	}

	return WarmupStatus{
		WarmupDay:       sender.WarmupDay,
		DailyLimit:      limit,
		SentToday:       sender.SentToday,
		ProgressPercent: progress,
		DaysUntilFull:   daysUntilFull,
		IsWarmingUp:     sender.IsWarmingUp,
	}
}

// nextWindowOpen finds the next time on or after from at which
// sender's send window opens, walking forward day by day (at most a
// week) until it lands on a day in SendWindowDays. This is what lets
// a denial on a Sunday (window Fri-Sat) roll all the way to the
// following Friday rather than just the next calendar day.
func nextWindowOpen(from time.Time, sender *models.Sender) time.Time {
	for i := 0; i < 8; i++ {
		day := from.AddDate(0, 0, i)
		if sender.SendWindowDays&(1<<uint(day.Weekday())) == 0 {
			continue
		}
		open := time.Date(day.Year(), day.Month(), day.Day(), sender.SendWindowStartHour, 0, 0, 0, day.Location())
		if !open.Before(from) {
			return open.UTC()
		}
	}
	return from.UTC()
}
