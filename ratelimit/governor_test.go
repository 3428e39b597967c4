package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/outreachhq/sequencer/models"
)

func testSender() *models.Sender {
	return &models.Sender{
		RampProfile:         models.RampModerate,
		WarmupDay:           1,
		DailyCap:            100,
		SendWindowStartHour: 8,
		SendWindowEndHour:   18,
		SendWindowDays:      models.AllDays,
		SendWindowTZ:        "UTC",
	}
}

func TestGovernor_Evaluate_DeniesWhenOnHold(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.OnHold = true

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "sender_on_hold", decision.Reason)
}

func TestGovernor_Evaluate_DeniesOutsideSendWindow(t *testing.T) {
	g := &Governor{}
	sender := testSender()

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "outside_send_window", decision.Reason)
	assert.True(t, decision.RetryAfter.After(time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)))
}

func TestGovernor_Evaluate_AllowsInsideWindowUnderCap(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.SentToday = 3

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.True(t, decision.Allowed)
}

func TestGovernor_Evaluate_DeniesAtWarmupDailyCap(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.IsWarmingUp = true
	sender.WarmupDay = 1 // moderate day 1 cap is 10
	sender.SentToday = 10

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "daily_cap_reached", decision.Reason)
}

func TestGovernor_Evaluate_IgnoresRampOnceWarmupComplete(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.IsWarmingUp = false
	sender.SentToday = 50

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.True(t, decision.Allowed)
}

func TestGovernor_Evaluate_FallsBackToUTCOnBadTimezone(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.SendWindowTZ = "not/a/real/zone"

	decision := g.Evaluate(sender, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	assert.True(t, decision.Allowed)
}

func TestGovernor_Evaluate_DeniesOnDayOutsideSendWindowDays(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.SendWindowDays = models.Weekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

	// 2026-01-10 is a Saturday; the window is Mon-Fri 08:00-18:00.
	decision := g.Evaluate(sender, time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "outside_send_window", decision.Reason)
	// Next open day is Monday 2026-01-12 at 08:00.
	assert.Equal(t, time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC), decision.RetryAfter)
}

func TestGovernor_Evaluate_AllowsMidnightCrossingWindow(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.SendWindowStartHour = 22
	sender.SendWindowEndHour = 2
	sender.SendWindowDays = models.Weekdays(time.Friday, time.Saturday)
	sender.SendWindowTZ = "America/Denver"

	// 2026-01-10 08:30 UTC is Saturday 01:30 MST, inside the wrapped
	// 22:00-02:00 Fri-Sat window (scenario: "send executes Sat 01:30").
	decision := g.Evaluate(sender, time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC))
	assert.True(t, decision.Allowed)

	// 2026-01-10 23:00 UTC is Saturday 16:00 MST — outside the window
	// since only the 22:00-24:00 and 00:00-02:00 hours are open.
	decision = g.Evaluate(sender, time.Date(2026, 1, 10, 23, 0, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
}

func TestGovernor_Evaluate_MidnightWindowDeniesNonWindowDayEvenInWrappedHours(t *testing.T) {
	g := &Governor{}
	sender := testSender()
	sender.SendWindowStartHour = 22
	sender.SendWindowEndHour = 2
	sender.SendWindowDays = models.Weekdays(time.Friday, time.Saturday)
	sender.SendWindowTZ = "America/Denver"

	// 2026-01-11 08:30 UTC is Sunday 01:30 MST: Sunday is not in
	// {Fri, Sat}, so despite falling in the 00:00-02:00 wrapped hours
	// it must still be denied — the window contract is per calendar
	// day, not "yesterday's window is still open".
	decision := g.Evaluate(sender, time.Date(2026, 1, 11, 8, 30, 0, 0, time.UTC))
	assert.False(t, decision.Allowed)
	assert.Equal(t, "outside_send_window", decision.Reason)

	// Retry rolls all the way to the next Friday 22:00 MST, skipping
	// Sunday through Thursday.
	loc, err := time.LoadLocation("America/Denver")
	assert.NoError(t, err)
	wantRetry := time.Date(2026, 1, 16, 22, 0, 0, 0, loc)
	assert.True(t, decision.RetryAfter.Equal(wantRetry))
}

func TestGovernor_Lock_ReturnsSameMutexForSameSender(t *testing.T) {
	g := NewGovernor(nil)
	a := g.Lock("a@example.com")
	a.Unlock()
	b := g.Lock("a@example.com")
	b.Unlock()
	assert.Same(t, a, b)
}
