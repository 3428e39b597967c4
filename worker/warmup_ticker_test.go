package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationUntilNextMidnightUTC_MidDay(t *testing.T) {
	now := time.Date(2026, 8, 6, 15, 30, 0, 0, time.UTC)
	got := durationUntilNextMidnightUTC(now)
	assert.Equal(t, 8*time.Hour+30*time.Minute, got)
}

func TestDurationUntilNextMidnightUTC_JustAfterMidnight(t *testing.T) {
	now := time.Date(2026, 8, 6, 0, 0, 1, 0, time.UTC)
	got := durationUntilNextMidnightUTC(now)
	assert.Equal(t, 24*time.Hour-time.Second, got)
}

func TestDurationUntilNextMidnightUTC_ConvertsNonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 8, 6, 20, 0, 0, 0, loc) // == 2026-08-07T01:00:00Z
	got := durationUntilNextMidnightUTC(now)
	assert.Equal(t, 23*time.Hour, got)
}
