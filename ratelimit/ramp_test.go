package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outreachhq/sequencer/models"
)

func TestDailyCapForDay_ConservativeRamp(t *testing.T) {
	assert.Equal(t, 5, dailyCapForDay(models.RampConservative, 1, 100))
	assert.Equal(t, 7, dailyCapForDay(models.RampConservative, 3, 100))
	assert.Equal(t, 50, dailyCapForDay(models.RampConservative, 28, 100))
}

func TestDailyCapForDay_PastScheduleReusesSteadyState(t *testing.T) {
	assert.Equal(t, 100, dailyCapForDay(models.RampAggressive, 999, 100))
}

func TestDailyCapForDay_NeverExceedsSteadyStateCap(t *testing.T) {
	// a sender configured with a daily cap below what the schedule would
	// otherwise allow should be clamped to that cap.
	assert.Equal(t, 10, dailyCapForDay(models.RampAggressive, 5, 10))
}

func TestDailyCapForDay_UnknownProfileFallsBackToSteadyState(t *testing.T) {
	assert.Equal(t, 42, dailyCapForDay(models.RampProfile("bogus"), 1, 42))
}

func TestDailyCapForDay_DayZeroOrNegativeClampsToFirstEntry(t *testing.T) {
	assert.Equal(t, 20, dailyCapForDay(models.RampAggressive, 0, 100))
	assert.Equal(t, 20, dailyCapForDay(models.RampAggressive, -3, 100))
}
