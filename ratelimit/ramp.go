package ratelimit

import "github.com/outreachhq/sequencer/models"

// rampSchedules holds the three built-in warmup curves as per-day cap
// lookup tables, ported from the ramp schedules of the Python warmup
// controller this engine replaces (RAMP_SCHEDULES: conservative is a
// 28-day ramp from 5 to 50/day, moderate an 18-day ramp from 10 to
// 50/day, aggressive a 10-day ramp from 20 to 50/day). Days past the
// end of a table use the sender's DailyCap.
var rampSchedules = map[models.RampProfile][]int{
	models.RampConservative: {
		5, 5, 7, 7, 9, 9, 11, 11, 13, 13,
		16, 16, 19, 19, 22, 22, 25, 25, 28, 28,
		32, 32, 36, 36, 40, 40, 45, 50,
	},
	models.RampModerate: {
		10, 12, 14, 16, 18, 20, 23, 26, 29, 32,
		35, 38, 41, 44, 47, 50, 50, 50,
	},
	models.RampAggressive: {
		20, 24, 28, 32, 36, 40, 44, 47, 50, 50,
	},
}

// dailyCapForDay returns the per-day send cap for a sender on a given
// warmup day (1-based), given its ramp profile and its steady-state
// cap once the ramp completes.
func dailyCapForDay(profile models.RampProfile, day int, steadyStateCap int) int {
	schedule, ok := rampSchedules[profile]
	if !ok || len(schedule) == 0 {
		return steadyStateCap
	}
	idx := day - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(schedule) {
		return steadyStateCap
	}
	scheduled := schedule[idx]
	if scheduled > steadyStateCap {
		return steadyStateCap
	}
	return scheduled
}
