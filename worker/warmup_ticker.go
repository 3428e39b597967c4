package worker

import (
	"context"
	"log"
	"time"

	"github.com/outreachhq/sequencer/ratelimit"
)

// WarmupTicker resets every sender's SentToday cache at UTC midnight,
// the restart-safe side of the Rate Governor's per-day cap. This only
// retires the same-day cache column; the warmup_counts ledger
// ratelimit.Governor.RecordSend writes to is append-only and keeps
// the prior date's row untouched, so no per-date history is lost.
// Its Start(ctx) ticker follows WarmupWorker's shape
// (worker/warmup_worker.go), simplified from a multi-stage ramp-schedule
// advancer to a single daily reset: the ramp day itself is stored on
// the Sender and advanced by ratelimit.Governor.RecordSend.
type WarmupTicker struct {
	Governor *ratelimit.Governor
	Logger   *log.Logger
}

func NewWarmupTicker(governor *ratelimit.Governor, logger *log.Logger) *WarmupTicker {
	return &WarmupTicker{Governor: governor, Logger: logger}
}

func (wt *WarmupTicker) Start(ctx context.Context) {
	wt.Logger.Println("Starting warmup ticker...")

	timer := time.NewTimer(durationUntilNextMidnightUTC(time.Now()))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if err := wt.Governor.ResetDailyCounters(); err != nil {
				wt.Logger.Printf("Error resetting daily counters: %v", err)
			}
			timer.Reset(24 * time.Hour)
		case <-ctx.Done():
			wt.Logger.Println("Stopping warmup ticker...")
			return
		}
	}
}

func durationUntilNextMidnightUTC(now time.Time) time.Duration {
	now = now.UTC()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return nextMidnight.Sub(now)
}
