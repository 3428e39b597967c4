// Package scheduler runs the single logical claim-dispatch-commit
// loop that advances due enrollments. Its idle-poll/ctx.Done() shape
// follows WarmupWorker's ticker loop (worker/warmup_worker.go),
// generalized to a bounded worker pool via golang.org/x/sync/semaphore
// and a per-sender serialization guarantee that ticker didn't need
// since it only ever touched one sender at a time.
package scheduler

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/outreachhq/sequencer/executor"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/store"
	"github.com/outreachhq/sequencer/utils"
)

const (
	defaultGlobalConcurrency = 8
	defaultPollInterval      = 10 * time.Second
	defaultDrainTimeout      = 60 * time.Second
	defaultStaleThreshold    = 10 * time.Minute
)

// Scheduler is the single logical loop: claim due enrollments, hand
// each to the Step Executor under a bounded worker pool and a
// per-sender concurrency cap of 1, then commit the result.
type Scheduler struct {
	Store    *store.Store
	Executor *executor.Executor

	GlobalConcurrency int
	PollInterval      time.Duration
	DrainTimeout      time.Duration
	StaleThreshold    time.Duration
	ClaimBatchSize    int

	sem         *semaphore.Weighted
	senderLocks sync.Map // sender email -> *sync.Mutex
	wg          sync.WaitGroup
}

func (s *Scheduler) concurrency() int64 {
	if s.GlobalConcurrency > 0 {
		return int64(s.GlobalConcurrency)
	}
	return defaultGlobalConcurrency
}

func (s *Scheduler) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return defaultPollInterval
}

func (s *Scheduler) drainTimeout() time.Duration {
	if s.DrainTimeout > 0 {
		return s.DrainTimeout
	}
	return defaultDrainTimeout
}

func (s *Scheduler) staleThreshold() time.Duration {
	if s.StaleThreshold > 0 {
		return s.StaleThreshold
	}
	return defaultStaleThreshold
}

func (s *Scheduler) claimBatchSize() int {
	if s.ClaimBatchSize > 0 {
		return s.ClaimBatchSize
	}
	return int(s.concurrency())
}

// Run starts the claim loop and blocks until ctx is cancelled. On
// cancellation it stops claiming new work and waits up to
// drain_timeout for in-flight Step Executor calls to finish.
func (s *Scheduler) Run(ctx context.Context) {
	if s.sem == nil {
		s.sem = semaphore.NewWeighted(s.concurrency())
	}

	if n, err := s.Store.RecoverStale(time.Now(), s.staleThreshold()); err != nil {
		utils.LogError("recover_stale_enrollments", err, nil)
	} else if n > 0 {
		utils.LogEvent("recovered_stale_enrollments", map[string]interface{}{"count": n})
	}

	ticker := time.NewTicker(s.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		default:
		}

		processed := s.claimAndDispatch(ctx)
		if processed > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			s.drain()
			return
		case <-ticker.C:
		}
	}
}

// drain waits for in-flight Step Executor calls to return, bounded by
// drain_timeout; enrollments still running past the timeout are left
// in_flight for RecoverStale to reclaim on the next startup.
func (s *Scheduler) drain() {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.drainTimeout()):
		utils.LogEvent("scheduler_drain_timeout", nil)
	}
}

// claimAndDispatch runs one iteration of the claim-dispatch loop and
// returns how many enrollments it claimed.
func (s *Scheduler) claimAndDispatch(ctx context.Context) int {
	claimed, err := s.Store.ClaimDue(time.Now(), s.claimBatchSize())
	if err != nil {
		utils.LogError("claim_due_enrollments", err, nil)
		return 0
	}

	for i := range claimed {
		enrollment := claimed[i]
		if err := s.sem.Acquire(ctx, 1); err != nil {
			// ctx was cancelled while waiting for a slot; release the
			// claim back to pending so a later ClaimDue picks it up
			// rather than leaving it in_flight.
			if relErr := s.Store.Release(enrollment.ID, enrollment.Version); relErr != nil {
				utils.LogError("release_on_shutdown", relErr, map[string]interface{}{"enrollment_id": enrollment.ID})
			}
			continue
		}

		s.wg.Add(1)
		go s.dispatch(ctx, enrollment)
	}
	return len(claimed)
}

// dispatch runs one claimed enrollment through the Step Executor under
// its sender's serialization lock, then commits the outcome.
func (s *Scheduler) dispatch(ctx context.Context, enrollment models.Enrollment) {
	defer s.wg.Done()
	defer s.sem.Release(1)

	_, sequence, recipient, sender, err := s.Store.LoadForExecution(enrollment.ID)
	if err != nil {
		utils.LogError("load_enrollment_for_execution", err, map[string]interface{}{"enrollment_id": enrollment.ID})
		if relErr := s.Store.Release(enrollment.ID, enrollment.Version); relErr != nil {
			utils.LogError("release_after_load_failure", relErr, map[string]interface{}{"enrollment_id": enrollment.ID})
		}
		return
	}

	lock := s.senderLock(sender.FromEmail)
	lock.Lock()
	defer lock.Unlock()

	outcome, err := s.Executor.Execute(ctx, &enrollment, &sequence, &recipient, &sender)
	if err != nil {
		utils.LogError("execute_step", err, map[string]interface{}{"enrollment_id": enrollment.ID})
		if relErr := s.Store.Release(enrollment.ID, enrollment.Version); relErr != nil {
			utils.LogError("release_after_execute_failure", relErr, map[string]interface{}{"enrollment_id": enrollment.ID})
		}
		return
	}

	if err := s.Store.Commit(enrollment.ID, enrollment.Version, outcome); err != nil {
		utils.LogError("commit_outcome", err, map[string]interface{}{"enrollment_id": enrollment.ID})
	}
}

func (s *Scheduler) senderLock(senderEmail string) *sync.Mutex {
	lock, _ := s.senderLocks.LoadOrStore(senderEmail, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
