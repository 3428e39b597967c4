package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_DefaultsApplyWhenUnset(t *testing.T) {
	s := &Scheduler{}
	assert.EqualValues(t, defaultGlobalConcurrency, s.concurrency())
	assert.Equal(t, defaultPollInterval, s.pollInterval())
	assert.Equal(t, defaultDrainTimeout, s.drainTimeout())
	assert.Equal(t, defaultStaleThreshold, s.staleThreshold())
	assert.Equal(t, defaultGlobalConcurrency, s.claimBatchSize())
}

func TestScheduler_ConfiguredValuesOverrideDefaults(t *testing.T) {
	s := &Scheduler{
		GlobalConcurrency: 3,
		PollInterval:      2 * time.Second,
		DrainTimeout:      5 * time.Second,
		StaleThreshold:    1 * time.Minute,
		ClaimBatchSize:    20,
	}
	assert.EqualValues(t, 3, s.concurrency())
	assert.Equal(t, 2*time.Second, s.pollInterval())
	assert.Equal(t, 5*time.Second, s.drainTimeout())
	assert.Equal(t, 1*time.Minute, s.staleThreshold())
	assert.Equal(t, 20, s.claimBatchSize())
}

func TestScheduler_ClaimBatchSizeDefaultsToConcurrency(t *testing.T) {
	s := &Scheduler{GlobalConcurrency: 4}
	assert.Equal(t, 4, s.claimBatchSize())
}

func TestScheduler_SenderLockReturnsSameMutexForSameEmail(t *testing.T) {
	s := &Scheduler{}
	a := s.senderLock("sales@example.com")
	b := s.senderLock("sales@example.com")
	assert.Same(t, a, b)
}

func TestScheduler_SenderLockReturnsDistinctMutexesForDistinctSenders(t *testing.T) {
	s := &Scheduler{}
	a := s.senderLock("a@example.com")
	b := s.senderLock("b@example.com")
	assert.NotSame(t, a, b)
}

func TestScheduler_DrainReturnsImmediatelyWhenNothingInFlight(t *testing.T) {
	s := &Scheduler{DrainTimeout: 50 * time.Millisecond}
	start := time.Now()
	s.drain()
	assert.Less(t, time.Since(start), 40*time.Millisecond)
}

func TestScheduler_DrainTimesOutWithoutPanickingWhenWorkNeverFinishes(t *testing.T) {
	s := &Scheduler{DrainTimeout: 20 * time.Millisecond}
	s.wg.Add(1)
	defer s.wg.Done()

	start := time.Now()
	s.drain()
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
