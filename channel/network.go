package channel

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// NetworkAction is one queued browser-session action: either a
// connection request or a message to an existing connection.
type NetworkAction struct {
	Kind      NetworkActionKind
	ProfileURL string
	Message   string
	Result    chan Result
}

type NetworkActionKind int

const (
	ActionConnect NetworkActionKind = iota
	ActionMessage
)

// BrowserSession drives the actual headless-browser automation for
// one account. Production wiring implements this against a real
// browser driver; it is injected here so the adapter's queueing,
// pacing, and per-account daily cap logic can be exercised without
// one.
type BrowserSession interface {
	Connect(ctx context.Context, profileURL, message string) Result
	Message(ctx context.Context, profileURL, message string) Result
}

// accountWorker owns one account's serialized action queue: actions
// for the same LinkedIn-style account never run concurrently, and are
// paced by a jittered minimum interval, mirroring
// linkedin_automation.py's random.uniform sleeps between actions.
type accountWorker struct {
	session BrowserSession

	minInterval time.Duration
	jitter      time.Duration

	dailyCap  int
	sentToday int
	dayStart  time.Time

	queue chan NetworkAction
	mu    sync.Mutex
}

// NetworkAdapter fans dispatch calls out to one serialized worker per
// account: sessions are pooled per account, serialized, and subject
// to a configured minimum interval between actions.
type NetworkAdapter struct {
	NewSession func(accountID string) (BrowserSession, error)

	MinInterval time.Duration
	Jitter      time.Duration
	DailyCap    int

	mu       sync.Mutex
	accounts map[string]*accountWorker
}

func NewNetworkAdapter(newSession func(accountID string) (BrowserSession, error)) *NetworkAdapter {
	return &NetworkAdapter{
		NewSession:  newSession,
		MinInterval: 2 * time.Minute,
		Jitter:      3 * time.Minute,
		DailyCap:    25,
		accounts:    make(map[string]*accountWorker),
	}
}

func (a *NetworkAdapter) worker(accountID string) (*accountWorker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if w, ok := a.accounts[accountID]; ok {
		return w, nil
	}
	session, err := a.NewSession(accountID)
	if err != nil {
		return nil, err
	}
	w := &accountWorker{
		session:     session,
		minInterval: a.MinInterval,
		jitter:      a.Jitter,
		dailyCap:    a.DailyCap,
		dayStart:    time.Now(),
		queue:       make(chan NetworkAction, 64),
	}
	go w.run()
	a.accounts[accountID] = w
	return w, nil
}

// dispatch enqueues an action for the given account and blocks for
// the result, giving callers the same synchronous Adapter contract as
// the other channels while the actual work is serialized behind the
// queue.
func (a *NetworkAdapter) dispatch(ctx context.Context, msg Message, accountID string, kind NetworkActionKind) Result {
	w, err := a.worker(accountID)
	if err != nil {
		return permanent(fmt.Sprintf("session init failed: %v", err))
	}

	action := NetworkAction{Kind: kind, ProfileURL: msg.ToProfile, Message: msg.PlainBody, Result: make(chan Result, 1)}

	select {
	case w.queue <- action:
	case <-ctx.Done():
		return transient("queue full or deadline exceeded before enqueue")
	}

	select {
	case res := <-action.Result:
		return res
	case <-ctx.Done():
		return transient("deadline exceeded waiting for account worker")
	}
}

func (w *accountWorker) run() {
	for action := range w.queue {
		w.resetDayIfNeeded()

		if w.sentToday >= w.dailyCap {
			action.Result <- transient("account_daily_cap_reached")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), BrowserDeadline)
		var result Result
		switch action.Kind {
		case ActionConnect:
			result = w.session.Connect(ctx, action.ProfileURL, action.Message)
		case ActionMessage:
			result = w.session.Message(ctx, action.ProfileURL, action.Message)
		}
		cancel()

		if result.Status == StatusSent {
			w.sentToday++
		}
		action.Result <- result

		time.Sleep(w.minInterval + jitteredDuration(w.jitter))
	}
}

func (w *accountWorker) resetDayIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if time.Since(w.dayStart) >= 24*time.Hour {
		w.sentToday = 0
		w.dayStart = time.Now()
	}
}

func jitteredDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

// ConnectAdapter and MessageAdapter expose the shared Adapter
// interface over one NetworkAdapter, one per action kind, so the Step
// Executor can select the right one by step kind without knowing
// about the underlying per-account queueing.
type ConnectAdapter struct{ *NetworkAdapter }

func (a ConnectAdapter) Dispatch(ctx context.Context, msg Message) Result {
	return a.dispatch(ctx, msg, msg.SenderCtx.NetworkAccountID, ActionConnect)
}

type MessageAdapter struct{ *NetworkAdapter }

func (a MessageAdapter) Dispatch(ctx context.Context, msg Message) Result {
	return a.dispatch(ctx, msg, msg.SenderCtx.NetworkAccountID, ActionMessage)
}
