// Package channel implements the four outbound adapters — email,
// voice, network-connect, network-message — behind one shared
// contract. Email transport follows WarmupMailer's dialer pattern;
// voice and network dispatch follow the external, third-party-driven
// shape of voice_calls.py / linkedin_automation.py.
package channel

import (
	"context"
	"time"
)

// Status is the adapter's terminal verdict for one dispatch.
type Status string

const (
	StatusSent             Status = "sent"
	StatusTransientFailure Status = "transient_failure"
	StatusPermanentFailure Status = "permanent_failure"
)

// Message is the channel-agnostic payload handed to an adapter. Only
// the fields relevant to the target channel are populated by the Step
// Executor; adapters ignore the rest.
type Message struct {
	FromEmail string
	ToEmail   string
	ToPhone   string
	ToProfile string // network-connect / network-message target profile URL

	Subject   string
	RichBody  string
	PlainBody string

	Script string // voice call script, pre-rendered

	SenderCtx SenderContext
}

// SenderContext carries the subset of sender configuration an adapter
// needs to dispatch, decoupled from models.Sender so adapters don't
// import the persistence layer directly.
type SenderContext struct {
	SenderID     uint
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string // already decrypted
	Encryption   string

	// NetworkAccountID identifies the professional-network account the
	// network-connect / network-message adapters should act through.
	NetworkAccountID string
}

// Result is what every adapter returns from dispatching one message:
// a terminal status plus an optional provider reference and detail.
type Result struct {
	Status     Status
	ExternalRef string
	Detail     map[string]string
}

// Adapter is the shared contract all four channels implement.
type Adapter interface {
	Dispatch(ctx context.Context, msg Message) Result
}

// Deadline budgets per channel: email and voice submissions get 30s,
// browser-driven actions get 60s.
const (
	EmailDeadline   = 30 * time.Second
	VoiceDeadline   = 30 * time.Second
	BrowserDeadline = 60 * time.Second
)

// transient builds a Result for any failure that should be retried by
// the Scheduler rather than escalated immediately.
func transient(reason string) Result {
	return Result{Status: StatusTransientFailure, Detail: map[string]string{"reason": reason}}
}

// permanent builds a Result for an irrecoverable failure.
func permanent(reason string) Result {
	return Result{Status: StatusPermanentFailure, Detail: map[string]string{"reason": reason}}
}

func sent(externalRef string, detail map[string]string) Result {
	return Result{Status: StatusSent, ExternalRef: externalRef, Detail: detail}
}
