// Package executor drives one enrollment's next step to completion:
// template rendering, personalization, signature composition, a Rate
// Governor check, and a Channel Adapter call, translating the result
// into the enrollment's next state per the step outcome.
package executor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/outreachhq/sequencer/channel"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/personalize"
	"github.com/outreachhq/sequencer/ratelimit"
	"github.com/outreachhq/sequencer/signature"
	"github.com/outreachhq/sequencer/template"
	"github.com/outreachhq/sequencer/utils"
)

const (
	defaultMaxAttempts = 5
	backoffBase         = 5 * time.Minute
	backoffFactor       = 2
	backoffCap          = 6 * time.Hour
	backoffJitter       = 0.2
)

// Outcome is what the Scheduler persists in one transaction after a
// call to Execute, alongside the log entry when one is produced.
type Outcome struct {
	Status    models.EnrollmentStatus
	StepIndex int
	DueAt     time.Time
	Attempts  int
	LastError string
	LogEntry  *models.LogEntry
}

// Executor wires the Personalizer, Signature Composer, Rate Governor,
// and the per-kind Channel Adapters behind a single-step contract:
// given one enrollment, one sequence, a recipient and a sender, it
// runs exactly one step and returns what happened.
type Executor struct {
	Governor       *ratelimit.Governor
	Personalizer   *personalize.Personalizer
	SignatureStore *signature.Store
	Adapters       map[models.StepKind]channel.Adapter
	MaxAttempts    int

	// TemplateLookup resolves a saved Template by key for email steps
	// that reference one instead of carrying inline content.
	TemplateLookup func(key string) (*models.Template, error)
}

func (x *Executor) maxAttempts() int {
	if x.MaxAttempts > 0 {
		return x.MaxAttempts
	}
	return defaultMaxAttempts
}

// Execute advances enrollment by exactly one step: resolve content,
// personalize, check the Rate Governor, dispatch through the matching
// Channel Adapter, and classify the outcome. It never mutates
// enrollment or sequence in place; the returned Outcome is the
// caller's (Scheduler's) sole instruction for what to persist.
func (x *Executor) Execute(ctx context.Context, enrollment *models.Enrollment, sequence *models.Sequence, recipient *models.Recipient, sender *models.Sender) (Outcome, error) {
	if enrollment.StepIndex >= len(sequence.Steps) {
		return Outcome{Status: models.EnrollmentCompleted, StepIndex: enrollment.StepIndex}, nil
	}
	step := sequence.Steps[enrollment.StepIndex]

	if step.Kind == models.StepWait {
		return Outcome{
			Status:    models.EnrollmentWaiting,
			StepIndex: enrollment.StepIndex + 1,
			DueAt:     time.Now().Add(time.Duration(step.DelayDays) * 24 * time.Hour),
		}, nil
	}

	if err := validateStep(step); err != nil {
		return Outcome{}, err
	}

	subjectSrc, bodySrc, err := x.resolveContent(step)
	if err != nil {
		return Outcome{}, err
	}

	bag, replacementBody := x.personalizeBag(ctx, step, recipient, sender, sequence)
	if replacementBody != nil {
		bodySrc = *replacementBody
	}

	rendered, err := template.Render(subjectSrc, bodySrc, bag)
	if err != nil {
		return x.permanentOutcome(enrollment, fmt.Sprintf("template syntax error: %v", err)), nil
	}

	lock := x.Governor.Lock(sender.FromEmail)
	defer lock.Unlock()

	decision := x.Governor.Evaluate(sender, time.Now())
	if !decision.Allowed {
		return Outcome{
			Status:    models.EnrollmentPending,
			StepIndex: enrollment.StepIndex,
			DueAt:     decision.RetryAfter,
			Attempts:  enrollment.Attempts,
		}, nil
	}

	msg := x.buildMessage(step, rendered, recipient, sender)
	adapter, ok := x.Adapters[step.Kind]
	if !ok {
		return x.permanentOutcome(enrollment, fmt.Sprintf("no adapter configured for step kind %q", step.Kind)), nil
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, channelDeadline(step.Kind))
	result := adapter.Dispatch(deadlineCtx, msg)
	cancel()

	switch result.Status {
	case channel.StatusSent:
		if err := x.Governor.RecordSend(sender, time.Now()); err != nil {
			utils.LogError("record_send_failed", err, map[string]interface{}{"sender_id": sender.ID})
		}
		return x.sentOutcome(enrollment, sequence, step, result), nil

	case channel.StatusTransientFailure:
		return x.transientOutcome(enrollment, result), nil

	default: // StatusPermanentFailure
		return x.failureOutcome(enrollment, result), nil
	}
}

func (x *Executor) resolveContent(step models.SequenceStep) (subject, body string, err error) {
	switch step.Kind {
	case models.StepEmail:
		if step.TemplateKey != "" {
			if x.TemplateLookup == nil {
				return "", "", &ValidationError{Field: "template_key", Message: "no template lookup configured"}
			}
			tmpl, err := x.TemplateLookup(step.TemplateKey)
			if err != nil {
				return "", "", &ValidationError{Field: "template_key", Message: err.Error()}
			}
			return tmpl.Subject, tmpl.Body, nil
		}
		return step.InlineSubject, step.InlineBody, nil
	case models.StepCall:
		return "", step.Script, nil
	case models.StepNetworkConnect, models.StepNetworkMessage:
		return "", step.Message, nil
	default:
		return "", "", &ValidationError{Field: "kind", Message: "unknown step kind"}
	}
}

// personalizeBag runs the Personalizer for email steps and merges its
// output into the variable bag, returning a replacement body when the
// mode is fully_personalized and generation succeeded.
func (x *Executor) personalizeBag(ctx context.Context, step models.SequenceStep, recipient *models.Recipient, sender *models.Sender, sequence *models.Sequence) (map[string]string, *string) {
	var signaturePlain string
	if x.SignatureStore != nil {
		if sig, err := x.SignatureStore.ForSender(sender); err == nil {
			signaturePlain = sig.PlainBody
		}
	}
	bag := BuildVariableBag(recipient, sender, sequence.Name, signaturePlain)

	if step.Kind != models.StepEmail || step.PersonalizationMode == "" || x.Personalizer == nil {
		return bag, nil
	}

	result := x.Personalizer.Personalize(ctx, recipient, step.PersonalizationMode, step.InlineBody)
	mergeVariables(bag, result.Variables.AsMap())
	return bag, result.ReplacementBody
}

func (x *Executor) buildMessage(step models.SequenceStep, rendered template.Rendered, recipient *models.Recipient, sender *models.Sender) channel.Message {
	smtpPassword, err := utils.Decrypt(sender.SMTPPassword)
	if err != nil {
		utils.LogError("decrypt_smtp_password", err, map[string]interface{}{"sender_id": sender.ID})
	}
	msg := channel.Message{
		FromEmail: sender.FromEmail,
		ToEmail:   recipient.Email,
		ToPhone:   recipient.Phone,
		ToProfile: recipient.NetworkProfileURL,
		Subject:   rendered.Subject,
		RichBody:  rendered.Body,
		PlainBody: rendered.Body,
		Script:    rendered.Body,
		SenderCtx: channel.SenderContext{
			SenderID:         sender.ID,
			SMTPHost:         sender.SMTPHost,
			SMTPPort:         sender.SMTPPort,
			SMTPUsername:     sender.SMTPUsername,
			SMTPPassword:     smtpPassword,
			Encryption:       sender.Encryption,
			NetworkAccountID: sender.FromEmail,
		},
	}
	if step.Kind == models.StepNetworkConnect || step.Kind == models.StepNetworkMessage {
		msg.PlainBody = rendered.Body
	}
	return msg
}

func channelDeadline(kind models.StepKind) time.Duration {
	switch kind {
	case models.StepEmail:
		return channel.EmailDeadline
	case models.StepCall:
		return channel.VoiceDeadline
	default:
		return channel.BrowserDeadline
	}
}

func (x *Executor) sentOutcome(enrollment *models.Enrollment, sequence *models.Sequence, step models.SequenceStep, result channel.Result) Outcome {
	nextIndex := enrollment.StepIndex + 1
	logEntry := &models.LogEntry{
		EnrollmentID: enrollment.ID,
		StepIndex:    enrollment.StepIndex,
		Kind:         "send_attempt",
		Outcome:      string(channel.StatusSent),
		ExternalRef:  result.ExternalRef,
		Detail:       result.Detail,
	}

	if nextIndex >= len(sequence.Steps) {
		return Outcome{Status: models.EnrollmentCompleted, StepIndex: nextIndex, DueAt: time.Now(), LogEntry: logEntry}
	}

	next := sequence.Steps[nextIndex]
	status := models.EnrollmentPending
	dueAt := time.Now()
	if next.DelayDays > 0 {
		status = models.EnrollmentWaiting
		dueAt = time.Now().Add(time.Duration(next.DelayDays) * 24 * time.Hour)
	}
	return Outcome{Status: status, StepIndex: nextIndex, DueAt: dueAt, LogEntry: logEntry}
}

func (x *Executor) transientOutcome(enrollment *models.Enrollment, result channel.Result) Outcome {
	attempts := enrollment.Attempts + 1
	if attempts >= x.maxAttempts() {
		return x.failureOutcome(enrollment, result)
	}
	return Outcome{
		Status:    models.EnrollmentPending,
		StepIndex: enrollment.StepIndex,
		DueAt:     time.Now().Add(backoffDelay(attempts)),
		Attempts:  attempts,
		LastError: result.Detail["reason"],
	}
}

func (x *Executor) failureOutcome(enrollment *models.Enrollment, result channel.Result) Outcome {
	return Outcome{
		Status:    models.EnrollmentFailed,
		StepIndex: enrollment.StepIndex,
		Attempts:  enrollment.Attempts + 1,
		LastError: result.Detail["reason"],
		LogEntry: &models.LogEntry{
			EnrollmentID: enrollment.ID,
			StepIndex:    enrollment.StepIndex,
			Kind:         "send_attempt",
			Outcome:      string(channel.StatusPermanentFailure),
			Detail:       result.Detail,
		},
	}
}

func (x *Executor) permanentOutcome(enrollment *models.Enrollment, reason string) Outcome {
	return Outcome{
		Status:    models.EnrollmentFailed,
		StepIndex: enrollment.StepIndex,
		Attempts:  enrollment.Attempts + 1,
		LastError: reason,
		LogEntry: &models.LogEntry{
			EnrollmentID: enrollment.ID,
			StepIndex:    enrollment.StepIndex,
			Kind:         "send_attempt",
			Outcome:      string(channel.StatusPermanentFailure),
			Detail:       map[string]string{"reason": reason},
		},
	}
}

// backoffDelay computes the exponential-with-jitter reschedule delay
// for transient_failure retries: base 5m, factor 2, capped at 6h,
// jittered ±20%.
func backoffDelay(attempt int) time.Duration {
	delay := float64(backoffBase)
	for i := 1; i < attempt; i++ {
		delay *= backoffFactor
	}
	if delay > float64(backoffCap) {
		delay = float64(backoffCap)
	}
	jitter := delay * backoffJitter * (2*rand.Float64() - 1)
	return time.Duration(delay + jitter)
}

func validateStep(step models.SequenceStep) error {
	if step.DelayDays < 0 {
		return &ValidationError{Field: "delay_days", Message: "must be >= 0"}
	}
	switch step.Kind {
	case models.StepEmail, models.StepWait, models.StepCall, models.StepNetworkConnect, models.StepNetworkMessage:
		return nil
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("invalid step kind %q", step.Kind)}
	}
}
