package executor

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/channel"
	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/ratelimit"
)

type stubAdapter struct {
	result channel.Result
}

func (s stubAdapter) Dispatch(ctx context.Context, msg channel.Message) channel.Result {
	return s.result
}

func newMockGovernor(t *testing.T) (*ratelimit.Governor, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	})
	gdb, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return ratelimit.NewGovernor(gdb), mock
}

func testSequence(kind models.StepKind) *models.Sequence {
	return &models.Sequence{
		Name: "Q3 Outbound",
		Steps: []models.SequenceStep{
			{Kind: kind, InlineSubject: "Hi {{first_name}}", InlineBody: "Hello {{first_name}} from {{sender_name}}"},
		},
	}
}

func testRecipient() *models.Recipient {
	return &models.Recipient{FirstName: "Dana", Email: "dana@example.com"}
}

func testSender() *models.Sender {
	sender := &models.Sender{
		FromEmail:           "sales@example.com",
		FromName:            "Sales Team",
		DailyCap:            100,
		SendWindowStartHour: 0,
		SendWindowEndHour:   23,
		SendWindowDays:      models.AllDays,
		SendWindowTZ:        "UTC",
	}
	sender.ID = 7
	return sender
}

func TestExecute_WaitStepAdvancesWithoutTouchingGovernor(t *testing.T) {
	sequence := &models.Sequence{Steps: []models.SequenceStep{{Kind: models.StepWait, DelayDays: 2}}}
	x := &Executor{}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), testSender())
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentWaiting, outcome.Status)
	assert.Equal(t, 1, outcome.StepIndex)
	assert.True(t, outcome.DueAt.After(time.Now().Add(47*time.Hour)))
}

func TestExecute_PastLastStepReturnsCompleted(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	x := &Executor{}
	enrollment := &models.Enrollment{StepIndex: 1}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), testSender())
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, outcome.Status)
}

func TestExecute_DeniedByGovernorReschedulesWithoutDispatching(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	sender := testSender()
	sender.OnHold = true

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{Status: channel.StatusSent}},
		},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentPending, outcome.Status)
	assert.Equal(t, 0, outcome.StepIndex)
	assert.True(t, outcome.DueAt.After(time.Now()))
}

func TestExecute_SentAdvancesStepAndRecordsSend(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	sender := testSender()
	governor, mock := newMockGovernor(t)

	mock.ExpectExec("UPDATE .*senders.*").WillReturnResult(sqlmock.NewResult(0, 1))

	x := &Executor{
		Governor: governor,
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{Status: channel.StatusSent, ExternalRef: "msg-1"}},
		},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.StepIndex)
	require.NotNil(t, outcome.LogEntry)
	assert.Equal(t, "msg-1", outcome.LogEntry.ExternalRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_SentWithDelayedNextStepWaits(t *testing.T) {
	sequence := &models.Sequence{Steps: []models.SequenceStep{
		{Kind: models.StepEmail, InlineSubject: "s", InlineBody: "b"},
		{Kind: models.StepEmail, InlineSubject: "s2", InlineBody: "b2", DelayDays: 3},
	}}
	sender := testSender()
	governor, mock := newMockGovernor(t)
	mock.ExpectExec("UPDATE .*senders.*").WillReturnResult(sqlmock.NewResult(0, 1))

	x := &Executor{
		Governor: governor,
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{Status: channel.StatusSent}},
		},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentWaiting, outcome.Status)
	assert.Equal(t, 1, outcome.StepIndex)
	assert.True(t, outcome.DueAt.After(time.Now().Add(71*time.Hour)))
}

func TestExecute_TransientFailureBacksOffAndIncrementsAttempts(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	sender := testSender()

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{
				Status: channel.StatusTransientFailure,
				Detail: map[string]string{"reason": "smtp_timeout"},
			}},
		},
		MaxAttempts: 5,
	}
	enrollment := &models.Enrollment{StepIndex: 0, Attempts: 1}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentPending, outcome.Status)
	assert.Equal(t, 0, outcome.StepIndex)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, "smtp_timeout", outcome.LastError)
	assert.True(t, outcome.DueAt.After(time.Now().Add(3*time.Minute)))
	assert.True(t, outcome.DueAt.Before(time.Now().Add(20*time.Minute)))
}

func TestExecute_TransientFailureEscalatesToPermanentAfterMaxAttempts(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	sender := testSender()

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{
				Status: channel.StatusTransientFailure,
				Detail: map[string]string{"reason": "smtp_timeout"},
			}},
		},
		MaxAttempts: 5,
	}
	enrollment := &models.Enrollment{StepIndex: 0, Attempts: 4}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFailed, outcome.Status)
	assert.Equal(t, 5, outcome.Attempts)
	require.NotNil(t, outcome.LogEntry)
}

func TestExecute_PermanentFailureMarksFailedWithoutAdvancing(t *testing.T) {
	sequence := testSequence(models.StepEmail)
	sender := testSender()

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{
				Status: channel.StatusPermanentFailure,
				Detail: map[string]string{"reason": "mailbox_unavailable"},
			}},
		},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFailed, outcome.Status)
	assert.Equal(t, 0, outcome.StepIndex)
	assert.Equal(t, "mailbox_unavailable", outcome.LastError)
}

func TestExecute_MalformedTemplateBecomesPermanentFailure(t *testing.T) {
	sequence := &models.Sequence{Steps: []models.SequenceStep{
		{Kind: models.StepEmail, InlineSubject: "Hi {{first_name", InlineBody: "body"},
	}}
	sender := testSender()

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{
			models.StepEmail: stubAdapter{result: channel.Result{Status: channel.StatusSent}},
		},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFailed, outcome.Status)
	require.NotNil(t, outcome.LogEntry)
	assert.Equal(t, string(channel.StatusPermanentFailure), outcome.LogEntry.Outcome)
}

func TestExecute_MissingAdapterForStepKindIsPermanentFailure(t *testing.T) {
	sequence := testSequence(models.StepCall)
	sender := testSender()

	x := &Executor{
		Governor: ratelimit.NewGovernor(nil),
		Adapters: map[models.StepKind]channel.Adapter{},
	}
	enrollment := &models.Enrollment{StepIndex: 0}

	outcome, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), sender)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentFailed, outcome.Status)
}

func TestExecute_NegativeDelayDaysIsValidationError(t *testing.T) {
	sequence := &models.Sequence{Steps: []models.SequenceStep{
		{Kind: models.StepEmail, DelayDays: -1, InlineSubject: "s", InlineBody: "b"},
	}}
	x := &Executor{Governor: ratelimit.NewGovernor(nil)}
	enrollment := &models.Enrollment{StepIndex: 0}

	_, err := x.Execute(context.Background(), enrollment, sequence, testRecipient(), testSender())
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
