// Package worker holds the engine's ticker-driven background loops:
// the reply watcher and the warmup-counter reset, both grounded on the
// teacher's Start(ctx)/ticker shape (worker/warmup_worker.go,
// worker/unibox_worker.go).
package worker

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/utils"
)

// ReplyWatcher polls every IMAP-configured sender's inbox for unseen
// messages from an enrolled recipient and closes out that recipient's
// enrollment the way a human reply should: the sequence's job was to
// get a response, and it got one.
type ReplyWatcher struct {
	db           *gorm.DB
	logger       *log.Logger
	pollInterval time.Duration
}

func NewReplyWatcher(db *gorm.DB, logger *log.Logger) *ReplyWatcher {
	return &ReplyWatcher{db: db, logger: logger, pollInterval: 5 * time.Minute}
}

func (w *ReplyWatcher) Start(ctx context.Context) {
	w.logger.Println("Starting reply watcher...")
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.scanAllSenders()
		case <-ctx.Done():
			w.logger.Println("Stopping reply watcher...")
			return
		}
	}
}

func (w *ReplyWatcher) scanAllSenders() {
	var senders []models.Sender
	if err := w.db.Where("imap_host <> ''").Find(&senders).Error; err != nil {
		utils.LogError("reply_watcher_fetch_senders", err, nil)
		return
	}

	for _, sender := range senders {
		if err := w.scanSenderInbox(sender); err != nil {
			utils.LogError("reply_watcher_scan_inbox", err, map[string]interface{}{"sender_id": sender.ID})
		}
	}
}

// scanSenderInbox logs in, searches for unseen mail, and marks the
// matching enrollment(s) completed for any sender whose From address
// matches an active enrollment's recipient, following
// fetchFromIMAP's connect/search/fetch shape.
func (w *ReplyWatcher) scanSenderInbox(sender models.Sender) error {
	password, err := utils.Decrypt(sender.IMAPPassword)
	if err != nil {
		return fmt.Errorf("decrypt imap password: %w", err)
	}

	imapAddr := fmt.Sprintf("%s:%d", sender.IMAPHost, sender.IMAPPort)
	cl, err := client.DialTLS(imapAddr, &tls.Config{ServerName: sender.IMAPHost})
	if err != nil {
		return fmt.Errorf("dial imap: %w", err)
	}
	defer cl.Logout()

	if err := cl.Login(sender.IMAPUsername, password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}

	mailbox := sender.IMAPMailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := cl.Select(mailbox, false); err != nil {
		return fmt.Errorf("select mailbox: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{"\\Seen"}
	ids, err := cl.Search(criteria)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- cl.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages)
	}()

	for msg := range messages {
		w.handleMessage(sender, msg)
	}
	return <-done
}

func (w *ReplyWatcher) handleMessage(sender models.Sender, msg *imap.Message) {
	if msg.Envelope == nil || len(msg.Envelope.From) == 0 {
		return
	}
	from := msg.Envelope.From[0]
	fromEmail := strings.ToLower(fmt.Sprintf("%s@%s", from.MailboxName, from.HostName))

	var recipient models.Recipient
	if err := w.db.Where("LOWER(email) = ?", fromEmail).First(&recipient).Error; err != nil {
		return
	}

	var enrollments []models.Enrollment
	if err := w.db.Joins("JOIN sequences ON sequences.id = enrollments.sequence_id").
		Where("enrollments.recipient_id = ? AND sequences.sender_email = ? AND enrollments.status IN ?",
			recipient.ID, sender.FromEmail, []models.EnrollmentStatus{models.EnrollmentPending, models.EnrollmentWaiting}).
		Find(&enrollments).Error; err != nil {
		utils.LogError("reply_watcher_find_enrollments", err, map[string]interface{}{"recipient_id": recipient.ID})
		return
	}

	for _, e := range enrollments {
		result := w.db.Model(&models.Enrollment{}).
			Where("id = ? AND version = ?", e.ID, e.Version).
			Updates(map[string]interface{}{"status": models.EnrollmentCompleted, "version": e.Version + 1})
		if result.Error != nil {
			utils.LogError("reply_watcher_complete_enrollment", result.Error, map[string]interface{}{"enrollment_id": e.ID})
			continue
		}
		if result.RowsAffected == 0 {
			// Scheduler claimed this enrollment between our select and
			// update; let it run its own step rather than racing it.
			continue
		}
		w.db.Create(&models.LogEntry{
			EnrollmentID: e.ID,
			StepIndex:    e.StepIndex,
			Kind:         "reply_detected",
			Outcome:      "completed",
			Detail:       map[string]string{"from": fromEmail},
		})
	}
}
