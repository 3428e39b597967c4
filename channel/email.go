package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	"golang.org/x/oauth2"
	"gopkg.in/gomail.v2"
)

// EmailAdapter sends via SMTP using gomail, the same dialer WarmupMailer
// uses. Unlike WarmupMailer it never retries internally — retry is the
// Scheduler's job — it only classifies the single attempt's outcome.
type EmailAdapter struct {
	// TokenSource, when non-nil, is consulted for senders configured
	// with OAuth instead of a static SMTP password, mirroring
	// auth_controller.go's oauth2/google token refresh flow.
	TokenSource func(senderID uint) (oauth2.TokenSource, error)
}

func (a *EmailAdapter) Dispatch(ctx context.Context, msg Message) Result {
	password := msg.SenderCtx.SMTPPassword
	if a.TokenSource != nil {
		if ts, err := a.TokenSource(msg.SenderCtx.SenderID); err == nil && ts != nil {
			token, err := ts.Token()
			if err != nil {
				return transient(fmt.Sprintf("oauth token refresh failed: %v", err))
			}
			password = token.AccessToken
		}
	}

	dialer := gomail.NewDialer(msg.SenderCtx.SMTPHost, msg.SenderCtx.SMTPPort, msg.SenderCtx.SMTPUsername, password)
	dialer.TLSConfig = &tls.Config{ServerName: msg.SenderCtx.SMTPHost}
	if msg.SenderCtx.Encryption == "ssl" {
		dialer.SSL = true
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.FromEmail)
	m.SetHeader("To", msg.ToEmail)
	m.SetHeader("Subject", msg.Subject)
	if msg.PlainBody != "" {
		m.SetBody("text/plain", msg.PlainBody)
		m.AddAlternative("text/html", msg.RichBody)
	} else {
		m.SetBody("text/html", msg.RichBody)
	}

	done := make(chan error, 1)
	go func() { done <- dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		return transient("deadline exceeded")
	case err := <-done:
		if err == nil {
			return sent("", nil)
		}
		if isPermanentSMTPError(err) {
			return permanent(err.Error())
		}
		return transient(err.Error())
	}
}

// isPermanentSMTPError classifies an SMTP send failure using the
// opposite test WarmupMailer.isTemporaryError applies: anything that
// isn't recognizably transient is treated as permanent only when it
// carries a clear 5xx-class SMTP reply code or a well-known
// unrecoverable condition (bad address, auth rejected).
func isPermanentSMTPError(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Temporary() {
		return false
	}

	lower := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"550", "551", "553", "554", // SMTP permanent failure codes
		"no such user", "mailbox unavailable", "user unknown",
		"authentication failed", "relay access denied",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
