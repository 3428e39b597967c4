// Package signature composes a sender's active signature into an
// outgoing message, deriving a plain-text rendition from the stored
// HTML the way signature_manager.extract_text_from_html did with
// BeautifulSoup — reimplemented here on golang.org/x/net/html's
// streaming tokenizer since no HTML parsing library ships in the
// standard library.
package signature

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
	"gorm.io/gorm"

	"github.com/outreachhq/sequencer/models"
)

var ErrNoDefaultSignature = errors.New("signature: no default signature for sender")

// blockTags forces a newline so extracted text doesn't run adjacent
// block elements together, mirroring get_text(separator='\n').
var blockTags = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "tr": {}, "li": {},
	"table": {}, "h1": {}, "h2": {}, "h3": {}, "h4": {},
}

// ExtractPlainText converts an HTML signature body to plain text,
// collapsing whitespace and joining block-level elements with
// newlines the way BeautifulSoup's get_text(separator='\n',
// strip=True) does. Malformed HTML degrades to the best-effort text
// the tokenizer could recover rather than erroring, since a signature
// with a stray unclosed tag should never block a send.
func ExtractPlainText(htmlBody string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlBody))
	var b strings.Builder

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.TextToken:
			text := strings.Join(strings.Fields(string(tokenizer.Text())), " ")
			if text != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(text)
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name := tokenizer.Token().Data
			if _, ok := blockTags[name]; ok && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

// Store resolves a sender's active or default signature.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ForSender returns the sender's ActiveSignatureID row if set,
// otherwise the sender's default signature, mirroring
// signature_manager's "explicit choice, else get_default_signature"
// fallback.
func (s *Store) ForSender(sender *models.Sender) (*models.Signature, error) {
	var sig models.Signature

	if sender.ActiveSignatureID != nil {
		if err := s.db.First(&sig, *sender.ActiveSignatureID).Error; err == nil {
			return &sig, nil
		}
	}

	err := s.db.Where("sender_id = ? AND is_default = ?", sender.ID, true).First(&sig).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDefaultSignature
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

// SetDefault marks signatureID as the sender's one default signature,
// unsetting any previous default first (signature_manager.save_signature's
// "if is_default: UPDATE signatures SET is_default = 0" pattern).
func (s *Store) SetDefault(senderID, signatureID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Signature{}).
			Where("sender_id = ?", senderID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.Signature{}).
			Where("id = ? AND sender_id = ?", signatureID, senderID).
			Update("is_default", true).Error
	})
}

// Compose appends the signature body to a rendered message, in HTML
// or plain text depending on which the channel needs. A nil signature
// leaves the body untouched.
func Compose(body string, sig *models.Signature, plain bool) string {
	if sig == nil {
		return body
	}
	if plain {
		text := sig.PlainBody
		if text == "" {
			text = ExtractPlainText(sig.HTMLBody)
		}
		return body + "\n\n--\n" + text
	}
	return body + "<br><br>" + sig.HTMLBody
}
