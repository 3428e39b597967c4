package signature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outreachhq/sequencer/models"
)

func TestExtractPlainText_StripsTagsAndJoinsBlocks(t *testing.T) {
	html := `<div>Jane Doe</div><div>VP Sales</div><p>Acme Corp</p>`
	text := ExtractPlainText(html)
	assert.Equal(t, "Jane Doe\nVP Sales\nAcme Corp", text)
}

func TestExtractPlainText_CollapsesWhitespaceWithinText(t *testing.T) {
	html := `<p>  Jane   Doe  </p>`
	text := ExtractPlainText(html)
	assert.Equal(t, "Jane Doe", text)
}

func TestExtractPlainText_HandlesUnclosedTagsGracefully(t *testing.T) {
	html := `<div>Jane Doe<br>VP Sales`
	text := ExtractPlainText(html)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "VP Sales")
}

func TestExtractPlainText_EmptyInputReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", ExtractPlainText(""))
}

func TestCompose_NilSignatureLeavesBodyUnchanged(t *testing.T) {
	assert.Equal(t, "hello", Compose("hello", nil, true))
}

func TestCompose_PlainUsesStoredPlainBodyWhenPresent(t *testing.T) {
	sig := &models.Signature{PlainBody: "Jane Doe\nVP Sales", HTMLBody: "<p>ignored</p>"}
	out := Compose("hello", sig, true)
	assert.Equal(t, "hello\n\n--\nJane Doe\nVP Sales", out)
}

func TestCompose_PlainFallsBackToExtractedTextWhenPlainBodyMissing(t *testing.T) {
	sig := &models.Signature{HTMLBody: "<p>Jane Doe</p>"}
	out := Compose("hello", sig, true)
	assert.Equal(t, "hello\n\n--\nJane Doe", out)
}

func TestCompose_HTMLAppendsHTMLBody(t *testing.T) {
	sig := &models.Signature{HTMLBody: "<p>Jane Doe</p>"}
	out := Compose("<p>hi</p>", sig, false)
	assert.Equal(t, "<p>hi</p><br><br><p>Jane Doe</p>", out)
}
