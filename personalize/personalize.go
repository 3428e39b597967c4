// Package personalize derives the variables that give an email its
// personalized edge — an opener sentence, a pain statement, a
// credibility anchor — in one of three modes, grounded on the
// validation discipline of personalization_engine.py's
// validate_personalization: every AI-generated sentence is length-
// and banned-phrase-checked before it reaches a template.
package personalize

import (
	"context"
	"strings"

	"github.com/outreachhq/sequencer/models"
	"github.com/outreachhq/sequencer/utils"
)

// Variables is the derived-variable mapping merged into the template
// variable bag ahead of rendering.
type Variables struct {
	PersonalizationSentence string
	PainStatement           string
	CredibilityAnchor       string
}

// AsMap flattens Variables into the template variable bag's
// string->string namespace.
func (v Variables) AsMap() map[string]string {
	return map[string]string{
		"personalization_sentence": v.PersonalizationSentence,
		"pain_statement":           v.PainStatement,
		"credibility_anchor":       v.CredibilityAnchor,
	}
}

// Result is the Personalizer's output for one step: the derived
// variables plus, for fully_personalized only, a full replacement body
// that supersedes the step's own template body.
type Result struct {
	Variables       Variables
	ReplacementBody *string
}

// Completer is the external AI call the fully_personalized and
// opener_only modes depend on. Production wiring points this at the
// operator's configured completion endpoint; tests supply a stub.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Personalizer evaluates a recipient against the active mode.
type Personalizer struct {
	completer Completer
	library   map[string]map[string]Variables // industry -> strongest signal -> library entry
}

func New(completer Completer) *Personalizer {
	return &Personalizer{
		completer: completer,
		library:   defaultLibrary(),
	}
}

// Personalize produces the variable bag for mode against recipient.
// AI-call failures never abort the step: they degrade to an
// empty-string Variables with a logged marker.
func (p *Personalizer) Personalize(ctx context.Context, recipient *models.Recipient, mode models.PersonalizationMode, promptTemplate string) Result {
	switch mode {
	case models.ModeSignalBased:
		return Result{Variables: p.signalBased(recipient)}
	case models.ModeFullyPersonalized:
		return p.aiGenerated(ctx, recipient, promptTemplate, true)
	case models.ModeOpenerOnly:
		return p.aiGenerated(ctx, recipient, promptTemplate, false)
	default:
		return Result{}
	}
}

// signalBased looks up a fixed library entry keyed by industry and the
// recipient's strongest signal, deterministically and with no external
// call. Recipients outside the library degrade to an empty entry.
func (p *Personalizer) signalBased(recipient *models.Recipient) Variables {
	industry := strings.ToLower(strings.TrimSpace(recipient.Industry))
	signal := strongestSignal(recipient)

	byIndustry, ok := p.library[industry]
	if !ok {
		return Variables{}
	}
	entry, ok := byIndustry[signal]
	if !ok {
		return Variables{}
	}
	return entry
}

// strongestSignal picks the most specific attribute-derived signal
// available on a recipient, preferring explicit signal attrs over a
// generic fallback, in the same spirit as signal-weighted lead
// scoring without replicating an ML model.
func strongestSignal(recipient *models.Recipient) string {
	if recipient.Attrs == nil {
		return "default"
	}
	for _, key := range []string{"intent_score_tier", "job_postings_signal", "equipment_signal"} {
		if v, ok := recipient.Attrs[key]; ok && v != "" {
			return key
		}
	}
	return "default"
}

// aiGenerated drives the fully_personalized and opener_only modes. A
// completion failure or a validation failure both degrade to an empty
// Variables rather than aborting the step, each logged with a distinct
// marker so operators can tell "AI unreachable" from "AI produced junk".
func (p *Personalizer) aiGenerated(ctx context.Context, recipient *models.Recipient, prompt string, fullBody bool) Result {
	if p.completer == nil {
		utils.LogEvent("personalization_degraded", map[string]interface{}{
			"recipient_id": recipient.ID,
			"reason":       "no_completer_configured",
		})
		return Result{}
	}

	text, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		utils.LogEvent("personalization_degraded", map[string]interface{}{
			"recipient_id": recipient.ID,
			"reason":       "completion_error",
			"error":        err.Error(),
		})
		return Result{}
	}

	text = strings.TrimSpace(text)
	if issues := Validate(text); len(issues) > 0 {
		utils.LogEvent("personalization_degraded", map[string]interface{}{
			"recipient_id": recipient.ID,
			"reason":       "validation_failed",
			"issues":       issues,
		})
		return Result{}
	}

	if fullBody {
		body := text
		return Result{ReplacementBody: &body}
	}
	return Result{Variables: Variables{PersonalizationSentence: text}}
}

// bannedPhrases are openers that read as generic AI filler rather than
// researched personalization, ported from
// personalization_engine.py's validate_personalization.
var bannedPhrases = []string{
	"i noticed",
	"i saw",
	"i came across",
	"your team",
	"your operation",
	"your company",
	"after researching",
}

// Validate checks a generated sentence against the length and
// banned-phrase rules personalization_engine.py enforces (10-30 words,
// no generic-AI-filler openers), returning every issue found rather
// than stopping at the first.
func Validate(sentence string) []string {
	var issues []string

	wordCount := len(strings.Fields(sentence))
	switch {
	case wordCount < 10:
		issues = append(issues, "too short")
	case wordCount > 30:
		issues = append(issues, "too long")
	}

	lower := strings.ToLower(sentence)
	for _, phrase := range bannedPhrases {
		if strings.Contains(lower, phrase) {
			issues = append(issues, "contains banned phrase: "+phrase)
		}
	}

	return issues
}
