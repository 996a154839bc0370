// Package intent classifies chat utterances with an ordered table of
// keyword and pattern rules. The first matching rule wins.
package intent

import (
	"unicode/utf8"

	"github.com/civic-report/report-assistant/internal/lexicon"
)

// Intent is the purpose of a chat turn.
type Intent string

const (
	CreateReport  Intent = "create_report"
	CheckStatus   Intent = "check_status"
	AskStats      Intent = "ask_stats"
	AskCapability Intent = "ask_capability"
	Negation      Intent = "negation"
	PreviewReport Intent = "preview_report"
	AskFaq        Intent = "ask_faq"
	General       Intent = "general"
)

// Informational reports whether the intent is answered without touching drafts.
func (i Intent) Informational() bool {
	switch i {
	case AskCapability, Negation, AskStats, CheckStatus, AskFaq:
		return true
	}
	return false
}

// Result is the outcome of classifying one utterance.
// Confidence is for logging and metrics only.
type Result struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Rule       string  `json:"rule"`
}

// Utterance is a normalized chat message ready for matching.
type Utterance struct {
	Raw  string
	Text string
}

// NewUtterance normalizes raw text.
func NewUtterance(raw string) Utterance {
	return Utterance{Raw: raw, Text: lexicon.Normalize(raw)}
}

// Len returns the length of the normalized text in characters.
func (u Utterance) Len() int {
	return utf8.RuneCountInString(u.Text)
}

// Rule maps a predicate to an intent. Match returns the confidence when it applies.
type Rule struct {
	Name   string
	Intent Intent
	Match  func(u Utterance) (float64, bool)
}

// Classifier evaluates rules top to bottom.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the default rule table.
func New() *Classifier {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates a classifier with a custom rule table.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the intent of the first matching rule, or General.
func (c *Classifier) Classify(text string) Result {
	u := NewUtterance(text)
	if u.Text == "" {
		return Result{Intent: General, Confidence: 0.1, Rule: "empty"}
	}
	for _, r := range c.rules {
		if conf, ok := r.Match(u); ok {
			return Result{Intent: r.Intent, Confidence: conf, Rule: r.Name}
		}
	}
	return Result{Intent: General, Confidence: generalConfidence(u), Rule: "default"}
}

var defaultClassifier = New()

// Classify classifies text with the default rule table.
func Classify(text string) Result {
	return defaultClassifier.Classify(text)
}

// generalConfidence grows with length: a two-word remark is a weak signal.
func generalConfidence(u Utterance) float64 {
	n := u.Len()
	switch {
	case n <= 3:
		return 0.2
	case n <= 15:
		return 0.35
	case n <= 60:
		return 0.5
	default:
		return 0.6
	}
}
