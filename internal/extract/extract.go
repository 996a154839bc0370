// Package extract turns free-form report text into structured report fields.
//
// Extraction is deterministic. An optional Titler may supply a better title,
// but every other field comes from keyword tables and location patterns.
package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/lexicon"
	"github.com/civic-report/report-assistant/internal/model"
)

const (
	// DefaultContextTurns is how far back the history fold looks.
	DefaultContextTurns = 5
	// maxFoldedTurns caps how many earlier problem descriptions are folded in.
	maxFoldedTurns = 2
	// titleSeparator joins the problem phrase and the location in a title.
	titleSeparator = " — "
)

// Titler produces a short title for report text.
type Titler interface {
	Available() bool
	Summarize(ctx context.Context, text string) (string, error)
}

// Analysis is the result of extracting fields from one utterance.
type Analysis struct {
	Fields model.ReportFields
	// Source is the text the fields were extracted from.
	Source string
	// HasProblem is true when Source names a recognizable problem.
	HasProblem bool
	// LocationFound is true when the location came from Source rather than a fallback.
	LocationFound bool
	// UsedHistory is true when earlier turns were folded into Source.
	UsedHistory bool
	// Underflow is true when Source has too little to draft from.
	Underflow bool
}

// Extractor extracts report fields, optionally asking a Titler for the title.
type Extractor struct {
	titler       Titler
	logger       *zap.Logger
	contextTurns int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTitler sets the title generator.
func WithTitler(t Titler) Option {
	return func(e *Extractor) { e.titler = t }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithContextTurns sets how many prior turns the history fold inspects.
func WithContextTurns(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.contextTurns = n
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger:       zap.NewNop(),
		contextTurns: DefaultContextTurns,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze extracts fields without a Titler.
func Analyze(utterance string, history []model.ConversationTurn, areaLabel string) Analysis {
	return analyze(utterance, history, areaLabel, DefaultContextTurns)
}

// Extract analyzes utterance in the context of history and, when a Titler is
// available and returns a usable title, replaces the synthesized title.
func (e *Extractor) Extract(ctx context.Context, utterance string, history []model.ConversationTurn, areaLabel string) Analysis {
	a := analyze(utterance, history, areaLabel, e.contextTurns)
	if a.Underflow || e.titler == nil || !e.titler.Available() {
		return a
	}

	title, err := e.titler.Summarize(ctx, a.Source)
	if err != nil {
		e.logger.Warn("title generation failed, using synthesized title", zap.Error(err))
		return a
	}
	if t, ok := cleanTitle(title); ok {
		a.Fields.Title = t
	}
	return a
}

func analyze(utterance string, history []model.ConversationTurn, areaLabel string, contextTurns int) Analysis {
	source, usedHistory := candidateText(utterance, history, contextTurns)
	norm := lexicon.Normalize(source)

	a := Analysis{
		Source:      source,
		HasProblem:  lexicon.HasProblem(norm),
		UsedHistory: usedHistory,
	}

	place, found := FindPlace(norm)
	a.LocationFound = found
	a.Underflow = !a.HasProblem && !a.LocationFound

	problem := ProblemTitle(norm)
	if problem == "" {
		problem = genericProblem
	}
	title, location := problem, place.Location
	if found {
		title += titleSeparator + place.Name
	} else if label := strings.TrimSpace(areaLabel); label != "" {
		location = label
	} else {
		location = NoLocation
	}

	a.Fields = model.ReportFields{
		Title:       model.TruncateRunes(title, model.MaxTitleLength, ""),
		Description: model.TruncateRunes(cleanText(source), model.MaxDescriptionLength, "..."),
		Location:    location,
		Category:    DetectCategory(norm),
		Urgency:     DetectUrgency(norm),
	}
	return a
}

// candidateText folds earlier problem descriptions into utterance when it only
// refers back to them ("create the report", "yes").
func candidateText(utterance string, history []model.ConversationTurn, contextTurns int) (string, bool) {
	norm := lexicon.Normalize(utterance)
	if lexicon.HasProblem(norm) {
		return utterance, false
	}
	affirmative := lexicon.IsAffirmative(norm)
	if !affirmative && !lexicon.ContinuationTriggers.Match(norm) && !lexicon.ReportTriggers.Match(norm) {
		return utterance, false
	}

	prior := problemTurns(history, contextTurns)
	if len(prior) == 0 {
		return utterance, false
	}
	if !affirmative {
		prior = append(prior, utterance)
	}
	return strings.Join(prior, " "), true
}

// problemTurns returns up to maxFoldedTurns problem-bearing user turns from the
// tail of history, oldest first. It stops at a reply that closed a topic.
func problemTurns(history []model.ConversationTurn, contextTurns int) []string {
	var found []string
	for i, seen := len(history)-1, 0; i >= 0 && seen < contextTurns; i, seen = i-1, seen+1 {
		turn := history[i]
		if turn.Role == model.RoleAssistant && lexicon.ClosesTopic(turn.Content) {
			break
		}
		if turn.Role != model.RoleUser || !lexicon.HasProblem(lexicon.Normalize(turn.Content)) {
			continue
		}
		found = append(found, strings.TrimSpace(turn.Content))
		if len(found) == maxFoldedTurns {
			break
		}
	}
	for i, j := 0, len(found)-1; i < j; i, j = i+1, j-1 {
		found[i], found[j] = found[j], found[i]
	}
	return found
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanTitle accepts a generated title only if it is a single short line.
func cleanTitle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "\r\n") {
		return "", false
	}
	s = strings.Trim(s, `"'*# `)
	n := len([]rune(s))
	if n <= 3 || n > model.MaxTitleLength {
		return "", false
	}
	return s, true
}
