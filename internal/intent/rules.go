package intent

import (
	"strings"

	"github.com/civic-report/report-assistant/internal/lexicon"
)

// Rule names, in evaluation order.
const (
	RuleCapabilityQuestion = "capability_question"
	RulePreviewRequest     = "preview_request"
	RuleNegation           = "negation"
	RuleGenericQuestion    = "generic_question"
	RuleCreateReport       = "create_report"
	RuleCheckStatus        = "check_status"
	RuleAskStats           = "ask_stats"
	RuleAskFaq             = "ask_faq"
)

// faultGap is how far apart a problem noun and a fault word may be, in bytes.
const faultGap = 40

// minHeuristicLength is the shortest utterance the location heuristic accepts.
const minHeuristicLength = 15

// minNounWords is the shortest statement a bare problem noun makes a report.
const minNounWords = 3

var capabilityPatterns = lexicon.CompilePatterns(
	`^(?:can|could|will|would) you (?:really |also |actually )?(?:create|make|file|submit|write|generate|draft|send|do|understand|speak|remember|track|read|process|automatically)\b`,
	`^(?:are you able to|is it possible|is it possible to|are you allowed to)\b`,
	`^(?:what|which) (?:else )?(?:can|do|could) you (?:do|help|offer|handle)\b`,
	`^(?:what|who) are you\b`,
	`^are you (?:a bot|a robot|human|an ai|real|a person)\b`,
	`^do you (?:support|know|have|understand|speak|handle|accept|create|make)\b`,
	`\bwhat are your (?:capabilities|features|functions)\b`,
	`^(?:apa yang bisa kamu|bisakah kamu|apakah kamu bisa|kamu bisa apa)\b`,
)

var previewPatterns = lexicon.CompilePatterns(
	`\blet me (?:review|check|see|look at|read) (?:it|the (?:draft|report)|that)?\s*(?:first|before)`,
	`\b(?:review|check) (?:it |the draft |the report )?first\b`,
	`\b(?:wait|hold) (?:for|on) (?:my|an?) (?:approval|confirmation|ok|go-ahead)\b`,
	`\bshow me (?:the|my) (?:draft|report)\b`,
	`\b(?:preview|draft) (?:it|the report) first\b`,
	`\bdon't send (?:it |anything )?yet\b`,
	`\bdo not send (?:it |anything )?yet\b`,
	`\bbefore (?:you )?(?:send|submit)\b`,
	`\bpreview\b`,
	`\b(?:lihat dulu|cek dulu|jangan kirim dulu)\b`,
)

var negationPatterns = lexicon.CompilePatterns(
	`\bi (?:didn't|did not|never) (?:ask|say|want|request|mean|tell)\b`,
	`\b(?:that's|that is|this is|it's|it is) not what i\b`,
	`\bnot yet\b`,
	`\bi (?:don't|do not) want (?:a|any|to|you|that|this)\b`,
	`\b(?:don'?t|do not) (?:create|make|file|submit|write|draft|send|do|confirm)\b`,
	`^no,? (?:i|that's|that is|it's) (?:didn't|did not|don't|do not|not|wasn't|was not)\b`,
	`\bstop (?:creating|making|drafting)\b`,
	`\bi was (?:just )?(?:asking|wondering|curious)\b`,
	`\bjust (?:asking|curious|wondering)\b`,
	`\b(?:jangan buat|bukan itu|tidak minta|gak minta|nggak minta|belum mau)\b`,
)

// DefaultRules returns the rule table. Capability and negation checks come
// before report creation so questions about the assistant and retractions are
// never read as a request to open a report.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleCapabilityQuestion, Intent: AskCapability, Match: matchCapability},
		{Name: RulePreviewRequest, Intent: PreviewReport, Match: matchPreview},
		{Name: RuleNegation, Intent: Negation, Match: matchNegation},
		{Name: RuleGenericQuestion, Intent: AskCapability, Match: matchGenericQuestion},
		{Name: RuleCreateReport, Intent: CreateReport, Match: matchCreateReport},
		{Name: RuleCheckStatus, Intent: CheckStatus, Match: keywordRule(lexicon.StatusCues, 0.8)},
		{Name: RuleAskStats, Intent: AskStats, Match: keywordRule(lexicon.StatsCues, 0.8)},
		{Name: RuleAskFaq, Intent: AskFaq, Match: keywordRule(lexicon.FAQCues, 0.75)},
	}
}

func matchCapability(u Utterance) (float64, bool) {
	return 0.95, capabilityPatterns.Match(u.Text)
}

func matchPreview(u Utterance) (float64, bool) {
	return 0.9, previewPatterns.Match(u.Text)
}

// IsNegation reports whether text retracts or denies a request. An explicit
// cancellation is not a negation; it is handled as a draft command.
func IsNegation(text string) bool {
	return negationPatterns.Match(text) && !lexicon.IsCancellation(text)
}

func matchNegation(u Utterance) (float64, bool) {
	return 0.9, IsNegation(u.Text)
}

// informational reports whether the text carries a status, stats or FAQ cue.
func informational(text string) bool {
	return lexicon.StatusCues.Match(text) || lexicon.StatsCues.Match(text) || lexicon.FAQCues.Match(text)
}

// matchGenericQuestion catches how-to and capability questions that mention no
// concrete problem. Questions about status, stats or the FAQ fall through to
// their own rules.
func matchGenericQuestion(u Utterance) (float64, bool) {
	if !lexicon.Interrogatives.HasPrefix(u.Text) {
		return 0, false
	}
	if lexicon.HasProblem(u.Text) || informational(u.Text) {
		return 0, false
	}
	return 0.8, true
}

// matchCreateReport accepts an explicit trigger phrase, a problem noun next to
// a fault word, a longer message that names a place and a problem or request,
// or a plain statement about a problem noun.
func matchCreateReport(u Utterance) (float64, bool) {
	text := u.Text
	if capabilityPatterns.Match(text) || negationPatterns.Match(text) || lexicon.IsCancellation(text) {
		return 0, false
	}
	problem := lexicon.HasProblem(text)
	trigger := lexicon.ReportTriggers.Match(text)
	if lexicon.Interrogatives.HasPrefix(text) && !problem {
		return 0, false
	}
	// "has the broken lamp been fixed yet?" asks about an existing report.
	if lexicon.StatusCues.Match(text) && !trigger {
		return 0, false
	}

	switch {
	case trigger:
		return 0.9, true
	case lexicon.ProblemPhrases.Match(text):
		return 0.9, true
	case lexicon.NounNearFault(text, faultGap):
		return 0.85, true
	case u.Len() > minHeuristicLength && lexicon.LocationCues.Match(text) &&
		(problem || lexicon.RequestWords.Match(text)):
		return 0.7, true
	case problem && statement(u) && len(strings.Fields(text)) >= minNounWords:
		return 0.6, true
	}
	return 0, false
}

// statement reports whether u is declarative: no question shape and no thanks.
func statement(u Utterance) bool {
	if lexicon.Interrogatives.HasPrefix(u.Text) || strings.HasSuffix(u.Text, "?") {
		return false
	}
	return !lexicon.Gratitude.Match(u.Text) && !lexicon.IsAcknowledgment(u.Text)
}

func keywordRule(set *lexicon.Set, confidence float64) func(Utterance) (float64, bool) {
	return func(u Utterance) (float64, bool) {
		return confidence, set.Match(u.Text)
	}
}
