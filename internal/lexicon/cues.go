package lexicon

import "strings"

// Markers embedded in assistant replies and recognized in later turns.
const (
	// OfferPrompt is appended when the assistant offers to draft a report
	// about a problem mentioned earlier.
	OfferPrompt = "Shall I draft a report about it?"
	// SubmittedMarker closes a topic after a report was sent.
	SubmittedMarker = "your report has been submitted"
	// DiscardedMarker closes a topic after a draft was cancelled.
	DiscardedMarker = "your draft has been discarded"
	// ReviewPrompt ends a draft preview. A bare "yes" only approves the
	// draft when it answers this prompt.
	ReviewPrompt = "Is everything correct?"
)

// ConfirmCues approve a pending draft for sending.
var ConfirmCues = Phrases(
	"send it", "send the report", "send the draft", "send my report", "submit", "submit it",
	"go ahead", "looks good", "look good", "looks fine", "looks right", "looks correct",
	"that's correct", "that is correct", "all correct", "confirm", "confirmed", "create it",
	"create the report", "submit the report", "proceed", "do it",
	"kirim", "kirimkan", "lanjut", "lanjutkan", "setuju", "sudah benar",
)

// CancelCues abandon a pending draft.
var CancelCues = Phrases(
	"cancel", "cancel it", "never mind", "nevermind", "forget it", "forget about it", "discard",
	"discard it", "delete the draft", "delete it", "scrap it", "drop it", "abort",
	"batal", "batalkan", "tidak jadi", "gak jadi", "nggak jadi", "ga jadi",
)

// negators turn a following confirmation cue into its opposite.
var negators = Phrases(
	"don't", "dont", "do not", "not", "never", "no", "can't", "cannot", "won't", "shouldn't",
	"before", "until", "wait", "jangan", "belum",
)

// negatorWindow is how many words before a cue are searched for a negator.
const negatorWindow = 4

var approval = CompilePatterns(
	`^(?:yes|yeah|yep|yup|yes please|ya|iya|boleh)(?:[ ,]+(?:please|send it|do it|go ahead))?[.!]*$`,
)

var affirmative = CompilePatterns(
	`^(?:yes|yeah|yep|yup|sure|ok|okay|alright|please do|yes please|ya|iya|oke|boleh|sip)(?:[ ,]+(?:please|do it|sure))?[.!]*$`,
)

var acknowledgment = CompilePatterns(
	`^(?:yes|yeah|yep|yup|sure|ok|okay|alright|fine|great|cool|nice|noted|thanks|thank you|thx|ty|ya|iya|oke|sip|makasih|terima kasih)(?:[ ,]+(?:thanks|thank you|so much|a lot|very much|then))*[.!]*$`,
)

// IsCancellation reports whether text abandons a draft.
func IsCancellation(text string) bool {
	return CancelCues.Match(text)
}

// IsConfirmation reports whether text contains a confirmation cue that is
// not negated within its clause. "send it" confirms, "don't send it" and
// "wait until I check before you submit it" do not.
func IsConfirmation(text string) bool {
	text = Normalize(text)
	for _, span := range ConfirmCues.Indexes(text) {
		if !negated(text[:span[0]]) {
			return true
		}
	}
	return false
}

// negated reports whether the clause ending at prefix carries a negator in
// its last few words.
func negated(prefix string) bool {
	if i := strings.LastIndexAny(prefix, ",.;:!?"); i >= 0 {
		prefix = prefix[i+1:]
	}
	words := strings.Fields(prefix)
	if len(words) > negatorWindow {
		words = words[len(words)-negatorWindow:]
	}
	return negators.Match(strings.Join(words, " "))
}

// IsApproval reports whether text is a bare "yes" that can answer ReviewPrompt.
// Looser acknowledgments such as "ok" or "sure" are not approvals.
func IsApproval(text string) bool {
	return approval.Match(Normalize(text))
}

// IsAffirmative reports whether text is a bare "yes" style answer.
func IsAffirmative(text string) bool {
	return affirmative.Match(text)
}

// IsAcknowledgment reports whether text is a bare closing remark such as
// "ok" or "thanks".
func IsAcknowledgment(text string) bool {
	return acknowledgment.Match(text)
}

// AskedForReview reports whether an assistant reply was a draft preview
// waiting for approval.
func AskedForReview(assistantText string) bool {
	return strings.Contains(Normalize(assistantText), Normalize(ReviewPrompt))
}

// OfferedDraft reports whether an assistant reply offered to draft a report.
func OfferedDraft(assistantText string) bool {
	return strings.Contains(Normalize(assistantText), Normalize(OfferPrompt))
}

// ClosesTopic reports whether an assistant reply ended the previous report topic.
func ClosesTopic(assistantText string) bool {
	t := Normalize(assistantText)
	return strings.Contains(t, SubmittedMarker) || strings.Contains(t, DiscardedMarker)
}
