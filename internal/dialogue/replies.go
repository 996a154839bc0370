package dialogue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/civic-report/report-assistant/internal/lexicon"
	"github.com/civic-report/report-assistant/internal/model"
)

const (
	helpMenu = "I can help you report a problem in your neighbourhood, such as a broken street lamp, " +
		"a clogged drain, a fallen tree, garbage or noise. Just describe what happened and where. " +
		"I can also check the status of your reports, show report statistics for your area, " +
		"and answer questions about how reporting works."

	capabilityReply = "I turn your description of a local problem into a report draft. " +
		"You always see the draft first, and nothing is sent until you say \"send it\". " +
		"I can also check the status of your reports and show statistics for your area."

	clarifyReply = "I'd like to help you report it. What is the problem, and where is it? " +
		"For example: \"the street lamp at Block C is dead\"."

	closingReply = "You're welcome! Let me know if there is anything else you'd like to report."

	nothingToSendReply = "There's nothing to send yet. Describe the problem and where it is, " +
		"and I'll prepare a draft for you to review."

	nothingToCancelReply = "There's no draft to cancel. Let me know if there's a problem you'd like to report."

	cancelledReply = "Okay, your draft has been discarded. Nothing was sent."

	negationIdleReply = "Understood, I won't create anything. Let me know if there's a problem you'd like to report."

	negationPendingReply = "Understood, I won't send anything. Your draft is kept for now: " +
		"say \"send it\" when you're ready, or \"cancel\" to discard it."

	previewIdleReply = "There's no draft yet. Whenever you describe a problem I show you the draft first, " +
		"and nothing is sent until you approve it."

	pendingReminder = "You still have a draft waiting for review. Say \"send it\" to submit it or \"cancel\" to discard it."

	retryReply = "Sorry, something went wrong on my side. Please try again in a moment."

	createFailedReply = "I couldn't send your report just now, please try again. Your draft is still saved, " +
		"so you can simply say \"send it\" again."

	statusUnavailableReply = "I can't look up your reports right now, please try again later."

	statsUnavailableReply = "I can't load report statistics right now, please try again later."
)

type faqEntry struct {
	cues   *lexicon.Set
	answer string
}

var faqEntries = []faqEntry{
	{
		cues: lexicon.Phrases("how do i report", "how to report", "how does it work", "how does this work",
			"cara lapor", "cara melapor"),
		answer: "Just tell me what the problem is and where it is. I'll prepare a draft with a title, " +
			"location, category and urgency, show it to you, and send it only after you confirm.",
	},
	{
		cues: lexicon.Phrases("what happens after", "what happens next", "who handles", "who will handle"),
		answer: "Once you confirm, your report is sent to the department responsible for its category " +
			"(infrastructure, social, administrative or aid). You can ask me for its status at any time.",
	},
	{
		cues:   lexicon.Phrases("how long", "berapa lama"),
		answer: "Most reports are reviewed within a few working days. Urgent reports are prioritised.",
	},
	{
		cues: lexicon.Phrases("anonymous", "privacy"),
		answer: "Your report is linked to your account so officers can follow up with you, " +
			"but your personal details are not shown publicly.",
	},
}

func faqAnswer(text string) string {
	for _, e := range faqEntries {
		if e.cues.Match(text) {
			return e.answer
		}
	}
	return helpMenu
}

func draftPreview(d *model.Draft, replaced bool, ttlMinutes int) string {
	var b strings.Builder
	if replaced {
		b.WriteString("I've updated your draft:\n\n")
	} else {
		b.WriteString("Here's a draft of your report:\n\n")
	}
	fmt.Fprintf(&b, "Title: %s\n", d.Fields.Title)
	fmt.Fprintf(&b, "Location: %s\n", d.Fields.Location)
	fmt.Fprintf(&b, "Category: %s\n", d.Fields.Category)
	fmt.Fprintf(&b, "Urgency: %s\n\n", d.Fields.Urgency)
	fmt.Fprintf(&b, "%s Say \"send it\" to submit it, or \"cancel\" to discard it. The draft is kept for %d minutes.",
		lexicon.ReviewPrompt, ttlMinutes)
	return b.String()
}

func createdReply(r *model.CreatedReport) string {
	return fmt.Sprintf("Your report has been submitted. Reference number: %s (%s). "+
		"You can ask me about its status at any time.", r.ID, r.Title)
}

func statusReply(reports []model.ReportSummary) string {
	if len(reports) == 0 {
		return "You haven't submitted any reports yet."
	}
	var b strings.Builder
	b.WriteString("Here are your latest reports:")
	for _, r := range reports {
		fmt.Fprintf(&b, "\n- %s: %s (%s)", r.ID, r.Title, humanStatus(r.Status))
	}
	return b.String()
}

func statsReply(s *model.AreaStats) string {
	area := s.Area
	if area == "" {
		area = "your area"
	}
	if s.Total == 0 {
		return fmt.Sprintf("There are no reports for %s yet.", area)
	}

	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	parts := make([]string, 0, len(statuses))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%d %s", s.ByStatus[status], humanStatus(status)))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("There are %d reports for %s.", s.Total, area)
	}
	return fmt.Sprintf("There are %d reports for %s: %s.", s.Total, area, strings.Join(parts, ", "))
}

func humanStatus(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
