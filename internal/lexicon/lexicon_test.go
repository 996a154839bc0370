package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "i didn't ask for that", Normalize("  I   didn’t ASK\tfor that "))
}

func TestWordsMatchesPluralsOnWordBoundaries(t *testing.T) {
	s := Words("lamp", "street light")
	assert.True(t, s.Match("the lamps are out"))
	assert.True(t, s.Match("two street  lights"))
	assert.False(t, s.Match("lampoon"))
}

func TestHasPrefix(t *testing.T) {
	assert.True(t, Interrogatives.HasPrefix("how do i report"))
	assert.False(t, Interrogatives.HasPrefix("somehow it broke"))
}

func TestNounNearFault(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"lamp is dead at block c", true},
		{"broken street lamp near the mosque", true},
		{"the drain behind the school has been clogged since monday", true},
		{"the lamp post near my house was painted last year and looks fine", false},
		{"thanks for your help", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NounNearFault(Normalize(tt.text), 40), tt.text)
	}
}

func TestCues(t *testing.T) {
	assert.True(t, IsConfirmation("send it"))
	assert.True(t, IsConfirmation("looks good, go ahead"))
	assert.True(t, IsConfirmation("no changes needed, send it"))
	assert.True(t, IsConfirmation("Jangan lama-lama ya, kirim"))
	assert.False(t, IsConfirmation("yes"))
	assert.False(t, IsConfirmation("thanks"))

	assert.True(t, IsApproval("yes"))
	assert.True(t, IsApproval("Yes please!"))
	assert.True(t, IsApproval("yeah, send it"))
	assert.False(t, IsApproval("ok"))
	assert.False(t, IsApproval("sure"))
	assert.False(t, IsApproval("yes the drain is clogged"))

	assert.True(t, IsCancellation("never mind"))
	assert.True(t, IsCancellation("ok cancel it"))
	assert.False(t, IsCancellation("the lamp is dead"))

	assert.True(t, IsAcknowledgment("ok"))
	assert.True(t, IsAcknowledgment("thanks!"))
	assert.True(t, IsAcknowledgment("ok thanks"))
	assert.False(t, IsAcknowledgment("ok the drain is clogged"))

	assert.True(t, OfferedDraft("Yes, I can. "+OfferPrompt))
	assert.True(t, AskedForReview("Title: Street Lamp Out\n\n"+ReviewPrompt+" Say \"send it\"."))
	assert.False(t, AskedForReview("Your report has been submitted."))
	assert.True(t, ClosesTopic("Done! Your report has been submitted with ID R-1."))
}

func TestNegatedConfirmation(t *testing.T) {
	for _, text := range []string{
		"don't send it yet",
		"don't send it",
		"Don’t submit it",
		"no, don't send it",
		"let me review first before you send it",
		"wait for my approval before you submit it",
		"don't do it",
		"do not confirm",
		"I don't think it looks good",
		"jangan kirim",
	} {
		assert.False(t, IsConfirmation(text), text)
	}
}
