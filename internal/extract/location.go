package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/civic-report/report-assistant/internal/lexicon"
)

// NoLocation is used when neither the text nor the caller's area gives a place.
const NoLocation = "Location not specified"

// maxLocationWords bounds a captured place name.
const maxLocationWords = 4

// Place is a normalized location. Name is the bare place used in titles,
// Location keeps relational words such as "Near".
type Place struct {
	Location string
	Name     string
}

type locationPattern struct {
	re     *regexp.Regexp
	format func(m []string) Place
}

var landmarks = `street|road|avenue|lane|alley|park|market|school|court|field|mosque|church|temple|station|` +
	`bridge|junction|intersection|village|hall|office|corner|square|terminal|hospital|clinic|playground`

// Patterns run on normalized text, most specific first.
var locationPatterns = []locationPattern{
	{
		re: regexp.MustCompile(`\b(?:block|blok)\s+([a-z0-9]{1,4})\b`),
		format: func(m []string) Place {
			return same("Block " + strings.ToUpper(m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\brt\.?\s*0*(\d{1,3})(?:\s*/\s*(?:rw\.?\s*)?0*(\d{1,3})|\s+rw\.?\s*0*(\d{1,3}))?\b`),
		format: func(m []string) Place {
			rw := m[2]
			if rw == "" {
				rw = m[3]
			}
			if rw == "" {
				return same("RT " + m[1])
			}
			return same("RT " + m[1] + "/RW " + rw)
		},
	},
	{
		re: regexp.MustCompile(`\bin front of (?:the |my |our |a |an )?([a-z][a-z' ]*)`),
		format: func(m []string) Place {
			return same(joinPlace("Front of", m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\bdi depan ([a-z][a-z ]*)`),
		format: func(m []string) Place {
			return same(joinPlace("Depan", m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\b(near|next to|beside|behind|opposite|across from|dekat|samping|belakang) (?:the |my |our |a |an )?([a-z][a-z' ]*)`),
		format: func(m []string) Place {
			name := titleCase(trimPlace(m[2]))
			if name == "" {
				return Place{}
			}
			return Place{Location: titleCase(m[1]) + " " + name, Name: name}
		},
	},
	{
		re: regexp.MustCompile(`\bjl\.?\s+([a-z][a-z ]*)`),
		format: func(m []string) Place {
			return same(joinPlace("Jl.", m[1]))
		},
	},
	{
		re: regexp.MustCompile(`\b(?:at|on|in) (?:the |my |our )?((?:[a-z]+ ){0,3}(?:` + landmarks + `))\b`),
		format: func(m []string) Place {
			return same(titleCase(trimPlace(m[1])))
		},
	},
}

// stopWords end a captured place name.
var stopWords = map[string]bool{
	"is": true, "are": true, "was": true, "were": true, "has": true, "have": true, "had": true,
	"been": true, "and": true, "but": true, "since": true, "for": true, "which": true, "that": true,
	"who": true, "please": true, "it": true, "its": true, "again": true, "there": true, "here": true,
	"still": true, "because": true, "so": true, "with": true, "at": true, "on": true, "in": true,
	"to": true, "from": true, "by": true, "yesterday": true, "today": true, "tonight": true,
	"now": true, "already": true, "keeps": true, "looks": true, "seems": true, "can": true,
	"the": true, "a": true, "an": true, "my": true, "our": true, "this": true, "last": true,
	"every": true, "morning": true, "night": true, "evening": true, "week": true, "need": true,
	"needs": true, "needed": true, "blocking": true, "causing": true, "got": true, "gets": true,
	"getting": true, "became": true, "very": true, "really": true,
	"sudah": true, "masih": true, "yang": true, "dan": true, "tolong": true,
}

// FindPlace returns the first place mentioned in normalized text.
func FindPlace(text string) (Place, bool) {
	for _, p := range locationPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if place := p.format(m); place.Location != "" {
			return place, true
		}
	}
	return Place{}, false
}

// FindLocation returns a normalized location from text, or "" if none is found.
func FindLocation(text string) string {
	place, _ := FindPlace(text)
	return place.Location
}

func same(s string) Place {
	return Place{Location: s, Name: s}
}

func joinPlace(prefix, raw string) string {
	place := trimPlace(raw)
	if place == "" {
		return ""
	}
	return prefix + " " + titleCase(place)
}

// trimPlace keeps the leading words of raw up to the first stop word.
func trimPlace(raw string) string {
	var kept []string
	for _, w := range strings.Fields(raw) {
		if stopWords[w] || isProblemWord(w) || len(kept) == maxLocationWords {
			break
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func isProblemWord(w string) bool {
	return lexicon.FaultWords.Match(w) || lexicon.DisruptionWords.Match(w) || lexicon.HighUrgency.Match(w)
}

var lowerWords = map[string]bool{"of": true, "the": true, "and": true, "to": true, "di": true}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i > 0 && lowerWords[w] {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
