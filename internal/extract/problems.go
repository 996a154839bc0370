package extract

import (
	"github.com/civic-report/report-assistant/internal/lexicon"
	"github.com/civic-report/report-assistant/internal/model"
)

// genericProblem titles a report when no known problem is named.
const genericProblem = "Community Report"

var problemTitles = []struct {
	keywords *lexicon.Set
	title    string
}{
	{lexicon.Words("traffic light"), "Traffic Light Fault"},
	{lexicon.Words("lamp", "streetlight", "street light", "street lamp", "lamppost", "lampu"), "Street Lamp Out"},
	{lexicon.Words("pothole", "road", "lubang", "jalan rusak", "sidewalk", "pavement", "trotoar"), "Damaged Road"},
	{lexicon.Words("drain", "drainage", "gutter", "sewer", "ditch", "culvert", "manhole", "selokan", "saluran", "got mampet"), "Clogged Drain"},
	{lexicon.Words("tree", "branch", "pohon"), "Fallen Tree"},
	{lexicon.Words("garbage", "trash", "rubbish", "waste", "litter", "illegal dumping", "sampah"), "Garbage Pile-up"},
	{lexicon.Words("flood", "flooding", "banjir"), "Flooding"},
	{lexicon.Words("pipe", "leak", "water", "pipa"), "Water Leak"},
	{lexicon.Words("wire", "cable", "pole", "electricity", "power outage", "blackout", "kabel", "tiang", "listrik"), "Electrical Hazard"},
	{lexicon.Words("fire", "smoke", "kebakaran", "asap"), "Fire Hazard"},
	{lexicon.Words("bridge", "jembatan"), "Damaged Bridge"},
	{lexicon.Words("noise", "loud music", "bising"), "Noise Disturbance"},
	{lexicon.Words("fight", "brawl", "tawuran", "theft", "thief", "burglary", "maling", "pencurian",
		"vandalism", "graffiti", "gambling", "judi", "drunk", "harassment"), "Public Order Issue"},
	{lexicon.Words("stray dog", "mosquito", "dengue"), "Public Health Concern"},
	{lexicon.Words("id card", "ktp", "birth certificate", "certificate", "permit", "family card", "kk",
		"document", "akta", "surat"), "Document Service Issue"},
	{lexicon.Words("food aid", "aid", "assistance", "subsidy", "elderly", "disabled", "orphan",
		"poor family", "bantuan", "sembako", "lansia"), "Assistance Request"},
}

// ProblemTitle returns the canonical phrase for the problem mentioned
// earliest in text, or "" if none is recognized.
func ProblemTitle(text string) string {
	best, bestAt := "", -1
	for _, p := range problemTitles {
		idx := p.keywords.Indexes(text)
		if len(idx) == 0 {
			continue
		}
		if bestAt == -1 || idx[0][0] < bestAt {
			best, bestAt = p.title, idx[0][0]
		}
	}
	return best
}

// DetectCategory returns the first category bucket with a keyword in text.
func DetectCategory(text string) model.Category {
	for _, b := range lexicon.CategoryBuckets {
		if b.Keywords.Match(text) {
			return b.Category
		}
	}
	return model.CategoryInfrastructure
}

// DetectUrgency grades danger words high and disruption words medium.
func DetectUrgency(text string) model.Urgency {
	switch {
	case lexicon.HighUrgency.Match(text):
		return model.UrgencyHigh
	case lexicon.DisruptionWords.Match(text):
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}
