package lexicon

import "github.com/civic-report/report-assistant/internal/model"

// ProblemNouns are concrete things citizens report problems about.
var ProblemNouns = Words(
	// infrastructure
	"lamp", "streetlight", "street light", "street lamp", "light", "lamppost", "road", "pothole",
	"drain", "drainage", "gutter", "sewer", "sewage", "ditch", "culvert", "manhole",
	"tree", "branch", "garbage", "trash", "rubbish", "waste", "litter", "flood", "flooding",
	"pipe", "leak", "water", "bridge", "sidewalk", "pavement", "wire", "cable", "pole",
	"fire", "smoke", "road sign", "traffic sign", "traffic light", "fence", "wall", "roof",
	"electricity", "power outage", "blackout",
	// social
	"noise", "stray dog", "mosquito", "dengue", "fight", "brawl", "theft", "thief", "burglary",
	"vandalism", "graffiti", "gambling", "drunk", "harassment", "loud music",
	// administrative
	"id card", "ktp", "birth certificate", "certificate", "permit", "family card", "kk",
	// aid
	"food aid", "assistance", "subsidy", "elderly", "disabled", "orphan", "poor family",
	// Indonesian
	"lampu", "lubang", "selokan", "saluran", "pohon", "sampah", "banjir", "pipa",
	"jembatan", "trotoar", "kabel", "tiang", "kebakaran", "asap", "bising", "maling", "pencurian",
	"tawuran", "judi", "bantuan", "sembako", "lansia", "listrik",
)

// FaultWords describe something being wrong with a problem noun.
var FaultWords = Phrases(
	"broken", "broke", "dead", "out", "off", "not working", "doesn't work", "does not work",
	"isn't working", "stopped working", "clogged", "blocked", "fallen", "fell", "collapsed",
	"collapsing", "damaged", "cracked", "leaking", "leaks", "burst", "flooded", "flooding",
	"overflowing", "flickering", "dark", "missing", "stolen", "torn", "hanging", "exposed",
	"sparking", "burning", "piling up", "piled up", "smells", "stinks", "dangerous",
	"rusak", "mati", "mampet", "tersumbat", "tumbang", "roboh", "bocor", "putus",
	"berlubang", "padam", "meluap", "numpuk",
)

// ProblemPhrases name a problem by themselves, without needing a fault word.
var ProblemPhrases = Phrases(
	"pothole", "potholes", "flooding", "flooded", "illegal dumping", "power outage", "blackout",
	"burst pipe", "water leak", "fallen tree", "live wire", "exposed wire", "traffic jam",
	"stray dogs", "noise complaint", "burglary", "vandalism", "brawl", "tawuran", "banjir",
	"kebakaran", "jalan rusak", "lampu mati", "got mampet",
)

// ReportTriggers are explicit requests to create a report.
var ReportTriggers = Phrases(
	"create a report", "create report", "create the report", "create a new report",
	"make a report", "make the report", "file a report", "submit a report", "write a report",
	"draft a report", "build the report", "build a report", "open a report",
	"report a", "report this", "report that", "i want to report", "i'd like to report",
	"i would like to report", "i need to report", "please report",
	"complaint about", "complain about", "want to complain",
	"there is a problem", "there's a problem", "there is an issue", "there's an issue",
	"lapor", "melapor", "buat laporan", "bikin laporan", "ada masalah",
)

// ContinuationTriggers refer back to a problem described earlier in the conversation.
var ContinuationTriggers = Phrases(
	"create the report", "make the report", "build the report", "submit the report",
	"the report you mentioned", "what we discussed", "what i said", "what i mentioned",
	"that problem", "that issue", "the problem i mentioned", "the issue i mentioned",
	"create it", "make it", "draft it", "laporkan", "buatkan laporannya",
)

// RequestWords ask somebody to act.
var RequestWords = Phrases(
	"please", "pls", "can you fix", "could you fix", "fix", "repair", "need help", "help us",
	"clean up", "remove", "handle", "tolong", "mohon", "perbaiki", "bersihkan",
)

// LocationCues suggest the utterance says where something is.
var LocationCues = Phrases(
	"at", "near", "in front of", "behind", "next to", "beside", "opposite", "across from",
	"block", "blok", "street", "road", "avenue", "lane", "alley", "rt", "rw", "jl", "jalan",
	"gang", "village", "kelurahan", "desa", "di depan", "dekat", "samping", "belakang",
)

// Gratitude thanks the assistant or the council.
var Gratitude = Phrases(
	"thanks", "thank you", "thx", "appreciate", "makasih", "terima kasih",
)

// Interrogatives open a question.
var Interrogatives = Phrases(
	"what", "what's", "how", "why", "when", "where", "who", "which", "can", "could", "would",
	"is", "are", "do", "does", "did", "will", "should", "may",
	"apa", "bagaimana", "gimana", "kenapa", "kapan", "dimana", "di mana", "siapa", "bisakah", "apakah",
)

// StatusCues ask about the progress of an existing report.
// Generic words such as "track" or "progress" are left out: they show up in
// ordinary problem descriptions ("the running track", "no progress on the road").
var StatusCues = Phrases(
	"status", "my report", "my reports", "track my report", "progress of my report",
	"progress on my report", "report progress", "follow up", "follow-up", "fixed yet",
	"been fixed", "handled yet", "any update", "any news", "update on",
	"where is my report", "what happened to my report", "did my report",
	"sudah sampai mana", "cek laporan", "status laporan", "laporan saya",
)

// StatsCues ask for aggregate numbers.
var StatsCues = Phrases(
	"statistic", "statistics", "stats", "how many reports", "number of reports", "total reports",
	"reports in my area", "summary of reports", "report summary", "berapa laporan", "statistik",
	"jumlah laporan",
)

// FAQCues ask how the service works.
var FAQCues = Phrases(
	"how do i report", "how to report", "how does it work", "how does this work", "how long",
	"what happens after", "what happens next", "anonymous", "privacy", "who handles",
	"who will handle", "faq", "help", "cara lapor", "cara melapor", "berapa lama",
)

// HighUrgency marks danger to people or property.
var HighUrgency = Phrases(
	"fire", "collapse", "collapsed", "collapsing", "live wire", "exposed wire", "sparking",
	"electrocuted", "electrocution", "injured", "injury", "emergency", "danger", "dangerous",
	"urgent", "asap", "gas leak", "explosion", "drowning", "kebakaran", "darurat", "bahaya",
	"roboh", "korban", "segera",
)

// DisruptionWords mark a problem that disrupts daily life without immediate danger.
var DisruptionWords = Phrases(
	"broken", "dead", "out", "not working", "clogged", "blocked", "fallen", "leaking", "burst",
	"flooded", "flooding", "overflowing", "dark", "noise", "noisy", "loud", "traffic", "smell",
	"stinks", "damaged", "disrupt", "disrupting", "rusak", "mati", "mampet", "macet", "bocor",
	"banjir", "bising", "tumbang",
)

// CategoryBuckets map keyword sets to categories, in routing priority order.
var CategoryBuckets = []struct {
	Category model.Category
	Keywords *Set
}{
	{model.CategoryInfrastructure, Words(
		"lamp", "streetlight", "street light", "light", "lamppost", "road", "pothole", "drain",
		"drainage", "gutter", "sewer", "ditch", "culvert", "manhole", "tree", "branch", "garbage",
		"trash", "rubbish", "waste", "flood", "flooding", "pipe", "leak", "water", "bridge",
		"sidewalk", "pavement", "wire", "cable", "pole", "road sign", "traffic light", "electricity",
		"power outage", "blackout", "lampu", "jalan rusak", "lubang", "got mampet", "selokan", "saluran", "pohon",
		"sampah", "banjir", "pipa", "jembatan", "trotoar", "kabel", "tiang", "listrik",
	)},
	{model.CategorySocial, Words(
		"noise", "loud music", "neighbor", "neighbour", "stray dog", "fight", "brawl", "theft",
		"thief", "burglary", "vandalism", "graffiti", "gambling", "drunk", "harassment", "security",
		"bising", "maling", "pencurian", "tawuran", "judi", "keamanan",
	)},
	{model.CategoryAdministrative, Words(
		"id card", "ktp", "birth certificate", "certificate", "permit", "family card", "kk",
		"document", "letter", "registration", "office", "service counter", "akta", "surat",
		"pelayanan", "kantor",
	)},
	{model.CategoryAid, Words(
		"food aid", "aid", "assistance", "subsidy", "elderly", "disabled", "orphan", "poor family",
		"donation", "relief", "bantuan", "sembako", "lansia", "yatim", "miskin",
	)},
}

// HasProblem reports whether text names a concrete problem.
func HasProblem(text string) bool {
	return ProblemNouns.Match(text) || ProblemPhrases.Match(text)
}

// NounNearFault reports whether a problem noun and a fault word appear
// within maxGap bytes of each other, in either order.
func NounNearFault(text string, maxGap int) bool {
	nouns := ProblemNouns.Indexes(text)
	if len(nouns) == 0 {
		return false
	}
	faults := FaultWords.Indexes(text)
	for _, n := range nouns {
		for _, f := range faults {
			if f[0] >= n[1] && f[0]-n[1] <= maxGap {
				return true
			}
			if n[0] >= f[1] && n[0]-f[1] <= maxGap {
				return true
			}
		}
	}
	return false
}
