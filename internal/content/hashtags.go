package content

import (
	"kodbot/internal/domain"
	"slices"
	"strings"
)

const maxKeywordHashtags = 5

type keywordHashtag struct {
	keyword string
	hashtag string
}

//nolint:gochecknoglobals // Static configuration data.
var baseHashtags = []string{"#ProgrammaYazmak", "#Kod", "#Öwrenmek"}

// Order matters: earlier keywords win when the cap truncates later ones.
//
//nolint:gochecknoglobals // Static configuration data.
var keywordHashtags = []keywordHashtag{
	{"python", "#Python"},
	{"javascript", "#JavaScript"},
	{"react", "#React"},
	{"html", "#HTML"},
	{"css", "#CSS"},
	{"git", "#Git"},
	{"api", "#API"},
	{"database", "#Database"},
	{"mysql", "#MySQL"},
	{"mobil", "#MobilApp"},
	{"web", "#WebDev"},
	{"frontend", "#Frontend"},
	{"backend", "#Backend"},
	{"debugging", "#Debugging"},
	{"test", "#Testing"},
}

//nolint:gochecknoglobals // Static configuration data.
var dayPartHashtags = map[domain.DayPart]string{
	domain.Morning:   "#IrdenkiHöwes",
	domain.Midday:    "#GünortaÖwrenmek",
	domain.Afternoon: "#IkindiWagt",
	domain.Evening:   "#AgşamDüşünje",
}

// DeriveHashtags returns the base tags, then keyword tags found in text until
// the list holds five, then exactly one day-part tag.
func DeriveHashtags(text string, dayPart domain.DayPart) []string {
	hashtags := slices.Clone(baseHashtags)
	lower := strings.ToLower(text)

	for _, kh := range keywordHashtags {
		if len(hashtags) >= maxKeywordHashtags {
			break
		}

		if strings.Contains(lower, kh.keyword) && !slices.Contains(hashtags, kh.hashtag) {
			hashtags = append(hashtags, kh.hashtag)
		}
	}

	if tag, ok := dayPartHashtags[dayPart]; ok {
		hashtags = append(hashtags, tag)
	}

	return hashtags
}

func FormatHashtags(hashtags []string) string {
	return strings.Join(hashtags, " ")
}
