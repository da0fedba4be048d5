package seq2seq

import (
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/annotate"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
)

// Multi-token names the upstream tagger routinely splits or mislabels,
// forced to a single ORGANIZATION span.
var knownOrganizations = [][]string{
	{"washington", "post"},
	{"wall", "street", "journal"},
	{"new", "york", "times"},
	{"golden", "state", "warriors"},
}

// Language names get tagged NATIONALITY or MISC and then leak into entity
// lookups; pinning them to LANGUAGE keeps them verbatim.
var languageNames = map[string]struct{}{
	"english": {}, "spanish": {}, "french": {}, "german": {}, "italian": {},
	"portuguese": {}, "chinese": {}, "japanese": {}, "korean": {}, "arabic": {},
	"russian": {}, "hindi": {}, "turkish": {},
}

// repairTags fixes systematic tagger mistakes before span merging. It runs
// the numeric repairs, forces known organization phrases into one span,
// pins language names, and absorbs punctuation separating two halves of
// the same location span so the halves merge. Quoted-string spans are
// never touched.
func repairTags(info *langinfo.LanguageInfo) {
	annotate.RepairNumericTags(info)

	n := info.NumTokens()
	for _, phrase := range knownOrganizations {
		for i := 0; i+len(phrase) <= n; i++ {
			if !phraseAt(info, i, phrase) {
				continue
			}
			val := strings.Join(phrase, " ")
			for j := 0; j < len(phrase); j++ {
				info.NerTags[i+j] = "ORGANIZATION"
				info.NerValues[i+j] = val
			}
		}
	}

	for i := 0; i < n; i++ {
		if info.NerTags[i] == "QUOTED_STRING" {
			continue
		}
		if _, lang := languageNames[strings.ToLower(info.Tokens[i])]; lang {
			info.NerTags[i] = "LANGUAGE"
			info.NerValues[i] = ""
		}
	}

	for i := 1; i < n-1; i++ {
		if !isPunctuation(info.Tokens[i]) || info.NerTags[i] != langinfo.NoEntity {
			continue
		}
		if info.NerTags[i-1] == "LOCATION" && info.NerTags[i+1] == "LOCATION" &&
			info.NerValues[i-1] == info.NerValues[i+1] {
			info.NerTags[i] = "LOCATION"
			info.NerValues[i] = info.NerValues[i-1]
		}
	}
}

func phraseAt(info *langinfo.LanguageInfo, i int, phrase []string) bool {
	for j, w := range phrase {
		if info.NerTags[i+j] == "QUOTED_STRING" {
			return false
		}
		if strings.ToLower(info.Tokens[i+j]) != w {
			return false
		}
	}
	return true
}

func isPunctuation(token string) bool {
	switch token {
	case ",", ".", "-", ";":
		return true
	default:
		return false
	}
}
