package annotate

import (
	"regexp"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
)

var (
	integerPattern  = regexp.MustCompile(`^[0-9]+$`)
	yearPattern     = regexp.MustCompile(`^[0-9]{4}$`)
	emergencyTokens = map[string]struct{}{"9-11": {}, "911": {}, "110": {}, "119": {}}
)

// RepairNumericTags fixes known annotator mistakes around numeric
// categories:
//
//   - a DATE with no normalized value carries no information: demoted to O;
//   - a DATE whose value is a bare four-digit year is really a NUMBER;
//   - emergency numbers and five-digit integers (zip codes) are never
//     quantities: untagged;
//   - an ORGANIZATION tag on a token that is neither noun nor adjective is
//     a tagger artifact: demoted to O.
//
// Quoted-string spans are not touched.
func RepairNumericTags(li *langinfo.LanguageInfo) {
	for i := 0; i < li.NumTokens(); i++ {
		tag := li.NerTags[i]
		if tag == "QUOTED_STRING" {
			continue
		}
		token := strings.ToLower(li.Tokens[i])

		if tag == "DATE" {
			if li.NerValues[i] == "" {
				li.NerTags[i] = langinfo.NoEntity
			} else if yearPattern.MatchString(li.NerValues[i]) {
				li.NerTags[i] = "NUMBER"
			}
		}

		if _, emergency := emergencyTokens[token]; emergency ||
			(integerPattern.MatchString(token) && len(token) == 5) {
			li.NerTags[i] = langinfo.NoEntity
			li.NerValues[i] = ""
			continue
		}

		if li.NerTags[i] == "ORGANIZATION" {
			pos := li.PosTags[i]
			if !strings.HasPrefix(pos, "N") && !strings.HasPrefix(pos, "J") {
				li.NerTags[i] = langinfo.NoEntity
				li.NerValues[i] = ""
			}
		}
	}
}
