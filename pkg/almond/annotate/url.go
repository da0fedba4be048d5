package annotate

import (
	"regexp"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
)

// A token is a URL when it carries an explicit scheme or a www. prefix, or
// looks like a bare host with a path.
var urlPattern = regexp.MustCompile(`^(?:[a-z][a-z0-9+.-]*://\S+|www\.\S+\.\S+|[a-z0-9.-]+\.(?:com|net|org|edu|gov|io)(?:/\S*)?)$`)

// URLs tags single tokens that look like URLs with the URL category, using
// the token itself as the NER value. Quoted strings are left alone.
func URLs(li *langinfo.LanguageInfo) {
	for i := 0; i < li.NumTokens(); i++ {
		if li.NerTags[i] == "QUOTED_STRING" {
			continue
		}
		if urlPattern.MatchString(li.Tokens[i]) {
			li.NerTags[i] = "URL"
			li.NerValues[i] = li.Tokens[i]
		}
	}
}
