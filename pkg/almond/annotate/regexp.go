package annotate

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
)

// RegexpAnnotator tags single tokens that fully match one of a set of
// named patterns. The first capture group of the pattern becomes the NER
// value.
type RegexpAnnotator struct {
	patterns map[string]*regexp.Regexp
}

// NewRegexpAnnotator builds an annotator from tag → pattern pairs. Patterns
// are anchored to match the whole token.
func NewRegexpAnnotator(patterns map[string]string) (*RegexpAnnotator, error) {
	compiled := make(map[string]*regexp.Regexp, len(patterns))
	for tag, pat := range patterns {
		re, err := regexp.Compile("^(?:" + pat + ")$")
		if err != nil {
			return nil, fmt.Errorf("pattern for %s: %w", tag, err)
		}
		compiled[tag] = re
	}
	return &RegexpAnnotator{patterns: compiled}, nil
}

// LoadRegexpAnnotator reads a pattern file with one tab-separated
// tag/pattern pair per line. Blank lines and # comments are skipped.
func LoadRegexpAnnotator(path string) (*RegexpAnnotator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	patterns := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed pattern line %q", line)
		}
		patterns[parts[0]] = parts[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewRegexpAnnotator(patterns)
}

// Annotate applies the patterns token by token. Quoted-string spans are
// immune to retagging.
func (a *RegexpAnnotator) Annotate(li *langinfo.LanguageInfo) {
	for i := 0; i < li.NumTokens(); i++ {
		if li.NerTags[i] == "QUOTED_STRING" {
			continue
		}
		for tag, re := range a.patterns {
			m := re.FindStringSubmatch(li.Tokens[i])
			if m == nil {
				continue
			}
			val := li.Tokens[i]
			if len(m) > 1 && m[1] != "" {
				val = m[1]
			}
			li.NerTags[i] = tag
			li.NerValues[i] = val
		}
	}
}
