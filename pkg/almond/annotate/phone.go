// Package annotate contains auxiliary span recognizers that run after the
// external annotation pipeline and before entity normalization. Each
// annotator rewrites NER tags and values of a LanguageInfo in place.
package annotate

import (
	"regexp"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
)

var (
	// std +<country> syntax or north american 1- prefix; a bare 1 directly
	// before a ( is handled in tryIntlPrefix, RE2 has no lookahead
	intlPrefixPattern = regexp.MustCompile(`^(\+1-?|\+[2-9][0-9]{1,2}-?|1-)`)
	// common (000) area code, or bare 0000, followed by optional -
	areaCodePattern = regexp.MustCompile(`^\(?[0-9]{3,4}\)?-?`)
	// digits, *, # and -, or full numbers in touch-tone format
	numberPattern = regexp.MustCompile(`^([0-9*#\-]+|[A-Za-z0-9*#\-]{3,4}-[A-Za-z0-9*#\-]{3,})$`)
	// more lenient with touch tones when an explicit prefix was seen,
	// so 1-800-SABRINA parses even though SABRINA alone would not
	lenientNumberPattern = regexp.MustCompile(`^[A-Za-z0-9*#\-]{3,}$`)
	// a legitimate numeric literal is not a phone number
	doubleLiteralPattern = regexp.MustCompile(`^[+\-]?([0-9]*\.[0-9]+|[0-9]+)([eE][+-]?[0-9]+)?$`)
	anyDigitPattern      = regexp.MustCompile(`[0-9]`)
)

// letter -> digit on a touch-tone keypad
var touchTones = []byte("22233344455566677778889999")

// phoneParser consumes tokens starting at startToken, tracking a character
// offset inside the current token because prefixes can end mid-token.
type phoneParser struct {
	tokens     []string
	startToken int

	tokenIdx int
	charIdx  int

	hasIntlPrefix bool
	hasAreaCode   bool
	buffer        strings.Builder
}

func (p *phoneParser) currentToken() (string, bool) {
	if len(p.tokens) <= p.startToken+p.tokenIdx {
		return "", false
	}
	tok := p.tokens[p.startToken+p.tokenIdx]
	if p.charIdx > 0 {
		tok = tok[p.charIdx:]
	}
	return tok, true
}

func (p *phoneParser) advance(matchedLen, tokenLen int) {
	if p.charIdx+matchedLen >= p.charIdx+tokenLen {
		p.tokenIdx++
		p.charIdx = 0
	} else {
		p.charIdx += matchedLen
	}
}

func (p *phoneParser) tryIntlPrefix() bool {
	tok, ok := p.currentToken()
	if !ok {
		return false
	}
	loc := intlPrefixPattern.FindStringIndex(tok)
	if loc == nil {
		// bare 1 directly before an opening paren, e.g. 1(800)5551234
		if len(tok) >= 2 && tok[0] == '1' && tok[1] == '(' {
			loc = []int{0, 1}
		} else {
			return false
		}
	}
	p.hasIntlPrefix = true
	p.buffer.WriteString(tok[:loc[1]])
	p.advance(loc[1], len(tok))
	return true
}

func (p *phoneParser) tryAreaCode() bool {
	tok, ok := p.currentToken()
	if !ok {
		return false
	}
	loc := areaCodePattern.FindStringIndex(tok)
	if loc == nil || loc[1] == 0 {
		return false
	}
	p.hasAreaCode = true
	p.buffer.WriteString(tok[:loc[1]])
	p.advance(loc[1], len(tok))
	return true
}

func (p *phoneParser) tryNumber(lenient bool) bool {
	tok, ok := p.currentToken()
	if !ok {
		return false
	}
	if p.charIdx == 0 && (p.hasAreaCode || p.hasIntlPrefix || p.buffer.Len() >= 4) {
		lenient = false
	}
	pat := numberPattern
	if lenient {
		pat = lenientNumberPattern
	}
	if !pat.MatchString(tok) {
		return false
	}
	p.buffer.WriteString(tok)
	p.tokenIdx++
	p.charIdx = 0
	return true
}

func (p *phoneParser) consumedTokens() int { return p.tokenIdx }

func (p *phoneParser) tryParse() string {
	p.tryIntlPrefix()
	p.tryAreaCode()
	for p.tryNumber(p.hasIntlPrefix || p.hasAreaCode) {
	}

	// too short, or nothing consumed
	if p.buffer.Len() < 6 || p.tokenIdx == 0 {
		return ""
	}

	buf := p.buffer.String()

	// short buffers that parse as a plain numeric literal are numbers
	minLen := 4
	if p.hasIntlPrefix {
		minLen += 2
	}
	if p.hasAreaCode {
		minLen += 3
	}
	if len(buf) < minLen && doubleLiteralPattern.MatchString(buf) {
		return ""
	}
	if !anyDigitPattern.MatchString(buf) {
		return ""
	}

	// normalize 1-... to +1-..., or assume north america
	if strings.HasPrefix(buf, "1") {
		buf = "+" + buf
	} else if buf[0] != '+' {
		buf = "+1" + buf
	}

	buf = strings.ReplaceAll(buf, "-lrb-", "")
	buf = strings.ReplaceAll(buf, "-rrb-", "")
	buf = strings.ToLower(buf)

	var out strings.Builder
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch {
		case c >= 'a' && c <= 'z':
			out.WriteByte(touchTones[c-'a'])
		case c == '(' || c == ')' || c == '-':
			// dropped
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// PhoneNumbers recognizes multi-token phone numbers and tags the consumed
// tokens PHONE_NUMBER with the normalized +<digits> form as the NER value.
// Tokens already inside TIME, DATE or QUOTED_STRING spans are left alone.
func PhoneNumbers(li *langinfo.LanguageInfo) {
	for i := 0; i < li.NumTokens(); i++ {
		switch li.NerTags[i] {
		case "TIME", "DATE", "QUOTED_STRING":
			continue
		}
		p := &phoneParser{tokens: li.Tokens, startToken: i}
		parsed := p.tryParse()
		if parsed == "" {
			continue
		}
		for j := 0; j < p.consumedTokens(); j++ {
			li.NerTags[i+j] = "PHONE_NUMBER"
			li.NerValues[i+j] = parsed
		}
		i += p.consumedTokens() - 1
	}
}
