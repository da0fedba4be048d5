package seq2seq

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Currency symbols emitted by the numeric annotator, mapped to ISO 4217
// codes. Unknown symbols pass through as the code.
var currencyCodes = map[string]string{
	"$": "usd",
	"€": "eur",
	"£": "gbp",
	"元": "cny",
}

// Tags whose normalized value is already the final string form.
var stringTags = map[string]string{
	"USERNAME":      "USERNAME",
	"HASHTAG":       "HASHTAG",
	"PHONE_NUMBER":  "PHONE_NUMBER",
	"EMAIL_ADDRESS": "EMAIL_ADDRESS",
	"URL":           "URL",
	"QUOTED_STRING": "QUOTED_STRING",
	"PATH_NAME":     "PATH_NAME",
}

// convert maps one closed span to an output category and typed value.
// A (_, nil, nil) return means the span is not an entity and its tokens
// pass through verbatim. The error return is reserved for contract
// violations that abort the whole utterance.
func (t *Tokenizer) convert(ctx context.Context, info *langinfo.LanguageInfo, tag, nerValue, entityText string) (string, value.Value, error) {
	switch {
	case tag == "MONEY" || tag == "PERCENT":
		return convertMoneyPercent(tag, nerValue)

	case tag == "NUMBER" || tag == "ORDINAL":
		f, ok := parseMagnitude(nerValue)
		if !ok {
			return "", nil, nil
		}
		return "NUMBER", value.Number{Value: f}, nil

	case tag == "DATE":
		d, ok := value.ParseDate(nerValue, t.cfg.PresentRef)
		if !ok {
			return "", nil, nil
		}
		return "DATE", d, nil

	case tag == "TIME":
		return convertTime(nerValue, t.cfg.PresentRef)

	case tag == "DURATION":
		return convertDuration(nerValue)

	case tag == "LOCATION":
		loc := t.findLocation(ctx, entityText)
		if loc == nil {
			return "", nil, nil
		}
		return "LOCATION", loc, nil

	case tag == "ORGANIZATION":
		return t.findEntity(ctx, info, entityText, "")

	case strings.HasPrefix(tag, genericEntityPrefix):
		if tag == deviceEntityTag {
			return tag, nil, nil
		}
		return t.findEntity(ctx, info, entityText, strings.TrimPrefix(tag, genericEntityPrefix))

	default:
		if out, ok := stringTags[tag]; ok {
			if nerValue == "" {
				return "", nil, nil
			}
			return out, value.String{Value: nerValue}, nil
		}
		return "", nil, nil
	}
}

// convertMoneyPercent splits a symbol-prefixed magnitude. Money becomes a
// currency value with an ISO code; percentages keep only the magnitude,
// which is all the downstream parser consumes.
func convertMoneyPercent(tag, nerValue string) (string, value.Value, error) {
	if nerValue == "" {
		return "", nil, nil
	}
	symbol, width := utf8.DecodeRuneInString(nerValue)
	if width == 0 {
		return "", nil, nil
	}
	f, ok := parseMagnitude(nerValue[width:])
	if !ok {
		return "", nil, nil
	}
	if tag == "MONEY" {
		code, known := currencyCodes[string(symbol)]
		if !known {
			code = string(symbol)
		}
		return "CURRENCY", value.Currency{Value: f, Code: code}, nil
	}
	return "NUMBER", value.Number{Value: f}, nil
}

// parseMagnitude parses an annotator magnitude, tolerating a leading
// comparison operator and rejecting the trivial quantities 0 and 1, which
// are nearly always determiners or pronouns rather than amounts.
func parseMagnitude(s string) (float64, bool) {
	for _, prefix := range []string{">=", "<=", ">", "<", "~"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if f == 0 || f == 1 {
		return 0, false
	}
	return f, true
}

// convertTime handles the annotator's habit of tagging bare dates as TIME:
// a value without a time-of-day part is re-parsed as a date. An out-of-range
// time component is a contract violation and aborts the utterance.
func convertTime(nerValue string, policy value.PresentRefPolicy) (string, value.Value, error) {
	if nerValue == "" {
		return "", nil, nil
	}
	if !strings.HasPrefix(nerValue, "T") {
		d, ok := value.ParseDate(nerValue, policy)
		if !ok {
			return "", nil, nil
		}
		return "DATE", d, nil
	}
	d, ok := value.ParseDate(nerValue, policy)
	if !ok {
		return "", nil, nil
	}
	tm, err := value.NewTime(d.Hour, d.Minute, d.Second)
	if err != nil {
		return "", nil, err
	}
	return "TIME", tm, nil
}

// convertDuration parses an ISO 8601 duration into a number with a time
// unit. "1 day" style durations are rejected: they are almost always the
// calendar word ("one day I will..."), not a measure.
func convertDuration(nerValue string) (string, value.Value, error) {
	if nerValue == "" {
		return "", nil, nil
	}
	n, err := value.ParseDuration(nerValue)
	if err != nil {
		return "", nil, nil
	}
	if n.Value == 1 && n.Unit == "day" {
		return "", nil, nil
	}
	return "DURATION", n, nil
}
