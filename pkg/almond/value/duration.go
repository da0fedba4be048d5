package value

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
)

// P<amount><unit> or PT<amount><unit>. The PT prefix selects the "daily"
// reading of ambiguous unit letters: M under PT means minutes, under plain
// P it means months. Lowercase m always means minutes.
var durationPattern = regexp.MustCompile(`^(P|PT)([0-9.]+)([mMSDHYW])$`)

// ParseDuration parses a normalized NER duration string into a Number
// carrying a time unit.
func ParseDuration(s string) (Number, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return Number{}, fmt.Errorf("%w: %q", internalerr.ErrNoParse, s)
	}
	daily := m[1] == "PT"

	var unit string
	switch m[3] {
	case "S":
		unit = "s"
	case "m":
		unit = "min"
	case "M":
		if daily {
			unit = "min"
		} else {
			unit = "month"
		}
	case "H":
		unit = "h"
	case "D":
		unit = "day"
	case "W":
		unit = "week"
	case "Y":
		unit = "year"
	default:
		return Number{}, fmt.Errorf("%w: %q", internalerr.ErrUnknownUnit, m[3])
	}

	amount, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %q", internalerr.ErrBadNumber, m[2])
	}
	return Number{Value: amount, Unit: unit}, nil
}
