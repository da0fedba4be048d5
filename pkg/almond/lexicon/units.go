package lexicon

// Measurement unit words. A bare unit token is never a useful entity
// lookup key, so the entity lexicon filters these before querying.
var unitWords = buildUnitSet(
	[]string{"ms", "s", "min", "h", "day", "week", "month", "year"},
	[]string{"C", "F"},
	[]string{"m", "km", "mm", "cm", "mi", "in", "ft"},
	[]string{"mps", "kmph", "mph"},
	[]string{"kg", "g", "lb", "oz"},
	[]string{"Pa", "bar", "psi", "mmHg", "inHg", "atm"},
	[]string{"kcal", "kJ"},
	[]string{"bpm"},
	[]string{"byte", "KB", "KiB", "MB", "MiB", "GB", "GiB", "TB", "TiB"},
)

func buildUnitSet(groups ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, g := range groups {
		for _, u := range g {
			set[u] = struct{}{}
		}
	}
	return set
}

// IsUnit reports whether word is a known measurement unit.
func IsUnit(word string) bool {
	_, ok := unitWords[word]
	return ok
}
