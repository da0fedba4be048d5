package seq2seq

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Colloquial names that the lexicon resolves badly or ambiguously, pinned
// to their overwhelmingly common referent. Only consulted when heuristics
// are enabled.
var defaultEntityOverrides = map[string]lexicon.Entry{
	"warriors": {
		Tag:       genericEntityPrefix + "sportradar:nba_team",
		Value:     value.Entity{Type: "Entity(sportradar:nba_team)", ID: "gsw", Display: "Golden State Warriors"},
		Canonical: "golden state warriors",
	},
	"cavaliers": {
		Tag:       genericEntityPrefix + "sportradar:nba_team",
		Value:     value.Entity{Type: "Entity(sportradar:nba_team)", ID: "cle", Display: "Cleveland Cavaliers"},
		Canonical: "cleveland cavaliers",
	},
	"raptors": {
		Tag:       genericEntityPrefix + "sportradar:nba_team",
		Value:     value.Entity{Type: "Entity(sportradar:nba_team)", ID: "tor", Display: "Toronto Raptors"},
		Canonical: "toronto raptors",
	},
	"49ers": {
		Tag:       genericEntityPrefix + "sportradar:nfl_team",
		Value:     value.Entity{Type: "Entity(sportradar:nfl_team)", ID: "sf", Display: "San Francisco 49ers"},
		Canonical: "san francisco 49ers",
	},
	"patriots": {
		Tag:       genericEntityPrefix + "sportradar:nfl_team",
		Value:     value.Entity{Type: "Entity(sportradar:nfl_team)", ID: "ne", Display: "New England Patriots"},
		Canonical: "new england patriots",
	},
	"microsoft": {
		Tag:       genericEntityPrefix + "tt:stock_id",
		Value:     value.Entity{Type: "Entity(tt:stock_id)", ID: "msft", Display: "Microsoft Corp."},
		Canonical: "microsoft corp .",
	},
	"apple": {
		Tag:       genericEntityPrefix + "tt:stock_id",
		Value:     value.Entity{Type: "Entity(tt:stock_id)", ID: "aapl", Display: "Apple Inc."},
		Canonical: "apple inc .",
	},
	"google": {
		Tag:       genericEntityPrefix + "tt:stock_id",
		Value:     value.Entity{Type: "Entity(tt:stock_id)", ID: "goog", Display: "Alphabet Inc."},
		Canonical: "alphabet inc .",
	},
	"walmart": {
		Tag:       genericEntityPrefix + "tt:stock_id",
		Value:     value.Entity{Type: "Entity(tt:stock_id)", ID: "wmt", Display: "Walmart Inc."},
		Canonical: "walmart inc .",
	},
}

// Words elsewhere in the utterance that indicate which sports league or
// market the speaker has in mind.
var domainContextWords = map[string]string{
	"football":    "nfl",
	"nfl":         "nfl",
	"touchdown":   "nfl",
	"quarterback": "nfl",
	"superbowl":   "nfl",

	"basketball": "nba",
	"nba":        "nba",
	"dunk":       "nba",
	"hoops":      "nba",

	"baseball": "mlb",
	"mlb":      "mlb",
	"inning":   "mlb",
	"pitcher":  "mlb",
	"homerun":  "mlb",

	"stock":   "stock",
	"stocks":  "stock",
	"share":   "stock",
	"shares":  "stock",
	"nasdaq":  "stock",
	"dow":     "stock",
	"market":  "stock",
	"invest":  "stock",
	"ticker":  "stock",
	"nysedow": "stock",
}

// leagueOf extracts the domain key a candidate tag belongs to, "" when the
// tag carries no domain signal.
func leagueOf(tag string) string {
	switch {
	case strings.Contains(tag, "nfl") || strings.Contains(tag, "ncaafb"):
		return "nfl"
	case strings.Contains(tag, "nba") || strings.Contains(tag, "ncaambb"):
		return "nba"
	case strings.Contains(tag, "mlb"):
		return "mlb"
	case strings.Contains(tag, "stock"):
		return "stock"
	default:
		return ""
	}
}

// Plural forms whose stem is not recovered by suffix stripping.
var irregularStems = map[string]string{
	"cardinals":  "cardinal",
	"yourselves": "yourself",
}

func stemForm(w string) string {
	if s, ok := irregularStems[w]; ok {
		return s
	}
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

func stemEqual(a, b string) bool {
	return a == b || stemForm(a) == stemForm(b)
}

// findEntity resolves a free-form entity mention against the entity
// lexicon. Candidates are gathered per input token, then scored: +1 for
// each canonical token matched in the input (stem-aware), +0.5 for the
// "la" abbreviation matching "los"/"angeles", a penalty for each canonical
// token the input lacks, and a bonus per domain-indicator word elsewhere
// in the utterance that agrees with the candidate's league. A tie between
// the two best candidates means the mention is genuinely ambiguous and
// resolves to nothing.
func (t *Tokenizer) findEntity(ctx context.Context, info *langinfo.LanguageInfo, entityText, typeHint string) (string, value.Value, error) {
	entityText = strings.ToLower(strings.TrimSpace(entityText))
	if entityText == "" {
		return "", nil, nil
	}
	if _, deny := t.entityDeny[entityText]; deny {
		return "", nil, nil
	}

	contextCounts := t.domainContext(info)

	if t.cfg.ApplyHeuristics {
		if entry, ok := t.overrides[entityText]; ok && matchesHint(entry.Tag, typeHint) {
			return entry.Tag, entry.Value, nil
		}
		// "california bears" is two college teams with the same name;
		// only the surrounding sport words can split them.
		if entityText == "california bears" {
			return resolveCalBears(contextCounts)
		}
	}

	candidates := t.gatherCandidates(ctx, entityText, typeHint)
	if len(candidates) == 0 {
		return "", nil, nil
	}

	inputTokens := strings.Fields(entityText)
	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		weights[i] = t.weigh(c, inputTokens, contextCounts)
	}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]] > weights[order[b]]
	})

	best := order[0]
	if len(order) > 1 && weights[order[1]] == weights[best] {
		log.Printf("seq2seq: ambiguous entity %q: %q and %q tie at %.2f",
			entityText, candidates[best].Canonical, candidates[order[1]].Canonical, weights[best])
		return "", nil, nil
	}
	return candidates[best].Tag, candidates[best].Value, nil
}

// domainContext counts domain-indicator words across the whole utterance.
func (t *Tokenizer) domainContext(info *langinfo.LanguageInfo) map[string]int {
	counts := make(map[string]int)
	for _, tok := range info.Tokens {
		if league, ok := domainContextWords[strings.ToLower(tok)]; ok {
			counts[league]++
		}
	}
	return counts
}

// gatherCandidates unions the lexicon entries of every token in the
// mention, deduplicated by (tag, value).
func (t *Tokenizer) gatherCandidates(ctx context.Context, entityText, typeHint string) []lexicon.Entry {
	var candidates []lexicon.Entry
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(entityText) {
		for _, entry := range t.entities.Lookup(ctx, tok) {
			if !matchesHint(entry.Tag, typeHint) {
				continue
			}
			key := entry.Tag + "\x00" + entityID(entry.Value)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, entry)
		}
	}
	return candidates
}

func matchesHint(tag, typeHint string) bool {
	return typeHint == "" || strings.HasSuffix(tag, typeHint)
}

func entityID(v value.Value) string {
	if e, ok := v.(value.Entity); ok {
		return e.ID
	}
	return ""
}

func (t *Tokenizer) weigh(c lexicon.Entry, inputTokens []string, contextCounts map[string]int) float64 {
	var w float64
	if league := leagueOf(c.Tag); league != "" {
		w += t.cfg.DomainContextBonus * float64(contextCounts[league])
	}
	for _, ct := range strings.Fields(strings.ToLower(c.Canonical)) {
		matched, half := false, false
		for _, it := range inputTokens {
			if stemEqual(it, ct) {
				matched = true
				break
			}
			if it == "la" && (ct == "los" || ct == "angeles") {
				half = true
			}
		}
		switch {
		case matched:
			w += 1
		case half:
			w += 0.5
		default:
			w += t.cfg.MissingTokenPenalty
		}
	}
	return w
}

func resolveCalBears(contextCounts map[string]int) (string, value.Value, error) {
	nfl, nba := contextCounts["nfl"], contextCounts["nba"]
	switch {
	case nfl > nba:
		return genericEntityPrefix + "sportradar:ncaafb_team",
			value.Entity{Type: "Entity(sportradar:ncaafb_team)", ID: "cal", Display: "California Golden Bears"}, nil
	case nba > nfl:
		return genericEntityPrefix + "sportradar:ncaambb_team",
			value.Entity{Type: "Entity(sportradar:ncaambb_team)", ID: "cal", Display: "California Golden Bears"}, nil
	default:
		return "", nil, nil
	}
}
