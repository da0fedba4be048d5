// Package seq2seq rewrites a tagged token stream into a sequence of
// abstracted tokens plus a table of typed entity values, for consumption
// by a sequence-to-sequence semantic parser. Contiguous same-type NER
// spans are merged, converted to typed values, and replaced by synthetic
// placeholder tokens; spans that fail conversion fall back to their
// verbatim tokens.
package seq2seq

import (
	"context"
	"fmt"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/internalerr"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Expected-answer-type hints the caller may attach to an example.
const (
	ExpectLocation       = "Location"
	ExpectMultipleChoice = "MultipleChoice"
)

// Entity tags produced by knowledge-base lookups use this prefix,
// qualified by the kb type.
const genericEntityPrefix = "GENERIC_ENTITY_"

// The tokenizer's own device entities are self-referential and never
// useful to the downstream parser.
const deviceEntityTag = genericEntityPrefix + "tt:device"

// Example is one utterance to normalize.
type Example struct {
	ID        string
	Utterance string
	// Expect optionally forces the entity tagging: ExpectLocation turns
	// every entity span into a location candidate, ExpectMultipleChoice
	// strips all entity tags so the parser sees plain tokens.
	Expect string
	Info   *langinfo.LanguageInfo
}

// EntityKey identifies one resolved entity: an output category plus a
// per-category ordinal assigned in first-occurrence order.
type EntityKey struct {
	Tag     string
	Ordinal int
}

// String renders the placeholder token for this key.
func (k EntityKey) String() string { return fmt.Sprintf("%s_%d", k.Tag, k.Ordinal) }

// Result is the normalized form of one utterance.
type Result struct {
	// RawTokens and PosTags are pass-through diagnostic copies of the input.
	RawTokens []string
	PosTags   []string
	// Tokens is the primary linearization with entity placeholders.
	Tokens []string
	// TokensNoQuotes replaces quoted-string spans with their inner
	// content and hashtag/username spans with the bare name, for models
	// sensitive to punctuation markers.
	TokensNoQuotes []string
	// Entities maps placeholder keys to their resolved typed values.
	Entities map[EntityKey]value.Value
	// Sentiment is the pass-through sentiment label, "neutral" if absent.
	Sentiment string
}

// Lexicon is the lookup contract the engine needs; *lexicon.Lexicon
// satisfies it, and tests substitute stubs.
type Lexicon interface {
	Lookup(ctx context.Context, rawPhrase string) []lexicon.Entry
}

// Config carries the engine's heuristic toggles and tunable weights.
// Zero weights select the calibrated defaults.
type Config struct {
	// ApplyHeuristics enables the tag-repair pre-pass and the entity
	// override tables.
	ApplyHeuristics bool
	// LiteralTwoHeuristic keeps the literal token "two" instead of a
	// NUMBER placeholder when a single-token span resolves to exactly
	// 2.0. Deliberately narrow; do not generalize.
	LiteralTwoHeuristic bool
	// PresentRef selects how the PRESENT_REF date literal parses.
	PresentRef value.PresentRefPolicy

	// MissingTokenPenalty is subtracted for every canonical-phrase token
	// with no matching input token (default -0.1).
	MissingTokenPenalty float64
	// DomainContextBonus scales the domain-indicator word counts added
	// to a candidate's weight (default 0.25).
	DomainContextBonus float64

	// LocationDenylist lists phrases that are never locations. Empty
	// selects the built-in list.
	LocationDenylist []string
	// EntityDenylist lists phrases never resolved as generic entities.
	EntityDenylist []string
	// EntityOverrides maps well-known colloquial names directly to
	// entries, bypassing the lexicon. Empty selects the built-in table.
	EntityOverrides map[string]lexicon.Entry
}

const (
	defaultMissingTokenPenalty = -0.1
	defaultDomainContextBonus  = 0.25
)

// Tokenizer is the entity normalization engine. It is stateless across
// calls and safe for concurrent use: all per-call state lives in Process's
// locals, and the shared lexicons synchronize internally.
type Tokenizer struct {
	cfg          Config
	locations    Lexicon
	entities     Lexicon
	locationDeny map[string]struct{}
	entityDeny   map[string]struct{}
	overrides    map[string]lexicon.Entry
}

// New creates an engine over the given location and entity lexicons.
func New(cfg Config, locations, entities Lexicon) *Tokenizer {
	if cfg.MissingTokenPenalty == 0 {
		cfg.MissingTokenPenalty = defaultMissingTokenPenalty
	}
	if cfg.DomainContextBonus == 0 {
		cfg.DomainContextBonus = defaultDomainContextBonus
	}

	deny := cfg.LocationDenylist
	if len(deny) == 0 {
		deny = defaultLocationDenylist
	}
	locationDeny := make(map[string]struct{}, len(deny))
	for _, d := range deny {
		locationDeny[strings.ToLower(d)] = struct{}{}
	}

	entityDeny := make(map[string]struct{}, len(cfg.EntityDenylist))
	for _, d := range cfg.EntityDenylist {
		entityDeny[strings.ToLower(d)] = struct{}{}
	}

	overrides := cfg.EntityOverrides
	if overrides == nil {
		overrides = defaultEntityOverrides
	}

	return &Tokenizer{
		cfg:          cfg,
		locations:    locations,
		entities:     entities,
		locationDeny: locationDeny,
		entityDeny:   entityDeny,
		overrides:    overrides,
	}
}

// Process normalizes one example. Parse failures and unresolvable entities
// degrade to verbatim tokens; only a contract violation (an out-of-range
// time constructed from annotator output) aborts the example.
func (t *Tokenizer) Process(ctx context.Context, ex *Example) (*Result, error) {
	if ex == nil || ex.Info == nil {
		return nil, fmt.Errorf("%w: example has no language info", internalerr.ErrInvalidInput)
	}
	if err := ex.Info.Validate(); err != nil {
		return nil, err
	}

	info := ex.Info.Clone()
	switch ex.Expect {
	case ExpectMultipleChoice:
		for i := range info.NerTags {
			info.NerTags[i] = langinfo.NoEntity
			info.NerValues[i] = ""
		}
	case ExpectLocation:
		for i := range info.NerTags {
			if info.NerTags[i] != langinfo.NoEntity {
				info.NerTags[i] = "LOCATION"
				info.NerValues[i] = ""
			}
		}
	}

	if t.cfg.ApplyHeuristics {
		repairTags(info)
	}

	result := &Result{
		RawTokens: append([]string(nil), info.Tokens...),
		PosTags:   append([]string(nil), info.PosTags...),
		Entities:  make(map[EntityKey]value.Value),
		Sentiment: info.Sentiment,
	}
	if result.Sentiment == "" {
		result.Sentiment = "neutral"
	}

	if err := t.computeTokens(ctx, info, result); err != nil {
		return nil, err
	}
	return result, nil
}

// computeTokens runs the span state machine: accumulate while the next
// token continues the same (tag, value) span, then convert the closed span
// and emit either a placeholder or the verbatim tokens.
func (t *Tokenizer) computeTokens(ctx context.Context, info *langinfo.LanguageInfo, result *Result) error {
	nextOrdinal := make(map[string]int)
	var span []string

	n := info.NumTokens()
	for i := 0; i < n; i++ {
		tag := info.NerTags[i]
		token := info.Tokens[i]

		if tag == langinfo.NoEntity {
			result.Tokens = append(result.Tokens, token)
			result.TokensNoQuotes = append(result.TokensNoQuotes, token)
			continue
		}

		span = append(span, token)
		if i < n-1 && info.NerTags[i+1] == tag && info.NerValues[i+1] == info.NerValues[i] {
			continue
		}

		outTag, val, err := t.convert(ctx, info, tag, info.NerValues[i], strings.Join(span, " "))
		if err != nil {
			return err
		}
		if outTag == deviceEntityTag {
			val = nil
		}

		switch {
		case val == nil:
			// span not recognized: pass the tokens through verbatim
			result.Tokens = append(result.Tokens, span...)
			result.TokensNoQuotes = append(result.TokensNoQuotes, span...)

		case t.cfg.LiteralTwoHeuristic && isLiteralTwo(val, span):
			result.Tokens = append(result.Tokens, token)
			result.TokensNoQuotes = append(result.TokensNoQuotes, token)

		default:
			key := EntityKey{Tag: outTag, Ordinal: nextOrdinal[outTag]}
			nextOrdinal[outTag]++
			result.Entities[key] = val
			placeholder := key.String()
			result.Tokens = append(result.Tokens, placeholder)

			switch {
			case outTag == "QUOTED_STRING" && len(span) >= 2:
				result.TokensNoQuotes = append(result.TokensNoQuotes, span[1:len(span)-1]...)
			case outTag == "HASHTAG" || outTag == "USERNAME":
				if s, ok := val.(value.String); ok {
					result.TokensNoQuotes = append(result.TokensNoQuotes, s.Value)
				}
			case strings.HasPrefix(outTag, genericEntityPrefix):
				result.TokensNoQuotes = append(result.TokensNoQuotes, span...)
			default:
				result.TokensNoQuotes = append(result.TokensNoQuotes, placeholder)
			}
		}
		span = span[:0]
	}
	return nil
}

// isLiteralTwo reports whether the resolved value is the bare number 2.0
// and the span was the single word "two".
func isLiteralTwo(val value.Value, span []string) bool {
	n, ok := val.(value.Number)
	return ok && n.Value == 2.0 && n.Unit == "" && len(span) == 1 && span[0] == "two"
}
