package seq2seq

import (
	"strings"
	"testing"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

func teamLexicon() *stubLexicon {
	return &stubLexicon{entries: map[string][]lexicon.Entry{
		"giants": {
			{
				Tag:       "GENERIC_ENTITY_sportradar:mlb_team",
				Value:     value.Entity{Type: "Entity(sportradar:mlb_team)", ID: "sf", Display: "San Francisco Giants"},
				Canonical: "san francisco giants",
			},
			{
				Tag:       "GENERIC_ENTITY_sportradar:nfl_team",
				Value:     value.Entity{Type: "Entity(sportradar:nfl_team)", ID: "nyg", Display: "New York Giants"},
				Canonical: "new york giants",
			},
		},
	}}
}

func TestEntityDomainContextBreaksTie(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, teamLexicon())
	ex := example(
		[]string{"show", "the", "giants", "baseball", "score"},
		[]string{"O", "O", "ORGANIZATION", "O", "O"},
		[]string{"", "", "", "", ""},
	)
	res := mustProcess(t, tok, ex)

	key := EntityKey{"GENERIC_ENTITY_sportradar:mlb_team", 0}
	e, ok := res.Entities[key].(value.Entity)
	if !ok || e.ID != "sf" {
		t.Fatalf("entities = %v", res.Entities)
	}
	if res.Tokens[2] != key.String() {
		t.Errorf("tokens = %v", res.Tokens)
	}
	// mention text survives in the second stream for entity spans
	if res.TokensNoQuotes[2] != "giants" {
		t.Errorf("tokensNoQuotes = %v", res.TokensNoQuotes)
	}
}

func TestEntityTieResolvesToNothing(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, teamLexicon())
	ex := example(
		[]string{"show", "the", "giants", "score"},
		[]string{"O", "O", "ORGANIZATION", "O"},
		[]string{"", "", "", ""},
	)
	res := mustProcess(t, tok, ex)

	if len(res.Entities) != 0 {
		t.Errorf("ambiguous mention resolved: %v", res.Entities)
	}
	if strings.Join(res.Tokens, " ") != "show the giants score" {
		t.Errorf("tokens = %v", res.Tokens)
	}
}

func TestEntityFullNameOutweighsPartial(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, teamLexicon())
	ex := example(
		[]string{"new", "york", "giants"},
		[]string{"ORGANIZATION", "ORGANIZATION", "ORGANIZATION"},
		[]string{"", "", ""},
	)
	res := mustProcess(t, tok, ex)

	key := EntityKey{"GENERIC_ENTITY_sportradar:nfl_team", 0}
	e, ok := res.Entities[key].(value.Entity)
	if !ok || e.ID != "nyg" {
		t.Fatalf("entities = %v", res.Entities)
	}
}

func TestEntityOverride(t *testing.T) {
	entities := &stubLexicon{}
	tok := newTestTokenizer(Config{ApplyHeuristics: true}, nil, entities)
	ex := example([]string{"warriors"}, []string{"ORGANIZATION"}, []string{""})
	res := mustProcess(t, tok, ex)

	key := EntityKey{"GENERIC_ENTITY_sportradar:nba_team", 0}
	e, ok := res.Entities[key].(value.Entity)
	if !ok || e.ID != "gsw" {
		t.Fatalf("entities = %v", res.Entities)
	}
	if len(entities.calls) != 0 {
		t.Errorf("override must bypass the lexicon: %v", entities.calls)
	}
}

func TestEntityTypeHintFiltersCandidates(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, teamLexicon())
	ex := example([]string{"giants"}, []string{"GENERIC_ENTITY_sportradar:mlb_team"}, []string{""})
	res := mustProcess(t, tok, ex)

	key := EntityKey{"GENERIC_ENTITY_sportradar:mlb_team", 0}
	e, ok := res.Entities[key].(value.Entity)
	if !ok || e.ID != "sf" {
		t.Fatalf("entities = %v", res.Entities)
	}
}

func TestEntityDenylist(t *testing.T) {
	entities := teamLexicon()
	tok := newTestTokenizer(Config{EntityDenylist: []string{"giants"}}, nil, entities)
	ex := example([]string{"giants"}, []string{"ORGANIZATION"}, []string{""})
	res := mustProcess(t, tok, ex)

	if len(res.Entities) != 0 {
		t.Errorf("denylisted mention resolved: %v", res.Entities)
	}
	if len(entities.calls) != 0 {
		t.Errorf("denylisted mention reached lexicon: %v", entities.calls)
	}
}

func TestCalBearsNeedsSportContext(t *testing.T) {
	tok := newTestTokenizer(Config{ApplyHeuristics: true}, nil, nil)

	ex := example(
		[]string{"california", "bears", "football"},
		[]string{"ORGANIZATION", "ORGANIZATION", "O"},
		[]string{"", "", ""},
	)
	res := mustProcess(t, tok, ex)
	key := EntityKey{"GENERIC_ENTITY_sportradar:ncaafb_team", 0}
	if e, ok := res.Entities[key].(value.Entity); !ok || e.ID != "cal" {
		t.Fatalf("football context: entities = %v", res.Entities)
	}

	ex = example(
		[]string{"california", "bears"},
		[]string{"ORGANIZATION", "ORGANIZATION"},
		[]string{"", ""},
	)
	res = mustProcess(t, tok, ex)
	if len(res.Entities) != 0 {
		t.Errorf("no context: entities = %v", res.Entities)
	}
}

func TestStemEqual(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"giants", "giants", true},
		{"giants", "giant", true},
		{"cardinals", "cardinal", true},
		{"yourselves", "yourself", true},
		{"glass", "glas", false},
		{"york", "new", false},
	}
	for _, c := range cases {
		if got := stemEqual(c.a, c.b); got != c.want {
			t.Errorf("stemEqual(%q, %q) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
