package seq2seq

import (
	"context"
	"strings"
	"testing"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/langinfo"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/lexicon"
	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

type stubLexicon struct {
	entries map[string][]lexicon.Entry
	calls   []string
}

func (s *stubLexicon) Lookup(_ context.Context, phrase string) []lexicon.Entry {
	s.calls = append(s.calls, phrase)
	return s.entries[phrase]
}

func example(tokens, tags, values []string) *Example {
	li := langinfo.New("neutral")
	for i := range tokens {
		li.Append(tokens[i], tokens[i], "NN", tags[i], values[i])
	}
	return &Example{ID: "test", Utterance: strings.Join(tokens, " "), Info: li}
}

func newTestTokenizer(cfg Config, locations, entities *stubLexicon) *Tokenizer {
	if locations == nil {
		locations = &stubLexicon{}
	}
	if entities == nil {
		entities = &stubLexicon{}
	}
	return New(cfg, locations, entities)
}

func mustProcess(t *testing.T, tok *Tokenizer, ex *Example) *Result {
	t.Helper()
	res, err := tok.Process(context.Background(), ex)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	return res
}

func TestSpanMergeSameValue(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"on", "may", "4th"},
		[]string{"O", "DATE", "DATE"},
		[]string{"", "2016-05-04", "2016-05-04"},
	)
	res := mustProcess(t, tok, ex)

	want := []string{"on", "DATE_0"}
	if strings.Join(res.Tokens, " ") != strings.Join(want, " ") {
		t.Fatalf("tokens = %v, want %v", res.Tokens, want)
	}
	d, ok := res.Entities[EntityKey{"DATE", 0}].(value.Date)
	if !ok {
		t.Fatalf("entities = %v", res.Entities)
	}
	if d.Year != 2016 || d.Month != 5 || d.Day != 4 {
		t.Errorf("date = %+v", d)
	}
}

func TestSpanSplitOnValueChange(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"monday", "tuesday"},
		[]string{"DATE", "DATE"},
		[]string{"2016-05-02", "2016-05-03"},
	)
	res := mustProcess(t, tok, ex)

	want := []string{"DATE_0", "DATE_1"}
	if strings.Join(res.Tokens, " ") != strings.Join(want, " ") {
		t.Fatalf("tokens = %v, want %v", res.Tokens, want)
	}
	if len(res.Entities) != 2 {
		t.Errorf("entities = %v", res.Entities)
	}
}

func TestRejectedNumberPassesThrough(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"send", "one", "message"},
		[]string{"O", "NUMBER", "O"},
		[]string{"", "1.0", ""},
	)
	res := mustProcess(t, tok, ex)

	want := []string{"send", "one", "message"}
	if strings.Join(res.Tokens, " ") != strings.Join(want, " ") {
		t.Fatalf("tokens = %v, want %v", res.Tokens, want)
	}
	if len(res.Entities) != 0 {
		t.Errorf("entities = %v", res.Entities)
	}
}

func TestMoneyBecomesCurrency(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"costs", "1200", "dollars"},
		[]string{"O", "MONEY", "MONEY"},
		[]string{"", "$1200.00", "$1200.00"},
	)
	res := mustProcess(t, tok, ex)

	want := []string{"costs", "CURRENCY_0"}
	if strings.Join(res.Tokens, " ") != strings.Join(want, " ") {
		t.Fatalf("tokens = %v, want %v", res.Tokens, want)
	}
	c, ok := res.Entities[EntityKey{"CURRENCY", 0}].(value.Currency)
	if !ok || c.Value != 1200 || c.Code != "usd" {
		t.Errorf("currency = %#v", res.Entities[EntityKey{"CURRENCY", 0}])
	}
}

func TestMoneyUnknownSymbolCarriedAsCode(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"50", "yen"}, []string{"MONEY", "MONEY"}, []string{"¥50.0", "¥50.0"})
	res := mustProcess(t, tok, ex)

	c, ok := res.Entities[EntityKey{"CURRENCY", 0}].(value.Currency)
	if !ok || c.Value != 50 || c.Code != "¥" {
		t.Errorf("currency = %#v", res.Entities[EntityKey{"CURRENCY", 0}])
	}
}

func TestPercentKeepsMagnitudeOnly(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"20%"}, []string{"PERCENT"}, []string{"%20.0"})
	res := mustProcess(t, tok, ex)

	n, ok := res.Entities[EntityKey{"NUMBER", 0}].(value.Number)
	if !ok || n.Value != 20 || n.Unit != "" {
		t.Errorf("number = %#v", res.Entities[EntityKey{"NUMBER", 0}])
	}
}

func TestComparisonPrefixStripped(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"over", "5"}, []string{"O", "NUMBER"}, []string{"", ">=5.0"})
	res := mustProcess(t, tok, ex)

	n, ok := res.Entities[EntityKey{"NUMBER", 0}].(value.Number)
	if !ok || n.Value != 5 {
		t.Errorf("number = %#v", res.Entities[EntityKey{"NUMBER", 0}])
	}
}

func TestLiteralTwoHeuristic(t *testing.T) {
	ex := func() *Example {
		return example([]string{"send", "two", "messages"},
			[]string{"O", "NUMBER", "O"}, []string{"", "2.0", ""})
	}

	on := newTestTokenizer(Config{LiteralTwoHeuristic: true}, nil, nil)
	res := mustProcess(t, on, ex())
	if strings.Join(res.Tokens, " ") != "send two messages" {
		t.Errorf("heuristic on: tokens = %v", res.Tokens)
	}
	if len(res.Entities) != 0 {
		t.Errorf("heuristic on: entities = %v", res.Entities)
	}

	off := newTestTokenizer(Config{}, nil, nil)
	res = mustProcess(t, off, ex())
	if strings.Join(res.Tokens, " ") != "send NUMBER_0 messages" {
		t.Errorf("heuristic off: tokens = %v", res.Tokens)
	}
}

func TestTimeWithoutClockPartBecomesDate(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"tomorrow"}, []string{"TIME"}, []string{"2016-05-05"})
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "DATE_0" {
		t.Fatalf("tokens = %v", res.Tokens)
	}
	if _, ok := res.Entities[EntityKey{"DATE", 0}].(value.Date); !ok {
		t.Errorf("entities = %v", res.Entities)
	}
}

func TestTimeWithClockPart(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"2:30pm"}, []string{"TIME"}, []string{"T14:30"})
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "TIME_0" {
		t.Fatalf("tokens = %v", res.Tokens)
	}
	wantTime, err := value.NewTime(14, 30, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := res.Entities[EntityKey{"TIME", 0}]
	if got == nil || !got.Equal(wantTime) {
		t.Errorf("time = %#v", got)
	}
}

func TestDurationOneDayRejected(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"one", "day"}, []string{"DURATION", "DURATION"}, []string{"P1D", "P1D"})
	res := mustProcess(t, tok, ex)

	if strings.Join(res.Tokens, " ") != "one day" {
		t.Errorf("tokens = %v", res.Tokens)
	}
	if len(res.Entities) != 0 {
		t.Errorf("entities = %v", res.Entities)
	}
}

func TestDurationMinutes(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"5", "minutes"}, []string{"DURATION", "DURATION"}, []string{"PT5M", "PT5M"})
	res := mustProcess(t, tok, ex)

	n, ok := res.Entities[EntityKey{"DURATION", 0}].(value.Number)
	if !ok || n.Value != 5 || n.Unit != "min" {
		t.Errorf("duration = %#v", res.Entities[EntityKey{"DURATION", 0}])
	}
}

func TestQuotedStringStripsQuotesInSecondStream(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"say", "``", "hello", "world", "''"},
		[]string{"O", "QUOTED_STRING", "QUOTED_STRING", "QUOTED_STRING", "QUOTED_STRING"},
		[]string{"", "hello world", "hello world", "hello world", "hello world"},
	)
	res := mustProcess(t, tok, ex)

	if strings.Join(res.Tokens, " ") != "say QUOTED_STRING_0" {
		t.Fatalf("tokens = %v", res.Tokens)
	}
	if strings.Join(res.TokensNoQuotes, " ") != "say hello world" {
		t.Errorf("tokensNoQuotes = %v", res.TokensNoQuotes)
	}
	s, ok := res.Entities[EntityKey{"QUOTED_STRING", 0}].(value.String)
	if !ok || s.Value != "hello world" {
		t.Errorf("entity = %#v", res.Entities[EntityKey{"QUOTED_STRING", 0}])
	}
}

func TestHashtagBareNameInSecondStream(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"#golang"}, []string{"HASHTAG"}, []string{"golang"})
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "HASHTAG_0" {
		t.Errorf("tokens = %v", res.Tokens)
	}
	if res.TokensNoQuotes[0] != "golang" {
		t.Errorf("tokensNoQuotes = %v", res.TokensNoQuotes)
	}
}

func TestPerTagOrdinals(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example(
		[]string{"5", "or", "7"},
		[]string{"NUMBER", "O", "NUMBER"},
		[]string{"5.0", "", "7.0"},
	)
	res := mustProcess(t, tok, ex)

	if strings.Join(res.Tokens, " ") != "NUMBER_0 or NUMBER_1" {
		t.Fatalf("tokens = %v", res.Tokens)
	}
	n0 := res.Entities[EntityKey{"NUMBER", 0}].(value.Number)
	n1 := res.Entities[EntityKey{"NUMBER", 1}].(value.Number)
	if n0.Value != 5 || n1.Value != 7 {
		t.Errorf("ordinals: %v %v", n0, n1)
	}
}

func TestLocationDenylistSkipsLookup(t *testing.T) {
	locations := &stubLexicon{}
	tok := newTestTokenizer(Config{}, locations, nil)
	ex := example([]string{"flights", "to", "europe"},
		[]string{"O", "O", "LOCATION"}, []string{"", "", ""})
	res := mustProcess(t, tok, ex)

	if len(locations.calls) != 0 {
		t.Errorf("denylisted phrase reached lexicon: %v", locations.calls)
	}
	if strings.Join(res.Tokens, " ") != "flights to europe" {
		t.Errorf("tokens = %v", res.Tokens)
	}
}

func TestLocationLAShortcut(t *testing.T) {
	for _, tokens := range [][]string{{"la"}, {"l.a."}, {"los", "angeles"}} {
		locations := &stubLexicon{}
		tok := newTestTokenizer(Config{}, locations, nil)
		tags := make([]string, len(tokens))
		values := make([]string, len(tokens))
		for i := range tokens {
			tags[i] = "LOCATION"
		}
		res := mustProcess(t, tok, example(tokens, tags, values))

		if len(locations.calls) != 0 {
			t.Errorf("%v: shortcut must not hit the lexicon: %v", tokens, locations.calls)
		}
		loc, ok := res.Entities[EntityKey{"LOCATION", 0}].(value.Location)
		if !ok || !loc.Equal(value.Location{Latitude: 34.054, Longitude: -118.244}) {
			t.Errorf("%v: location = %#v", tokens, res.Entities[EntityKey{"LOCATION", 0}])
		}
	}
}

func TestLocationLAPrefixRewritten(t *testing.T) {
	locations := &stubLexicon{}
	tok := newTestTokenizer(Config{}, locations, nil)
	ex := example(
		[]string{"la", ",", "ca"},
		[]string{"LOCATION", "LOCATION", "LOCATION"},
		[]string{"", "", ""},
	)
	mustProcess(t, tok, ex)

	if len(locations.calls) != 1 || locations.calls[0] != "los angeles , ca" {
		t.Errorf("lookups = %v, want [los angeles , ca]", locations.calls)
	}
}

func TestLocationResolvedThroughLexicon(t *testing.T) {
	palo := value.Location{Latitude: 37.444, Longitude: -122.163, Display: "Palo Alto, California"}
	locations := &stubLexicon{entries: map[string][]lexicon.Entry{
		"palo alto": {{Tag: "LOCATION", Value: palo, Canonical: "palo alto california"}},
	}}
	tok := newTestTokenizer(Config{}, locations, nil)
	ex := example([]string{"palo", "alto"}, []string{"LOCATION", "LOCATION"}, []string{"", ""})
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "LOCATION_0" {
		t.Fatalf("tokens = %v", res.Tokens)
	}
	got := res.Entities[EntityKey{"LOCATION", 0}]
	if got == nil || !got.Equal(palo) {
		t.Errorf("location = %#v", got)
	}
}

func TestExpectMultipleChoiceStripsTags(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"5"}, []string{"NUMBER"}, []string{"5.0"})
	ex.Expect = ExpectMultipleChoice
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "5" || len(res.Entities) != 0 {
		t.Errorf("tokens = %v entities = %v", res.Tokens, res.Entities)
	}
}

func TestExpectLocationForcesLocation(t *testing.T) {
	somewhere := value.Location{Latitude: 1, Longitude: 2, Display: "Somewhere"}
	locations := &stubLexicon{entries: map[string][]lexicon.Entry{
		"somewhere": {{Tag: "LOCATION", Value: somewhere, Canonical: "somewhere"}},
	}}
	tok := newTestTokenizer(Config{}, locations, nil)
	ex := example([]string{"somewhere"}, []string{"ORGANIZATION"}, []string{""})
	ex.Expect = ExpectLocation
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "LOCATION_0" {
		t.Errorf("tokens = %v", res.Tokens)
	}
}

func TestDeviceEntityIgnored(t *testing.T) {
	entities := &stubLexicon{}
	tok := newTestTokenizer(Config{}, nil, entities)
	ex := example([]string{"twitter"}, []string{"GENERIC_ENTITY_tt:device"}, []string{"twitter"})
	res := mustProcess(t, tok, ex)

	if res.Tokens[0] != "twitter" || len(res.Entities) != 0 {
		t.Errorf("tokens = %v entities = %v", res.Tokens, res.Entities)
	}
	if len(entities.calls) != 0 {
		t.Errorf("device marker must not hit the lexicon: %v", entities.calls)
	}
}

func TestInvalidInputRejected(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	if _, err := tok.Process(context.Background(), &Example{ID: "x"}); err == nil {
		t.Error("expected error for example without language info")
	}
}

func TestSentimentDefaultsToNeutral(t *testing.T) {
	tok := newTestTokenizer(Config{}, nil, nil)
	ex := example([]string{"hi"}, []string{"O"}, []string{""})
	ex.Info.Sentiment = ""
	res := mustProcess(t, tok, ex)
	if res.Sentiment != "neutral" {
		t.Errorf("sentiment = %q", res.Sentiment)
	}
}
