package lexicon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

func TestPreprocessRawPhrase(t *testing.T) {
	if got := PreprocessRawPhrase("giants"); got != "giants" {
		t.Errorf("got %q, want giants", got)
	}
	if got := PreprocessRawPhrase("san francisco giants"); got != "" {
		t.Errorf("multi-token phrase should be rejected, got %q", got)
	}
	for _, w := range []string{"the", "of", "with", "kg", "min"} {
		if got := PreprocessRawPhrase(w); got != "" {
			t.Errorf("%q should be filtered, got %q", w, got)
		}
	}
}

func TestEntitySourceLookup(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		if got := r.URL.Query().Get("locale"); got != "en" {
			t.Errorf("locale = %q, want en", got)
		}
		fmt.Fprint(w, `{"result":"ok","data":[
			{"name":"San Francisco Giants","value":"sf","canonical":"san francisco giants","type":"sportradar:mlb_team"}
		]}`)
	}))
	defer srv.Close()

	src := NewEntitySource(srv.URL, "en")
	entries, err := src.Lookup(context.Background(), "giants")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Tag != "GENERIC_ENTITY_sportradar:mlb_team" {
		t.Errorf("tag = %q", e.Tag)
	}
	want := value.Entity{Type: "Entity(sportradar:mlb_team)", ID: "sf", Display: "San Francisco Giants"}
	if !e.Value.Equal(want) {
		t.Errorf("value = %+v, want %+v", e.Value, want)
	}
	if e.Canonical != "san francisco giants" {
		t.Errorf("canonical = %q", e.Canonical)
	}
}

func TestEntitySourceFiltersWithoutNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("filtered phrase must not reach the network")
	}))
	defer srv.Close()

	src := NewEntitySource(srv.URL, "en")
	for _, phrase := range []string{"the", "two words", "kg"} {
		entries, err := src.Lookup(context.Background(), phrase)
		if err != nil || len(entries) != 0 {
			t.Errorf("Lookup(%q) = %v, %v; want empty, nil", phrase, entries, err)
		}
	}
}

func TestEntitySourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewEntitySource(srv.URL, "en")
	if _, err := src.Lookup(context.Background(), "giants"); err == nil {
		t.Error("non-2xx response should surface as an error for the lexicon to recover")
	}
}
