package lexicon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Words that appear constantly in utterances and would flood the entity
// endpoint without ever resolving to a useful canonical form.
var ignoredWords = func() []string {
	words := []string{
		"in", "is", "of", "or", "not", "my", "i", "at", "as", "by",
		"from", "for", "an", "on", "a", "to", "with", "and", "'s", "'", "s", "when",
		"notify", "monitor", "it", "?", "me", "the", "if",
		"abc", "def", "ghi", "jkl", "mno", "pqr", "stu", "vwz",
	}
	sort.Strings(words)
	return words
}()

// IsIgnored reports whether word is filtered out of entity lookups.
func IsIgnored(word string) bool {
	i := sort.SearchStrings(ignoredWords, word)
	return (i < len(ignoredWords) && ignoredWords[i] == word) || IsUnit(word)
}

// PreprocessRawPhrase returns the single lookup token for a raw phrase, or
// "" when the phrase must not be looked up: multi-token phrases are
// rejected outright (callers look up each constituent token and union the
// results), as are ignored words and measurement units.
func PreprocessRawPhrase(rawPhrase string) string {
	tokens := strings.Split(rawPhrase, " ")
	if len(tokens) > 1 {
		return ""
	}
	if IsIgnored(tokens[0]) {
		return ""
	}
	return tokens[0]
}

type entityLookupResponse struct {
	Result string              `json:"result"`
	Data   []entityLookupEntry `json:"data"`
}

type entityLookupEntry struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Canonical string `json:"canonical"`
	Type      string `json:"type"`
}

// EntitySource queries a knowledge-base entity-search endpoint keyed by
// language tag.
type EntitySource struct {
	BaseURL     string
	LanguageTag string

	// HTTPClient overrides the default client (15s timeout) when set.
	HTTPClient *http.Client

	breaker *gobreaker.CircuitBreaker
}

// NewEntitySource creates a knowledge-base source for one language tag.
func NewEntitySource(baseURL, languageTag string) *EntitySource {
	return &EntitySource{
		BaseURL:     baseURL,
		LanguageTag: languageTag,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "entity-lexicon-" + languageTag,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Lookup queries the knowledge base for a single-token phrase. Filtered
// phrases return no entries without any network traffic.
func (s *EntitySource) Lookup(ctx context.Context, rawPhrase string) ([]Entry, error) {
	token := PreprocessRawPhrase(rawPhrase)
	if token == "" {
		return nil, nil
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	payload := res.(*entityLookupResponse)
	entries := make([]Entry, 0, len(payload.Data))
	for _, row := range payload.Data {
		entries = append(entries, Entry{
			Tag: "GENERIC_ENTITY_" + row.Type,
			Value: value.Entity{
				Type:    "Entity(" + row.Type + ")",
				ID:      row.Value,
				Display: row.Name,
			},
			Canonical: row.Canonical,
		})
	}
	return entries, nil
}

func (s *EntitySource) fetch(ctx context.Context, token string) (*entityLookupResponse, error) {
	q := url.Values{}
	q.Set("locale", s.LanguageTag)
	q.Set("q", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entity lexicon: unexpected status %s", resp.Status)
	}

	var payload entityLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (s *EntitySource) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
