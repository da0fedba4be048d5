package lexicon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

var collapseSeparators = regexp.MustCompile(`[,\s]+`)

// coordinate tolerates both JSON numbers and the quoted decimal strings
// Nominatim emits.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = coordinate(v)
	return nil
}

// nominatimEntry mirrors one row of a Nominatim jsonv2 search response.
type nominatimEntry struct {
	Category    string      `json:"category"`
	DisplayName string      `json:"display_name"`
	Importance  float64     `json:"importance"`
	Lat         coordinate  `json:"lat"`
	Lon         coordinate  `json:"lon"`
	OsmType     string      `json:"osm_type"`
	PlaceRank   json.Number `json:"place_rank"`
	Type        string      `json:"type"`
}

// LocationSource queries a Nominatim-style geocoding gazetteer. Result
// ordering reflects the gazetteer's relevance ranking and is preserved.
//
// Outbound calls are rate limited (public gazetteers require it) and pass
// through a circuit breaker so a dead endpoint stops costing a timeout per
// uncached phrase.
type LocationSource struct {
	BaseURL     string
	APIKey      string
	LanguageTag string

	// HTTPClient overrides the default client (15s timeout) when set.
	HTTPClient *http.Client

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewLocationSource creates a gazetteer source for one language tag.
// ratePerSec <= 0 disables client-side rate limiting.
func NewLocationSource(baseURL, apiKey, languageTag string, ratePerSec float64) *LocationSource {
	s := &LocationSource{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		LanguageTag: languageTag,
	}
	if ratePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "location-lexicon-" + languageTag,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return s
}

// Lookup queries the gazetteer. Each result row maps to a LOCATION entry
// whose canonical phrase is the lowercased, separator-normalized display name.
func (s *LocationSource) Lookup(ctx context.Context, rawPhrase string) ([]Entry, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	rows, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, rawPhrase)
	})
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows.([]nominatimEntry)))
	for _, row := range rows.([]nominatimEntry) {
		canonical := collapseSeparators.ReplaceAllString(strings.ToLower(row.DisplayName), " ")
		entries = append(entries, Entry{
			Tag:       "LOCATION",
			Value:     value.Location{Latitude: float64(row.Lat), Longitude: float64(row.Lon), Display: row.DisplayName},
			Canonical: canonical,
		})
	}
	return entries, nil
}

func (s *LocationSource) fetch(ctx context.Context, rawPhrase string) ([]nominatimEntry, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("accept-language", s.LanguageTag)
	q.Set("limit", "5")
	q.Set("q", rawPhrase)
	if s.APIKey != "" {
		q.Set("key", s.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "almond-tokenizer/2.1 Go")

	resp, err := s.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("location lexicon: unexpected status %s", resp.Status)
	}

	var rows []nominatimEntry
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *LocationSource) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
