package seq2seq

import (
	"context"
	"strings"

	"github.com/stanford-oval/almond-tokenizer/pkg/almond/value"
)

// Phrases the upstream tagger marks LOCATION but that are useless as
// geocoding queries: continents, planet-scale words, deictics, and company
// names often mistagged as places.
var defaultLocationDenylist = []string{
	"earth", "world", "here", "there",
	"europe", "asia", "africa", "america", "australia", "antarctica",
	"north america", "south america",
	"uber", "google", "facebook", "twitter", "walmart",
}

// The geocoder resolves bare "la" to Louisiana; callers overwhelmingly
// mean the city.
var losAngeles = value.Location{
	Latitude:  34.0543942,
	Longitude: -118.2439408,
	Display:   "Los Angeles, California",
}

// findLocation resolves a location phrase through the geocoding lexicon.
// Returns nil when the phrase is denylisted or the geocoder has no answer.
func (t *Tokenizer) findLocation(ctx context.Context, entityText string) value.Value {
	key := strings.ToLower(strings.TrimSpace(entityText))
	if _, deny := t.locationDeny[key]; deny {
		return nil
	}
	// "la" and "la , ca" style mentions mean the city, not Louisiana
	if key == "la" || strings.HasPrefix(key, "la ,") {
		key = "los angeles" + key[len("la"):]
	}
	if key == "los angeles" || key == "l.a." {
		return losAngeles
	}
	entries := t.locations.Lookup(ctx, key)
	if len(entries) == 0 {
		return nil
	}
	return entries[0].Value
}
