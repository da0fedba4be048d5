// Package value defines the typed values produced by entity normalization:
// numbers, currencies, dates, times, locations, knowledge-base entities,
// strings and booleans. Values are immutable and compared by Equal, which
// for locations absorbs gazetteer jitter with a small coordinate tolerance.
package value

import (
	"fmt"
	"math"
)

// Kind identifies the variant of a Value. For placeholder synthesis the
// kind doubles as the output category name (NUMBER_0, CURRENCY_1, ...).
type Kind string

const (
	KindNumber   Kind = "NUMBER"
	KindCurrency Kind = "CURRENCY"
	KindDate     Kind = "DATE"
	KindTime     Kind = "TIME"
	KindLocation Kind = "LOCATION"
	KindEntity   Kind = "GENERIC_ENTITY"
	KindString   Kind = "STRING"
	KindBool     Kind = "BOOL"
)

// Value is the closed set of typed entity values.
type Value interface {
	Kind() Kind
	Equal(other Value) bool
}

// Number is a numeric value with an optional measurement unit.
type Number struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

func (n Number) Kind() Kind { return KindNumber }

// Equal does exact float comparison, matching how normalized NER values
// round-trip through the annotator.
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && n.Value == o.Value && n.Unit == o.Unit
}

func (n Number) String() string {
	if n.Unit != "" {
		return fmt.Sprintf("%g %s", n.Value, n.Unit)
	}
	return fmt.Sprintf("%g", n.Value)
}

// Currency is a monetary amount with an ISO-ish lowercase currency code.
// Unrecognized currency symbols are carried through verbatim as the code.
type Currency struct {
	Value float64 `json:"value"`
	Code  string  `json:"unit"`
}

func (c Currency) Kind() Kind { return KindCurrency }

func (c Currency) Equal(other Value) bool {
	o, ok := other.(Currency)
	return ok && c.Value == o.Value && c.Code == o.Code
}

func (c Currency) String() string { return fmt.Sprintf("%g %s", c.Value, c.Code) }

// Location is a geographic point with an optional display name.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Display   string  `json:"display,omitempty"`
}

func (l Location) Kind() Kind { return KindLocation }

// Equal treats coordinates within 0.001 degrees as the same place. Display
// names do not participate: two gazetteer rows for the same point are one
// location.
func (l Location) Equal(other Value) bool {
	o, ok := other.(Location)
	if !ok {
		return false
	}
	return math.Abs(l.Latitude-o.Latitude) <= 0.001 && math.Abs(l.Longitude-o.Longitude) <= 0.001
}

func (l Location) String() string {
	return fmt.Sprintf("[Lat: %g, Lon: %g (%s)]", l.Latitude, l.Longitude, l.Display)
}

// Entity is a knowledge-base entity: a kb-qualified type, a stable
// identifier and a human-readable display name.
type Entity struct {
	Type    string `json:"type"`
	ID      string `json:"value"`
	Display string `json:"display"`
}

func (e Entity) Kind() Kind { return KindEntity }

// Equal compares type and identifier; the display name is presentation only.
func (e Entity) Equal(other Value) bool {
	o, ok := other.(Entity)
	return ok && e.Type == o.Type && e.ID == o.ID
}

// String is a plain string value (quoted strings, URLs, hashtags, ...).
type String struct {
	Value string `json:"value"`
}

func (s String) Kind() Kind { return KindString }

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s.Value == o.Value
}

// Bool is a boolean value.
type Bool struct {
	Value bool `json:"value"`
}

func (b Bool) Kind() Kind { return KindBool }

func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && b.Value == o.Value
}
