package geo

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat" koanf:"lat"`
	Lon float64 `json:"lon" koanf:"lon"`
}

// Precision says which fallback level resolved a lookup
type Precision string

const (
	PrecisionCity    Precision = "city"
	PrecisionState   Precision = "state"
	PrecisionDefault Precision = "default"
)

// Place is one row of a location table. An empty City makes it a
// state-level entry.
type Place struct {
	State string  `koanf:"state"`
	City  string  `koanf:"city"`
	Lat   float64 `koanf:"lat"`
	Lon   float64 `koanf:"lon"`
}

// LocationTable is the on-disk form of a locator:
//
//	[default]
//	lat = 39.83
//	lon = -98.58
//
//	[[location]]
//	state = "VA"
//	city = "Arlington"
//	lat = 38.88
//	lon = -77.10
type LocationTable struct {
	Default   Coordinates `koanf:"default"`
	Locations []Place     `koanf:"location"`
}

// Locator resolves places of performance to map coordinates with the
// fallback exact (state, city) -> state -> default. It is immutable after
// construction and safe for concurrent use.
type Locator struct {
	def    Coordinates
	cities map[string]Coordinates
	states map[string]Coordinates
}

// DefaultCenter is the geographic center of the contiguous United States
var DefaultCenter = Coordinates{Lat: 39.8283, Lon: -98.5795}

func normState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func cityKey(state, city string) string {
	return normState(state) + "|" + strings.ToLower(strings.TrimSpace(city))
}

// NewLocator builds a locator from a table. Later rows for the same place
// replace earlier ones.
func NewLocator(table LocationTable) *Locator {
	l := &Locator{
		def:    table.Default,
		cities: make(map[string]Coordinates),
		states: make(map[string]Coordinates),
	}
	if l.def == (Coordinates{}) {
		l.def = DefaultCenter
	}

	for _, p := range table.Locations {
		c := Coordinates{Lat: p.Lat, Lon: p.Lon}
		if strings.TrimSpace(p.City) == "" {
			l.states[normState(p.State)] = c
		} else {
			l.cities[cityKey(p.State, p.City)] = c
		}
	}
	return l
}

// LoadLocator reads a TOML location table from path
func LoadLocator(path string) (*Locator, error) {
	k := koanf.New("::")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load location table %s: %w", path, err)
	}

	var table LocationTable
	if err := k.Unmarshal("", &table); err != nil {
		return nil, fmt.Errorf("failed to parse location table %s: %w", path, err)
	}
	return NewLocator(table), nil
}

// Lookup resolves a place, reporting which fallback level matched.
// Matching ignores case and surrounding whitespace.
func (l *Locator) Lookup(state, city string) (Coordinates, Precision) {
	if l == nil {
		return DefaultCenter, PrecisionDefault
	}
	if c, ok := l.cities[cityKey(state, city)]; ok && strings.TrimSpace(city) != "" {
		return c, PrecisionCity
	}
	if c, ok := l.states[normState(state)]; ok {
		return c, PrecisionState
	}
	return l.def, PrecisionDefault
}

// Len returns the number of city and state entries
func (l *Locator) Len() int {
	if l == nil {
		return 0
	}
	return len(l.cities) + len(l.states)
}
