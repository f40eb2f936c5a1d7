package domain

import (
	"math"
	"time"
)

// PriceUnknown is the ordering sentinel for offers whose price could not be
// parsed. It sorts after every real price, so unparseable offers stay visible
// at the bottom of the list instead of being dropped.
const PriceUnknown int64 = math.MaxInt64

// Flight is one direct flight offer normalized from the raw provider payload.
// Values are built once per search and never mutated.
type Flight struct {
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
	Duration     string `json:"duration"`
	PriceRaw     string `json:"price_raw"`
	PriceValue   int64  `json:"price_value"`
	Link         string `json:"link"`
}

// PriceKnown reports whether the offer carried a parseable price.
func (f Flight) PriceKnown() bool {
	return f.PriceValue != PriceUnknown
}

type SearchQuery struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

// RankOptions controls the recommendation views derived from the sorted list.
type RankOptions struct {
	MaxPicks     int     `json:"max_picks"`
	TolerancePct float64 `json:"tolerance_pct"`
}

const (
	DefaultMaxPicks     = 3
	DefaultTolerancePct = 0.05
)

// DefaultRankOptions are the conversational-path defaults; the form path lets
// the user adjust both knobs.
func DefaultRankOptions() RankOptions {
	return RankOptions{MaxPicks: DefaultMaxPicks, TolerancePct: DefaultTolerancePct}
}

// Normalize fills invalid values with the defaults.
func (o RankOptions) Normalize() RankOptions {
	if o.MaxPicks <= 0 {
		o.MaxPicks = DefaultMaxPicks
	}
	if o.TolerancePct < 0 {
		o.TolerancePct = DefaultTolerancePct
	}
	return o
}

// SearchResult is one completed search: the full sorted direct-flight list
// plus the two recommendation views.
type SearchResult struct {
	ID           string      `json:"id"`
	Query        SearchQuery `json:"query"`
	Flights      []Flight    `json:"flights"`
	Recommended  []Flight    `json:"recommended"`
	Alternatives []Flight    `json:"alternatives"`
	FetchedAt    time.Time   `json:"fetched_at"`
	FromCache    bool        `json:"from_cache"`
}
