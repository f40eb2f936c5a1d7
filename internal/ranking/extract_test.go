package ranking

import (
	"testing"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeOffer(airline, flightNumber string, price any) map[string]any {
	return map[string]any{
		"price": price,
		"flights": []any{
			map[string]any{
				"airline":           airline,
				"flight_number":     flightNumber,
				"departure_airport": map[string]any{"time": "2026-01-20 06:00"},
				"arrival_airport":   map[string]any{"time": "2026-01-20 08:10"},
			},
		},
		"total_duration": float64(130),
	}
}

func TestEngine_DirectFlights_SortedByPrice(t *testing.T) {
	engine := NewEngine()

	payload := map[string]any{
		"best_flights": []any{
			makeOffer("IndiGo", "6E 101", "₹4,500"),
			makeOffer("Air India", "AI 202", "₹4,000"),
		},
		"other_flights": []any{
			makeOffer("IndiGo", "6E 303", float64(5200)),
			makeOffer("Vistara", "UK 404", "bad"),
		},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 4)

	assert.Equal(t, "AI 202", flights[0].FlightNumber)
	assert.Equal(t, int64(4000), flights[0].PriceValue)
	assert.Equal(t, "6E 101", flights[1].FlightNumber)
	assert.Equal(t, "6E 303", flights[2].FlightNumber)

	// Unparseable price sorts last, never first.
	assert.Equal(t, "UK 404", flights[3].FlightNumber)
	assert.Equal(t, domain.PriceUnknown, flights[3].PriceValue)
}

func TestEngine_DirectFlights_StableForEqualPrices(t *testing.T) {
	engine := NewEngine()

	payload := map[string]any{
		"best_flights": []any{
			makeOffer("IndiGo", "6E 111", "₹4,000"),
			makeOffer("Air India", "AI 222", "₹4,000"),
			makeOffer("Vistara", "UK 333", "₹4,000"),
		},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 3)
	assert.Equal(t, []string{"6E 111", "AI 222", "UK 333"},
		[]string{flights[0].FlightNumber, flights[1].FlightNumber, flights[2].FlightNumber})
}

func TestEngine_DirectFlights_SkipsLayovers(t *testing.T) {
	engine := NewEngine()

	withStops := makeOffer("IndiGo", "6E 500", "₹3,000")
	withStops["layovers"] = []any{map[string]any{"id": "BLR"}}

	emptyLayovers := makeOffer("Air India", "AI 600", "₹5,000")
	emptyLayovers["layovers"] = []any{}

	nullLayovers := makeOffer("Vistara", "UK 700", "₹6,000")
	nullLayovers["layovers"] = nil

	payload := map[string]any{
		"best_flights": []any{
			withStops,
			emptyLayovers,
			nullLayovers,
			makeOffer("Akasa", "QP 800", "₹7,000"),
			makeOffer("SpiceJet", "SG 900", "₹8,000"),
		},
	}

	flights := engine.DirectFlights(payload)

	// 5 offers, one with a non-empty layover list: 4 survive.
	require.Len(t, flights, 4)
	for _, f := range flights {
		assert.NotEqual(t, "6E 500", f.FlightNumber)
	}
}

func TestEngine_DirectFlights_SkipsMalformedOffers(t *testing.T) {
	var logged []string
	engine := NewEngine(WithLogf(func(format string, args ...any) {
		logged = append(logged, format)
	}))

	noSegmentsField := map[string]any{"price": "₹1,000"}
	emptySegments := map[string]any{"price": "₹1,100", "flights": []any{}}
	badSegment := map[string]any{"price": "₹1,200", "flights": []any{"not an object"}}

	payload := map[string]any{
		"best_flights": []any{
			noSegmentsField,
			emptySegments,
			badSegment,
			"not an offer",
			makeOffer("IndiGo", "6E 123", "₹4,000"),
		},
	}

	flights := engine.DirectFlights(payload)

	// One malformed entry never aborts the batch.
	require.Len(t, flights, 1)
	assert.Equal(t, "6E 123", flights[0].FlightNumber)
	assert.Len(t, logged, 4)
}

func TestEngine_DirectFlights_FieldDefaults(t *testing.T) {
	engine := NewEngine()

	payload := map[string]any{
		"best_flights": []any{
			map[string]any{
				"flights": []any{map[string]any{}},
			},
		},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 1)

	f := flights[0]
	assert.Equal(t, "Unknown", f.Airline)
	assert.Equal(t, "N/A", f.FlightNumber)
	assert.Equal(t, "Unknown", f.Departure)
	assert.Equal(t, "Unknown", f.Arrival)
	assert.Equal(t, "Unknown", f.Duration)
	assert.Equal(t, "", f.PriceRaw)
	assert.Equal(t, domain.PriceUnknown, f.PriceValue)
	assert.Equal(t, "No link", f.Link)
}

func TestEngine_DirectFlights_LinkPriority(t *testing.T) {
	engine := NewEngine()

	searchMeta := map[string]any{"google_flights_url": "https://example.com/search"}

	perOffer := makeOffer("IndiGo", "6E 1", "₹1,000")
	perOffer["google_flights_url"] = "https://example.com/offer"
	perOffer["booking_token"] = "tok-1"

	tokenOnly := makeOffer("IndiGo", "6E 2", "₹2,000")
	tokenOnly["booking_token"] = "tok-2"

	bare := makeOffer("IndiGo", "6E 3", "₹3,000")

	payload := map[string]any{
		"search_metadata": searchMeta,
		"best_flights":    []any{perOffer, tokenOnly, bare},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 3)

	assert.Equal(t, "https://example.com/offer", flights[0].Link)
	assert.Equal(t, "https://example.com/search&booking_token=tok-2", flights[1].Link)
	assert.Equal(t, "https://example.com/search", flights[2].Link)
}

func TestEngine_DirectFlights_TokenWithoutSearchURL(t *testing.T) {
	engine := NewEngine()

	offer := makeOffer("IndiGo", "6E 9", "₹1,000")
	offer["booking_token"] = "tok-9"

	flights := engine.DirectFlights(map[string]any{"best_flights": []any{offer}})
	require.Len(t, flights, 1)
	assert.Equal(t, "No link", flights[0].Link)
}

func TestEngine_DirectFlights_FallbackShapeScan(t *testing.T) {
	engine := NewEngine()

	// Neither well-known grouping is present; the first top-level list whose
	// entries carry a "flights" field wins.
	payload := map[string]any{
		"search_metadata": map[string]any{"id": "abc"},
		"chatter":         []any{"noise"},
		"results": []any{
			makeOffer("IndiGo", "6E 42", "₹4,200"),
			makeOffer("Air India", "AI 42", "₹4,100"),
		},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 2)
	assert.Equal(t, "AI 42", flights[0].FlightNumber)
}

func TestEngine_DirectFlights_EmptyGroupingsFallThroughToScan(t *testing.T) {
	engine := NewEngine()

	// The well-known grouping keys exist but carry nothing; the offers live
	// in an unrecognized top-level list and must still be found.
	payload := map[string]any{
		"best_flights":  []any{},
		"other_flights": []any{},
		"results": []any{
			makeOffer("IndiGo", "6E 77", "₹3,700"),
		},
	}

	flights := engine.DirectFlights(payload)
	require.Len(t, flights, 1)
	assert.Equal(t, "6E 77", flights[0].FlightNumber)
}

func TestEngine_DirectFlights_EmptyPayload(t *testing.T) {
	engine := NewEngine()

	assert.Empty(t, engine.DirectFlights(nil))
	assert.Empty(t, engine.DirectFlights(map[string]any{}))
	assert.Empty(t, engine.DirectFlights(map[string]any{"chatter": []any{"noise"}}))
}
