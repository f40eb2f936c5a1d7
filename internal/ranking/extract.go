package ranking

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/Domenick1991/flightagent/internal/domain"
)

const noLink = "No link"

// Engine extracts and ranks direct flights from a raw provider payload.
// It performs no I/O and holds no mutable state, so a single Engine is safe
// to share across requests.
type Engine struct {
	cleaner PriceCleaner
	logf    func(format string, args ...any)
}

type EngineOption func(*Engine)

func WithPriceCleaner(c PriceCleaner) EngineOption {
	return func(e *Engine) { e.cleaner = c }
}

// WithLogf redirects the per-offer skip diagnostics.
func WithLogf(logf func(format string, args ...any)) EngineOption {
	return func(e *Engine) { e.logf = logf }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{cleaner: DefaultPriceCleaner(), logf: log.Printf}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// shapeMatcher pulls candidate offer records out of a payload shape it
// recognizes. Matchers are tried in order; the first match wins.
type shapeMatcher func(payload map[string]any) ([]any, bool)

var shapeMatchers = []shapeMatcher{
	matchKnownGroupings,
	matchFirstOfferList,
}

// matchKnownGroupings picks up the provider's two well-known result groupings.
// Groupings that are present but empty do not count as a match, so the
// fallback scan still gets a chance at payloads whose offers live elsewhere.
func matchKnownGroupings(payload map[string]any) ([]any, bool) {
	var offers []any
	for _, key := range []string{"best_flights", "other_flights"} {
		if list, ok := payload[key].([]any); ok {
			offers = append(offers, list...)
		}
	}
	return offers, len(offers) > 0
}

// matchFirstOfferList scans top-level values for the first list whose entries
// look like offer records (an object with a list-valued "flights" field).
// Keys are visited in sorted order so the scan is deterministic.
func matchFirstOfferList(payload map[string]any) ([]any, bool) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		list, ok := payload[k].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		first, ok := list[0].(map[string]any)
		if !ok {
			continue
		}
		if _, ok := first["flights"].([]any); ok {
			return list, true
		}
	}
	return nil, false
}

// DirectFlights filters the raw payload down to direct offers and returns
// them sorted ascending by price, stable for equal prices. Malformed offers
// are skipped individually; they never abort the batch.
func (e *Engine) DirectFlights(payload map[string]any) []domain.Flight {
	if payload == nil {
		return nil
	}

	var offers []any
	for _, match := range shapeMatchers {
		if found, ok := match(payload); ok {
			offers = found
			break
		}
	}

	searchURL := nestedString(payload, "search_metadata", "google_flights_url")

	flights := make([]domain.Flight, 0, len(offers))
	for _, raw := range offers {
		offer, ok := raw.(map[string]any)
		if !ok {
			e.logf("skipping a malformed flight entry: not an object")
			continue
		}

		// Presence of a non-empty layovers value means stops; absent or
		// empty means direct. A multi-segment offer without the field is
		// still treated as direct, matching the provider's convention.
		if truthy(offer["layovers"]) {
			continue
		}

		flight, err := e.buildFlight(offer, searchURL)
		if err != nil {
			e.logf("skipping a malformed flight entry: %v", err)
			continue
		}
		flights = append(flights, flight)
	}

	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].PriceValue < flights[j].PriceValue
	})
	return flights
}

func (e *Engine) buildFlight(offer map[string]any, searchURL string) (domain.Flight, error) {
	segments, ok := offer["flights"].([]any)
	if !ok {
		return domain.Flight{}, errors.New("missing flights segments")
	}
	if len(segments) == 0 {
		return domain.Flight{}, errors.New("empty flights segments")
	}

	// A direct offer carries exactly one meaningful segment; the first one
	// represents the flight.
	segment, ok := segments[0].(map[string]any)
	if !ok {
		return domain.Flight{}, errors.New("segment is not an object")
	}

	price := offer["price"]

	return domain.Flight{
		Airline:      stringOr(segment, "airline", "Unknown"),
		FlightNumber: stringOr(segment, "flight_number", "N/A"),
		Departure:    nestedStringOr(segment, "departure_airport", "time", "Unknown"),
		Arrival:      nestedStringOr(segment, "arrival_airport", "time", "Unknown"),
		Duration:     displayString(offer["total_duration"], "Unknown"),
		PriceRaw:     displayString(price, ""),
		PriceValue:   e.cleaner.Normalize(price),
		Link:         resolveLink(offer, searchURL),
	}, nil
}

// resolveLink picks a booking URL by priority: the offer's own URL, then the
// search URL with the booking token appended, then the bare search URL, then
// a sentinel.
func resolveLink(offer map[string]any, searchURL string) string {
	if u, _ := offer["google_flights_url"].(string); u != "" {
		return u
	}
	if token, _ := offer["booking_token"].(string); token != "" && searchURL != "" {
		return fmt.Sprintf("%s&booking_token=%s", searchURL, token)
	}
	if searchURL != "" {
		return searchURL
	}
	return noLink
}

// truthy mirrors the provider convention that an absent, null or empty value
// signals "no layovers".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func stringOr(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func nestedString(m map[string]any, outer, inner string) string {
	nested, ok := m[outer].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := nested[inner].(string)
	return s
}

func nestedStringOr(m map[string]any, outer, inner, fallback string) string {
	if s := nestedString(m, outer, inner); s != "" {
		return s
	}
	return fallback
}

// displayString preserves the upstream representation of an opaque field for
// display. Whole numbers render without a decimal point.
func displayString(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
