package ranking

import "github.com/Domenick1991/flightagent/internal/domain"

// Recommend derives the two recommendation views from a price-sorted flight
// list.
//
// The recommended list is diversity-first: the cheapest offer per distinct
// airline in price order, up to maxPicks. When fewer distinct airlines exist,
// remaining slots are backfilled from the full sorted list, skipping flight
// numbers already picked, so airlines may repeat but flight numbers never do.
//
// Alternatives are every remaining flight priced within tolerancePct of the
// cheapest, in the original (price-ascending) order.
func Recommend(sorted []domain.Flight, maxPicks int, tolerancePct float64) (recommended, alternatives []domain.Flight) {
	if len(sorted) == 0 {
		return nil, nil
	}

	picked := make(map[string]bool, maxPicks)
	airlines := make(map[string]bool)

	for _, f := range sorted {
		if len(recommended) >= maxPicks {
			break
		}
		if airlines[f.Airline] || picked[f.FlightNumber] {
			continue
		}
		airlines[f.Airline] = true
		picked[f.FlightNumber] = true
		recommended = append(recommended, f)
	}

	if len(recommended) < maxPicks {
		for _, f := range sorted {
			if len(recommended) >= maxPicks {
				break
			}
			if picked[f.FlightNumber] {
				continue
			}
			picked[f.FlightNumber] = true
			recommended = append(recommended, f)
		}
	}

	cheapest := sorted[0].PriceValue
	threshold := float64(cheapest) * (1 + tolerancePct)
	for _, f := range sorted {
		if float64(f.PriceValue) > threshold {
			continue
		}
		if picked[f.FlightNumber] {
			continue
		}
		alternatives = append(alternatives, f)
	}

	return recommended, alternatives
}
