package ranking

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightagent/internal/domain"
)

// PriceCleaner turns a raw provider price field into an integer amount usable
// as a sort key. The provider sends either a raw number or a localized string
// like "₹4,500".
type PriceCleaner struct {
	Symbol string
	Code   string
}

func DefaultPriceCleaner() PriceCleaner {
	return PriceCleaner{Symbol: "₹", Code: "INR"}
}

// Normalize is total: every input maps to a finite amount or PriceUnknown,
// never an error. Unparseable prices sort last, never first.
func (c PriceCleaner) Normalize(v any) int64 {
	switch p := v.(type) {
	case nil:
		return domain.PriceUnknown
	case int:
		return int64(p)
	case int64:
		return p
	case float64:
		return int64(p)
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return domain.PriceUnknown
		}
		return int64(f)
	case string:
		s := strings.ReplaceAll(p, c.Symbol, "")
		s = strings.ReplaceAll(s, ",", "")
		if c.Code != "" {
			s = strings.ReplaceAll(s, c.Code, "")
		}
		s = strings.TrimSpace(s)
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.PriceUnknown
		}
		return n
	default:
		return domain.PriceUnknown
	}
}
