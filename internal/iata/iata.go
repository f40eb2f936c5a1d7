// Package iata resolves user-entered city names to IATA airport codes.
// Resolution is a front-end concern: the search service and ranking engine
// only ever receive codes.
package iata

import (
	"strings"
	"unicode"
)

// cityCodes covers the common city names the demo is used with. Unknown
// cities fall back to a best-effort guess.
var cityCodes = map[string]string{
	"delhi":          "DEL",
	"new delhi":      "DEL",
	"mumbai":         "BOM",
	"bombay":         "BOM",
	"hyderabad":      "HYD",
	"bangalore":      "BLR",
	"bengaluru":      "BLR",
	"lucknow":        "LKO",
	"chennai":        "MAA",
	"kolkata":        "CCU",
	"pune":           "PNQ",
	"ahmedabad":      "AMD",
	"goa":            "GOI",
	"cochin":         "COK",
	"kochi":          "COK",
	"jaipur":         "JAI",
	"visakhapatnam":  "VTZ",
	"vishakhapatnam": "VTZ",
	"trivandrum":     "TRV",
	"kanpur":         "KNU",
	"varanasi":       "VNS",
	"nagpur":         "NAG",
	"patna":          "PAT",
}

// Resolve converts a city name or code to an uppercase 3-letter IATA code.
// Input that already looks like a code passes through. Unknown names fall
// back to the first three letters, which can guess wrong (KAN vs KNU), so
// callers should echo the resolved code back to the user.
func Resolve(loc string) (string, bool) {
	s := strings.TrimSpace(loc)
	if s == "" {
		return "", false
	}

	if len(s) == 3 && isAlpha(s) {
		return strings.ToUpper(s), true
	}

	if code, ok := cityCodes[strings.ToLower(s)]; ok {
		return code, true
	}

	var letters []rune
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) == 3 {
		return strings.ToUpper(string(letters)), true
	}

	return "", false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
