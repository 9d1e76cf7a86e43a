package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price is a number that decodes leniently: numbers, numeric strings, blank
// strings and null are all accepted, anything unparsable becomes 0. Documents
// written by form-driven clients store prices exactly like that.
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*p = 0
			return nil
		}
		*p = ParsePrice(s)
		return nil
	}
	*p = ParsePrice(string(b))
	return nil
}

// Float returns the value as float64.
func (p Price) Float() float64 { return float64(p) }

// ParsePrice parses user input, returning 0 for blank, invalid or non-finite
// values.
func ParsePrice(s string) Price {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Price(f)
}
