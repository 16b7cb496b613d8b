package domain

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// PriceValue decodes prices sent either as numbers or as currency strings like "$24.00".
// Unparseable or negative values decode to zero.
type PriceValue float64

func (p *PriceValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*p = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PriceValue(ParsePrice(s))
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		*p = 0
		return nil
	}
	*p = PriceValue(f)
	return nil
}

// ParsePrice parses a currency-prefixed price string. It returns 0 when no number can be read.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	// ranges such as "$20.00 - $45.00" keep the lower bound
	if idx := strings.IndexAny(s, " -"); idx > 0 {
		s = s[:idx]
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
