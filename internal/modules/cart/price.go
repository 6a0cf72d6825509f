package cart

import (
	"strconv"
	"strings"
)

// ParsePrice extracts the numeric amount from a display price. Everything before the first
// digit is dropped (so the dot in "Rs.100" is not read as a decimal point), every remaining
// character other than a digit or '.' is removed, and the longest digits[.digits] prefix is
// parsed. It reports false when no amount can be found.
func ParsePrice(p Price) (float64, bool) {
	s := string(p)
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0, false
	}

	var b strings.Builder
	for _, r := range s[start:] {
		if isDigit(r) || r == '.' {
			b.WriteRune(r)
		}
	}

	parts := strings.SplitN(b.String(), ".", 3)
	num := parts[0]
	if len(parts) > 1 && parts[1] != "" {
		num += "." + parts[1]
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatPrice renders an aggregate for display. Totals are summed unrounded; this is the
// only place they are rounded.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func totals(items []Item) (count int, price float64) {
	for _, it := range items {
		unit, _ := ParsePrice(it.Product.Price)
		count += it.Quantity
		price += unit * float64(it.Quantity)
	}
	return count, price
}
