package quote

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as $#,##0.00, rounding half away from zero.
func FormatUSD(v float64) string {
	s := humanize.FormatFloat("#,###.##", RoundCents(v))
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "-$" + rest
	}
	return "$" + s
}

// RoundCents rounds an amount to whole cents for storage or display.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
