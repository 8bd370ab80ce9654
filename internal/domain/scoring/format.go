package scoring

import (
	"math"
	"strconv"
	"strings"
)

// Money renders v as whole dollars with thousands separators, e.g. "$78,000".
func Money(v float64) string {
	rounded := math.Round(v)
	sign := ""
	if rounded < 0 {
		sign = "-"
	}
	digits := strconv.FormatFloat(math.Abs(rounded), 'f', 0, 64)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}

// SignedMoney renders v with an explicit sign, e.g. "+$10,000".
func SignedMoney(v float64) string {
	if math.Round(v) < 0 {
		return Money(v)
	}
	return "+" + Money(v)
}

// Percent renders a ratio as a percentage with one decimal, e.g. "28.0%".
func Percent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"
}
