// Package quantity renders ingredient and shopping quantities for display.
package quantity

import (
	"math"
	"strconv"
	"strings"
)

// Format renders whole numbers without a decimal point and everything else with
// two decimals. Only a literal ".00" suffix is collapsed, so 1.5 renders as
// "1.50" while 2.001 renders as "2".
func Format(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strings.TrimSuffix(strconv.FormatFloat(n, 'f', 2, 64), ".00")
}
