package query

import (
	"fmt"
	"strings"
)

// FormatPrice renders an amount as a USD display string with thousands
// grouping, e.g. 1249.5 -> "$1,249.50".
func FormatPrice(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%.2f", amount)
	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

// PageWindow returns the page numbers a pagination control should display:
// at most five pages, kept centered on the current page and pinned to the
// ends of the range near the boundaries.
func PageWindow(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	count := total
	if count > 5 {
		count = 5
	}
	window := make([]int, count)
	for i := range window {
		switch {
		case total <= 5:
			window[i] = i + 1
		case current <= 3:
			window[i] = i + 1
		case current >= total-2:
			window[i] = total - 4 + i
		default:
			window[i] = current - 2 + i
		}
	}
	return window
}
