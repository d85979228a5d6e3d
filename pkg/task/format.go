package task

import "fmt"

// Display layouts accepted by FormatDate.
const (
	LayoutISO      = "YYYY-MM-DD"
	LayoutUS       = "MM/DD/YYYY"
	LayoutEuropean = "DD-MM-YYYY"
	LayoutDotted   = "YYYY.MM.DD"
	LayoutMonthDay = "MM-DD"
	DefaultLayout  = LayoutISO
)

// Layouts lists the supported display layouts.
var Layouts = []string{LayoutISO, LayoutUS, LayoutEuropean, LayoutDotted, LayoutMonthDay}

// FormatDate renders d in one of the display layouts. Unknown layouts fall
// back to ISO; the zero date renders as the empty string.
func FormatDate(d Date, layout string) string {
	if d.IsZero() {
		return ""
	}
	y, m, day := d.t.Date()
	switch layout {
	case LayoutUS:
		return fmt.Sprintf("%02d/%02d/%04d", int(m), day, y)
	case LayoutEuropean:
		return fmt.Sprintf("%02d-%02d-%04d", day, int(m), y)
	case LayoutDotted:
		return fmt.Sprintf("%04d.%02d.%02d", y, int(m), day)
	case LayoutMonthDay:
		return fmt.Sprintf("%02d-%02d", int(m), day)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", y, int(m), day)
	}
}

// ValidLayout reports whether layout is one of Layouts.
func ValidLayout(layout string) bool {
	for _, l := range Layouts {
		if l == layout {
			return true
		}
	}
	return false
}
