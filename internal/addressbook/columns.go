package addressbook

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jaigner-hub/msgdesk/internal/data"
)

// Cell pads or truncates s to exactly width terminal cells. Hangul takes two
// cells per rune.
func Cell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// Row renders c as fixed-width name, phone and carrier columns.
func Row(c data.Contact, nameWidth, phoneWidth int) string {
	var b strings.Builder
	b.WriteString(Cell(c.ContactName, nameWidth))
	b.WriteString("  ")
	b.WriteString(Cell(c.PhoneNumber, phoneWidth))
	b.WriteString("  ")
	b.WriteString(string(c.Carrier))
	return b.String()
}
