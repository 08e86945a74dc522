package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultRuleWidth = 70

// styles holds the colors used by terminal output. Every color is disabled
// when the output is not a terminal or color was turned off.
type styles struct {
	heading *color.Color
	header  *color.Color
	leader  *color.Color
	good    *color.Color
	warn    *color.Color
	muted   *color.Color
}

func newStyles(enabled bool) styles {
	s := styles{
		heading: color.New(color.FgCyan, color.Bold),
		header:  color.New(color.FgHiBlack, color.Bold),
		leader:  color.New(color.FgYellow, color.Bold),
		good:    color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		muted:   color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{s.heading, s.header, s.leader, s.good, s.warn, s.muted} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

// stylesFor picks styles for w: color only on a terminal, and never when
// disabled by flag or configuration.
func (a *app) stylesFor(w io.Writer) styles {
	enabled := !a.noColor && isTerminal(w)
	if a.cfg.Display.Color != nil && !*a.cfg.Display.Color {
		enabled = false
	}
	return newStyles(enabled)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ruleWidth is the width of separator lines, narrowed to the terminal.
func ruleWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 && width < defaultRuleWidth {
			return width
		}
	}
	return defaultRuleWidth
}

// section prints a section heading between separator lines.
func section(w io.Writer, st styles, title string) {
	rule := strings.Repeat("-", ruleWidth(w))
	fmt.Fprintln(w, rule)                         //nolint:errcheck
	fmt.Fprintln(w, st.heading.Sprint(" "+title)) //nolint:errcheck
	fmt.Fprintln(w, rule)                         //nolint:errcheck
}

// cellStyle colors a single table cell; nil leaves it plain.
type cellStyle func(row, col int) *color.Color

// renderTable prints rows under headers with columns aligned by terminal
// display width. Colors are applied after padding so escape codes never
// affect alignment.
func renderTable(w io.Writer, st styles, headers []string, rows [][]string, style cellStyle) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c))
			}
		}
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = st.header.Sprint(padRight(h, widths[i]))
	}
	fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck

	for ri, r := range rows {
		cells = cells[:0]
		for i := range headers {
			c := ""
			if i < len(r) {
				c = r[i]
			}
			padded := padRight(c, widths[i])
			if style != nil {
				if cs := style(ri, i); cs != nil {
					padded = cs.Sprint(padded)
				}
			}
			cells = append(cells, padded)
		}
		fmt.Fprintln(w, "  "+strings.TrimRight(strings.Join(cells, "  "), " ")) //nolint:errcheck
	}
}

// truncateName shortens a name to maxLen display columns, replacing the
// tail with "…" if needed.
func truncateName(name string, maxLen int) string {
	if runewidth.StringWidth(name) <= maxLen {
		return name
	}
	return runewidth.Truncate(name, maxLen, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// bar renders a share of 0-100 as a fixed-width bar.
func bar(pct float64, width int) string {
	filled := int(pct/100*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
