package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are derived from a Theme so that cycling themes restyles the
// whole view.
type Styles struct {
	Panel       lipgloss.Style
	Canvas      lipgloss.Style
	Title       lipgloss.Style
	Subtle      lipgloss.Style
	Running     lipgloss.Style
	Paused      lipgloss.Style
	MetricLabel lipgloss.Style
	MetricValue lipgloss.Style
	Selected    lipgloss.Style
	KeyHint     lipgloss.Style
	Graph       lipgloss.Style
	Error       lipgloss.Style

	sparkHigh, sparkMid, sparkLow lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
		Canvas:      lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 2),
		Title:       lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Subtle:      lipgloss.NewStyle().Foreground(t.Muted),
		Running:     lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Paused:      lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		MetricLabel: lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		MetricValue: lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		KeyHint:     lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		Graph:       lipgloss.NewStyle().Foreground(t.Secondary).Padding(1, 0),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		sparkHigh:   lipgloss.NewStyle().Foreground(t.Error),
		sparkMid:    lipgloss.NewStyle().Foreground(t.Warning),
		sparkLow:    lipgloss.NewStyle().Foreground(t.Success),
	}
}

// GradientText colors each rune of text on a line from start to end.
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	var result strings.Builder
	n := len(runes)
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		b := int(float64(sb) + t*float64(eb-sb))

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(r, g, b)))
		result.WriteString(style.Render(string(c)))
	}
	return result.String()
}

// StretchBar renders a spring's stretch ratio as a bar centered on rest
// length: left of center is compression, right is extension. Deviations
// of span or more fill the half.
func (s Styles) StretchBar(ratio, span float64, width int) string {
	half := width / 2
	dev := ratio - 1
	mag := dev / span
	if mag < 0 {
		mag = -mag
	}
	if mag > 1 {
		mag = 1
	}
	n := int(mag*float64(half) + 0.5)

	left := strings.Repeat("░", half)
	right := strings.Repeat("░", width-half)
	if dev < 0 {
		left = strings.Repeat("░", half-n) + strings.Repeat("█", n)
	} else {
		right = strings.Repeat("█", n) + strings.Repeat("░", width-half-n)
	}

	style := s.sparkLow
	switch {
	case mag > 0.7:
		style = s.sparkHigh
	case mag > 0.3:
		style = s.sparkMid
	}
	return style.Render(left + "│" + right)
}

// Sparkline renders a mini chart of the last width values.
func (s Styles) Sparkline(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return s.Graph.UnsetPadding().Render(b.String())
}

// Separator is a horizontal rule with a center mark.
func (s Styles) Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return s.Subtle.Render(left + " ◆ " + right)
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	r = parseHexByte(hex[1:3])
	g = parseHexByte(hex[3:5])
	b = parseHexByte(hex[5:7])
	return
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(v, 255))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
