package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStretchBar(t *testing.T) {
	st := NewStyles(Themes[0])
	tests := []struct {
		name        string
		ratio       float64
		left, right int
	}{
		{"rest", 1, 0, 0},
		{"full extension", 1.5, 0, 5},
		{"beyond span", 3, 0, 5},
		{"half compression", 0.75, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := st.StretchBar(tt.ratio, 0.5, 10)
			parts := strings.Split(bar, "│")
			if len(parts) != 2 {
				t.Fatalf("bar %q has no center mark", bar)
			}
			if got := strings.Count(parts[0], "█"); got != tt.left {
				t.Errorf("left fill = %d, want %d", got, tt.left)
			}
			if got := strings.Count(parts[1], "█"); got != tt.right {
				t.Errorf("right fill = %d, want %d", got, tt.right)
			}
		})
	}
}

func TestSparkline(t *testing.T) {
	st := NewStyles(Themes[0])
	if got := st.Sparkline(nil, 4); got != "────" {
		t.Errorf("empty sparkline = %q", got)
	}

	got := st.Sparkline([]float64{9, 9, 0, 1, 2, 3}, 4)
	if strings.Count(got, "▁") != 1 || strings.Count(got, "█") != 1 {
		t.Errorf("sparkline = %q, want the last four values from ▁ to █", got)
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", "#000000", "#ffffff") != "" {
		t.Error("empty text should render empty")
	}
	out := GradientText("ab", lipgloss.Color("#000000"), lipgloss.Color("#ffffff"))
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("gradient dropped runes: %q", out)
	}
}

func TestHexRoundTrip(t *testing.T) {
	r, g, b := parseHex("#0a80Ff")
	if r != 10 || g != 128 || b != 255 {
		t.Errorf("parseHex = %d %d %d", r, g, b)
	}
	if got := hexColor(300, -4, 171); got != "#ff00ab" {
		t.Errorf("hexColor = %q", got)
	}
	if r, g, b := parseHex("bogus"); r != 255 || g != 255 || b != 255 {
		t.Error("malformed hex should fall back to white")
	}
}

func TestThemes(t *testing.T) {
	names := ThemeNames()
	if len(names) != len(Themes) || names[0] != "cyberpunk" {
		t.Fatalf("names = %v", names)
	}
	if GetTheme("ocean").Name != "ocean" || GetTheme("nope").Name != names[0] {
		t.Error("GetTheme lookup")
	}
	if NextTheme(names[len(names)-1]).Name != names[0] {
		t.Error("NextTheme should wrap")
	}
	if NextTheme(names[0]).Name != names[1] {
		t.Error("NextTheme order")
	}
}
