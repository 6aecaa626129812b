package viz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
)

var errNoScene = errors.New("no such scene")

func testResolver(scene, integrator string) (*config.Config, physics.Integrator, error) {
	cfg := config.GetPreset(scene)
	if cfg == nil {
		return nil, nil, fmt.Errorf("%s: %w", scene, errNoScene)
	}
	if integrator == "euler" {
		return cfg, physics.NewExplicitEuler(), nil
	}
	return cfg, physics.NewSemiImplicitEuler(), nil
}

func press(t *testing.T, p Picker, msgs ...tea.Msg) Picker {
	t.Helper()
	for _, msg := range msgs {
		next, _ := p.Update(msg)
		p = next.(Picker)
	}
	return p
}

func TestPickerNavigation(t *testing.T) {
	p := NewPicker(config.ListPresets(), []string{"semi-implicit", "euler"}, testResolver)
	if p.Integrator() != "semi-implicit" {
		t.Fatalf("integrator = %q", p.Integrator())
	}

	p = press(t, p, runes("j"), runes("j"), runes("j"), runes("k"), runes("i"))
	if p.cursor != 1 {
		t.Errorf("cursor = %d, want 1", p.cursor)
	}
	if p.Integrator() != "euler" {
		t.Errorf("integrator = %q, want euler", p.Integrator())
	}

	view := p.View()
	for _, name := range config.ListPresets() {
		if !strings.Contains(view, name) {
			t.Errorf("menu missing %q", name)
		}
	}
}

func TestPickerOpensLiveView(t *testing.T) {
	p := NewPicker([]string{"pair"}, []string{"euler"}, testResolver)
	p = press(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.state != stateLive {
		t.Fatalf("state = %d, want live (err %v)", p.state, p.err)
	}
	if _, ok := p.live.integrator.(*physics.ExplicitEuler); !ok {
		t.Errorf("live view integrator = %T", p.live.integrator)
	}

	p = press(t, p, TickMsg{})
	if p.live.World().Ticks() != 1 {
		t.Errorf("ticks = %d, want 1", p.live.World().Ticks())
	}
	if !strings.Contains(p.View(), "Ticks") {
		t.Error("picker does not show the live view")
	}

	p = press(t, p, tea.KeyMsg{Type: tea.KeyEsc}, TickMsg{})
	if p.state != stateMenu {
		t.Error("esc did not return to the menu")
	}
	if p.live.World().Ticks() != 1 {
		t.Error("closed live view kept stepping")
	}
}

func TestPickerResolveError(t *testing.T) {
	p := NewPicker([]string{"missing"}, nil, testResolver)
	p = press(t, p, tea.KeyMsg{Type: tea.KeyEnter})
	if p.state != stateMenu || !errors.Is(p.err, errNoScene) {
		t.Errorf("state %d err %v", p.state, p.err)
	}
	if !strings.Contains(p.View(), "no such scene") {
		t.Error("error not shown")
	}
}
