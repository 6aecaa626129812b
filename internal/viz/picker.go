package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/physics"
)

// Resolver turns a scene and integrator name into something runnable.
type Resolver func(scene, integrator string) (*config.Config, physics.Integrator, error)

const (
	stateMenu = iota
	stateLive
)

// Picker is a menu of scenes that opens the chosen one in a live Model.
// Esc in the live view returns to the menu.
type Picker struct {
	state       int
	cursor      int
	scenes      []string
	integrators []string
	integrator  int
	resolve     Resolver
	live        Model
	err         error
	styles      Styles
}

func NewPicker(scenes, integrators []string, resolve Resolver) Picker {
	return Picker{
		scenes:      scenes,
		integrators: integrators,
		resolve:     resolve,
		styles:      NewStyles(Themes[0]),
	}
}

// Integrator returns the integrator name new scenes open with.
func (p Picker) Integrator() string {
	if len(p.integrators) == 0 {
		return ""
	}
	return p.integrators[p.integrator]
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateLive {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	// ticks left over from a closed live view end here
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenes)-1 {
			p.cursor++
		}
	case "i":
		if len(p.integrators) > 0 {
			p.integrator = (p.integrator + 1) % len(p.integrators)
		}
	case "enter", " ":
		return p.open()
	}
	return p, nil
}

func (p Picker) open() (Picker, tea.Cmd) {
	if len(p.scenes) == 0 {
		return p, nil
	}
	scene, integ, err := p.resolve(p.scenes[p.cursor], p.Integrator())
	if err != nil {
		p.err = err
		return p, nil
	}
	live, err := NewModel(scene, integ)
	if err != nil {
		p.err = err
		return p, nil
	}
	p.live, p.state, p.err = live, stateLive, nil
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateLive {
		return p.live.View()
	}

	st := p.styles
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("SPRINGSIM", Themes[0].Primary, Themes[0].Secondary) + "\n")
	b.WriteString("    " + st.Subtle.Render("mass-spring simulation") + "\n")
	b.WriteString("    " + st.Separator(25) + "\n\n")

	for i, name := range p.scenes {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s\n", st.Selected.Render("▸"), st.MetricValue.Render(name)))
		} else {
			b.WriteString(fmt.Sprintf("      %s\n", st.Subtle.Render(name)))
		}
	}

	b.WriteString("\n    " + st.MetricLabel.Render("integrator") + st.Title.Render(p.Integrator()) + "\n")
	if p.err != nil {
		b.WriteString("\n    " + st.Error.Render(p.err.Error()) + "\n")
	}

	hint := lipgloss.JoinHorizontal(lipgloss.Top,
		st.Title.Render("j/k"), st.KeyHint.Render(" navigate  "),
		st.Title.Render("enter"), st.KeyHint.Render(" open  "),
		st.Title.Render("i"), st.KeyHint.Render(" integrator  "),
		st.Title.Render("q"), st.KeyHint.Render(" quit"),
	)
	b.WriteString("\n    " + hint + "\n")
	return b.String()
}

// RunPicker opens the scene menu until the user quits.
func RunPicker(scenes, integrators []string, resolve Resolver) error {
	_, err := tea.NewProgram(NewPicker(scenes, integrators, resolve), tea.WithAltScreen()).Run()
	return err
}
