package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 60
	height          = 20
	panelWidth      = 50
	historyCapacity = 600
	trailLength     = 300
	maxStepsPerTick = 64
	maxStretchBars  = 8
	frameRate       = 60
)

// KickImpulse is the velocity change an arrow key gives the selected body.
const KickImpulse = 0.25

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model animates one scene. Every frame it steps the world stepsPerTick
// times and redraws it; the scene's scheduled kicks fire as in a batch run.
type Model struct {
	scene      *config.Config
	integrator physics.Integrator

	world   *sim.World
	simCfg  sim.Config
	applied []bool
	shapes  []*SpringShape
	movable []physics.BodyID

	canvas   *Canvas
	viewport Viewport
	trail    *Trail

	theme  Theme
	styles Styles

	running       bool
	showHelp      bool
	selected      int
	stepsPerTick  int
	energyHistory []float64
	xHistory      []float64
	err           error
}

// NewModel builds the scene. A nil integrator keeps the world's default.
func NewModel(scene *config.Config, integrator physics.Integrator) (Model, error) {
	theme := Themes[0]
	m := Model{
		scene:        scene,
		integrator:   integrator,
		canvas:       NewCanvas(width, height),
		trail:        NewTrail(trailLength),
		theme:        theme,
		styles:       NewStyles(theme),
		running:      true,
		stepsPerTick: 1,
	}
	if err := m.build(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// build (re)creates the world from the scene and frames it.
func (m *Model) build() error {
	w, simCfg, err := experiment.Build(m.scene)
	if err != nil {
		return err
	}
	if m.integrator != nil {
		w.SetIntegrator(m.integrator)
	}
	shapes, err := AttachShapes(w, m.scene)
	if err != nil {
		return err
	}

	movable := make([]physics.BodyID, 0, len(w.Bodies()))
	for _, b := range w.Bodies() {
		if b.IsMovable() {
			movable = append(movable, b.ID())
		}
	}

	m.world, m.simCfg, m.shapes, m.movable = w, simCfg, shapes, movable
	m.applied = make([]bool, len(simCfg.Kicks))
	m.selected = 0
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.xHistory = make([]float64, 0, historyCapacity)
	m.trail.Reset()
	m.err = nil
	m.refit()
	return nil
}

// refit frames the current state with one world unit of slack.
func (m *Model) refit() {
	m.viewport = FitViewport(m.canvas, Extent(m.world, m.shapes), 1.0)
}

func (m Model) World() *sim.World { return m.world }
func (m Model) Running() bool     { return m.running }
func (m Model) Err() error        { return m.err }

// Selected returns the body arrow keys kick, if the scene has one.
func (m Model) Selected() (physics.BodyID, bool) {
	if len(m.movable) == 0 {
		return 0, false
	}
	return m.movable[m.selected], true
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.advance(1)
			}
		case "r":
			if err := m.build(); err != nil {
				m.err = err
				m.running = false
			}
		case "tab":
			if len(m.movable) > 0 {
				m.selected = (m.selected + 1) % len(m.movable)
				m.trail.Reset()
				m.xHistory = m.xHistory[:0]
			}
		case "up", "k":
			m.kick(r3.Vec{Y: KickImpulse})
		case "down", "j":
			m.kick(r3.Vec{Y: -KickImpulse})
		case "left", "h":
			m.kick(r3.Vec{X: -KickImpulse})
		case "right", "l":
			m.kick(r3.Vec{X: KickImpulse})
		case "+", "=":
			m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.stepsPerTick = max(m.stepsPerTick/2, 1)
		case "f":
			m.refit()
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-6, 20)
		h := max(msg.Height-4, 8)
		m.canvas = NewCanvas(w, h)
		m.refit()
	case TickMsg:
		if m.running {
			m.advance(m.stepsPerTick)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) kick(dv r3.Vec) {
	id, ok := m.Selected()
	if !ok {
		return
	}
	if err := m.world.Kick(id, dv); err != nil {
		m.fail(err)
	}
}

// advance steps the world n ticks, firing due kicks before each one. Any
// failure pauses the view and is shown in the panel.
func (m *Model) advance(n int) {
	if m.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		if _, err := sim.ApplyKicks(m.world, m.simCfg.Kicks, m.applied); err != nil {
			m.fail(err)
			return
		}
		if err := m.world.Step(m.simCfg.Dt); err != nil {
			m.fail(err)
			return
		}
		if !m.world.IsValid() {
			m.fail(fmt.Errorf("t=%.3f: %w", m.world.Time(), dynamo.ErrInvalidState))
			return
		}
	}
	m.record()
}

func (m *Model) fail(err error) {
	m.err = err
	m.running = false
}

func (m *Model) record() {
	ke, pe := m.world.Energy()
	m.energyHistory = pushCapped(m.energyHistory, ke+pe)
	if id, ok := m.Selected(); ok {
		b, _ := m.world.Body(id)
		m.trail.Push(b.Position())
		m.xHistory = pushCapped(m.xHistory, b.Position().X)
	}
}

func pushCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// draw renders the current world state onto the canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	m.trail.Draw(m.canvas, m.viewport)
	DrawWorld(m.canvas, m.viewport, m.world, m.shapes)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	st := m.styles
	canvasView := st.Canvas.Render(m.canvas.String())

	var s strings.Builder
	title := m.scene.Name
	if title == "" {
		title = "springsim"
	}
	s.WriteString(GradientText(strings.ToUpper(title), m.theme.Primary, m.theme.Secondary) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(st.Error.Render("ERROR") + "\n")
	case m.running:
		s.WriteString(st.Running.Render("RUNNING") + st.Subtle.Render(fmt.Sprintf("  x%d", m.stepsPerTick)) + "\n")
	default:
		s.WriteString(st.Paused.Render("PAUSED") + "\n")
	}
	s.WriteString("\n")

	ke, pe := m.world.Energy()
	row := func(label, value string) {
		s.WriteString(st.MetricLabel.Render(label) + st.MetricValue.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.world.Time()))
	row("Ticks", fmt.Sprintf("%d", m.world.Ticks()))
	row("Kinetic", fmt.Sprintf("%.4f", ke))
	row("Potential", fmt.Sprintf("%.4f", pe))
	row("Total", fmt.Sprintf("%.4f", ke+pe))

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.Graph.Render(chart) + "\n")
	}

	s.WriteString("\n" + st.Title.Render("SPRINGS") + "\n")
	springs := m.world.Springs()
	for i, sp := range springs {
		if i == maxStretchBars {
			s.WriteString(st.Subtle.Render(fmt.Sprintf("  +%d more", len(springs)-i)) + "\n")
			break
		}
		name := m.world.NameOf(sp.Start().ID()) + "-" + m.world.NameOf(sp.End().ID())
		s.WriteString(fmt.Sprintf("%-10s %s %5.2f\n", truncate(name, 10), st.StretchBar(sp.StretchRatio(), 0.5, 16), sp.StretchRatio()))
	}

	if id, ok := m.Selected(); ok {
		b, _ := m.world.Body(id)
		p := b.Position()
		s.WriteString("\n" + st.Selected.Render("> "+m.world.NameOf(id)) + st.Subtle.Render("  "+physics.Label(b.Mass())) + "\n")
		row("Position", fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y))
		s.WriteString(st.Sparkline(m.xHistory, 30) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + st.Error.Render(truncate(m.err.Error(), panelWidth-6)) + "\n")
	}

	s.WriteString("\n" + st.Separator(panelWidth-6) + "\n")
	s.WriteString(st.KeyHint.Render("space pause  n step  r reset  q quit\ntab select  ←↑↓→ kick  +/- speed\nt theme  f refit  ? help"))

	panel := st.Panel.Width(panelWidth).Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step when paused  ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  Tab      - Select next mass         ║
║  Arrows   - Kick the selected mass   ║
║  + / -    - Double/halve speed       ║
║  F        - Refit the view           ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// Run opens the live view on scene until the user quits.
func Run(scene *config.Config, integrator physics.Integrator) error {
	m, err := NewModel(scene, integrator)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
