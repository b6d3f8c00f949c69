package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/aquarium/internal/config"
	"github.com/san-kum/aquarium/internal/metrics"
	"github.com/san-kum/aquarium/internal/sim"
	"github.com/san-kum/aquarium/internal/todo"
)

const (
	panelWidth = 44
	gifPath    = "aquarium.gif"
)

type TickMsg time.Time

// Saver persists the item list. storage.Store satisfies it.
type Saver interface {
	SaveItems([]todo.Item) error
}

// Model is the terminal aquarium. Window size messages drive the engine's
// viewport and tick messages pump its frame scheduler, so the engine only
// ever runs inside Update.
type Model struct {
	cfg    *config.Config
	saver  Saver
	engine *sim.Engine
	sched  *sim.ManualScheduler

	items    []todo.Item
	selected int

	width, height int
	canvas        *Canvas

	motion   *metrics.Motion
	altitude *metrics.Altitude

	adding   bool
	input    string
	priority todo.Priority

	status    string
	err       error
	showHelp  bool
	recording bool
	frames    []*image.Paletted
	now       func() time.Time
}

func NewModel(cfg *config.Config, items []todo.Item, saver Saver) *Model {
	m := &Model{
		cfg:      cfg,
		saver:    saver,
		sched:    sim.NewManualScheduler(),
		items:    items,
		canvas:   NewCanvas(0, 0),
		motion:   metrics.NewMotion(120),
		altitude: metrics.NewAltitude(),
		priority: todo.Medium,
		now:      time.Now,
	}
	m.engine = sim.New(cfg.Physics, m.sched, m.onFrame)
	return m
}

func (m *Model) Engine() *sim.Engine { return m.engine }
func (m *Model) Items() []todo.Item  { return m.items }

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.Viewer.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m, m.inputKey(msg)
		}
		return m, m.key(msg)
	case TickMsg:
		m.sched.Pump()
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// resize maps the terminal to a viewport in pixels: each cell is
// CellWidth x CellHeight px.
func (m *Model) resize(cols, rows int) {
	m.width, m.height = cols, rows
	canvasCols := cols - panelWidth - 2
	canvasRows := rows - 1
	if canvasCols < 0 {
		canvasCols = 0
	}
	if canvasRows < 0 {
		canvasRows = 0
	}
	m.canvas = NewCanvas(canvasCols, canvasRows)
	m.engine.Resize(sim.Size{
		Width:  float64(canvasCols) * m.cfg.Viewer.CellWidth,
		Height: float64(canvasRows) * m.cfg.Viewer.CellHeight,
	})
	m.engine.Reconcile(m.items)
	m.motion.Reset()
}

func (m *Model) onFrame(f sim.Frame) {
	m.items = todo.ApplyPositions(m.items, f.Positions)
	m.engine.Reconcile(m.items)
	m.motion.Observe(f)
	m.altitude.Observe(f)
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.save()
		m.engine.Close()
		return tea.Quit
	case "a":
		m.adding, m.input = true, ""
	case "tab", "j", "down":
		if len(m.items) > 0 {
			m.selected = (m.selected + 1) % len(m.items)
		}
	case "shift+tab", "k", "up":
		if len(m.items) > 0 {
			m.selected = (m.selected - 1 + len(m.items)) % len(m.items)
		}
	case " ", "enter":
		if it, ok := m.current(); ok {
			m.edit(func(list []todo.Item) ([]todo.Item, error) {
				return todo.Toggle(list, it.ID, m.now())
			})
		}
	case "d", "delete":
		if it, ok := m.current(); ok {
			m.edit(func(list []todo.Item) ([]todo.Item, error) {
				return todo.Delete(list, it.ID)
			})
		}
	case "X":
		m.edit(func(list []todo.Item) ([]todo.Item, error) {
			return todo.Clear(list), nil
		})
	case "t":
		NextTheme()
	case "g":
		if m.recording {
			m.saveGIF()
			m.recording, m.frames = false, nil
		} else {
			m.recording, m.frames = true, nil
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) inputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		content, p := m.input, m.priority
		m.adding, m.input = false, ""
		m.edit(func(list []todo.Item) ([]todo.Item, error) {
			next, _, err := todo.Add(list, content, p, m.now())
			return next, err
		})
	case tea.KeyEsc:
		m.adding, m.input = false, ""
	case tea.KeyTab:
		m.priority = m.priority.Next()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyCtrlC:
		m.adding = false
		return m.key(msg)
	}
	return nil
}

// edit applies a list change, reconciles the world and saves right away.
// Position-only changes are saved on quit.
func (m *Model) edit(cmd sim.Command) {
	next, err := cmd(m.items)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.items = next
	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	stats := m.engine.Reconcile(m.items)
	m.status = fmt.Sprintf("+%d ~%d -%d", stats.Created, stats.Updated, stats.Removed)
	m.save()
}

func (m *Model) save() {
	if m.saver == nil {
		return
	}
	if err := m.saver.SaveItems(m.items); err != nil {
		m.err = err
	}
}

func (m *Model) current() (todo.Item, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return todo.Item{}, false
	}
	return m.items[m.selected], true
}

// dots converts viewport pixels to canvas dots.
func (m *Model) dots(px float64, cell float64, perCell int) int {
	return int(math.Round(px / cell * float64(perCell)))
}

func (m *Model) draw() {
	m.canvas.Clear()
	cw, ch := m.cfg.Viewer.CellWidth, m.cfg.Viewer.CellHeight
	sel, _ := m.current()

	// Labels go in after every outline so their cells stay readable.
	type label struct {
		col, row int
		text     string
	}
	var labels []label

	for _, b := range m.engine.Inspect().Bodies {
		cx := m.dots(b.Position.X, cw, 2)
		cy := m.dots(b.Position.Y, ch, 4)
		r := m.dots(b.Radius, cw, 2)
		m.canvas.DrawCircle(cx, cy, r, b.Meta.Completed)
		m.canvas.DrawSpoke(cx, cy, r/3, b.Position.Angle)

		it, _ := todo.Find(m.items, b.ID)
		maxRunes := int(2 * b.Radius / cw)
		text := truncate(it.Content, maxRunes-2)
		if b.ID == sel.ID {
			text = "▸" + text
		}
		n := len([]rune(text))
		labels = append(labels, label{col: cx/2 - n/2, row: cy/4 + 1, text: text})
	}
	for _, l := range labels {
		m.canvas.Text(l.col, l.row, l.text)
	}
}

func (m *Model) View() string {
	if m.showHelp {
		return helpView()
	}

	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(titleStyle().Render("AQUARIUM") + "\n")

	snap := m.engine.Inspect()
	state := "waiting for viewport"
	if snap.Live {
		state = fmt.Sprintf("%.0fx%.0f px  tick %d", snap.Size.Width, snap.Size.Height, snap.Tick)
	}
	s.WriteString(helpStyle.Render(state) + "\n")
	if m.recording {
		s.WriteString(StatusRecording.Render("● REC") + "\n")
	}
	s.WriteString("\n")

	if len(m.items) == 0 {
		s.WriteString(helpStyle.Render("no bubbles yet, press a") + "\n")
	}
	for i, it := range m.items {
		mark := "○"
		if it.Completed {
			mark = "●"
		}
		line := fmt.Sprintf("%s %-6s %s", mark, it.Priority, truncate(it.Content, panelWidth-14))
		style := lipgloss.NewStyle().Foreground(CurrentTheme.ItemColor(it))
		if i == m.selected {
			s.WriteString(style.Bold(true).Render("> "+line) + "\n")
		} else {
			s.WriteString(style.Render("  "+line) + "\n")
		}
	}

	s.WriteString("\n" + Separator(panelWidth-6) + "\n")
	if hist := m.motion.History(); len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(panelWidth-14), asciigraph.Caption("Motion px/frame"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	s.WriteString(labelStyle.Render("Altitude") + ProgressBar(m.altitude.Value(), 20) + "\n")
	s.WriteString(labelStyle.Render("Bubbles") + valueStyle.Render(fmt.Sprintf("%d", len(snap.Bodies))) + "\n")
	s.WriteString(labelStyle.Render("Theme") + valueStyle.Render(CurrentTheme.Name) + "\n")

	if m.adding {
		prompt := fmt.Sprintf("new [%s] %s█", m.priority, m.input)
		s.WriteString("\n" + promptStyle.Render(prompt) + "\n")
		s.WriteString(helpStyle.Render("tab: priority  enter: add  esc: cancel") + "\n")
	} else {
		s.WriteString("\n" + helpStyle.Render("a:add spc:done d:del tab:next ?:help q:quit") + "\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString(helpStyle.Render(m.status) + "\n")
	}

	panel := panelStyle.Width(panelWidth).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
}

func helpView() string {
	return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  A        - Add a bubble             ║
║  Tab/J/K  - Select next / previous   ║
║  Space    - Toggle done              ║
║  D        - Delete selected          ║
║  X        - Delete everything        ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Save and quit            ║
╚══════════════════════════════════════╝
`
}

func (m *Model) captureFrame() {
	charW, charH := 8, 16
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	if imgW == 0 || imgH == 0 {
		return
	}
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < m.canvas.Height*4; y++ {
		for x := 0; x < m.canvas.Width*2; x++ {
			if !m.canvas.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(gifPath)
	if err != nil {
		m.err = err
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.err = err
		return
	}
	m.status = "saved " + gifPath
}

// Run starts the viewer on the alternate screen and returns the final list.
func Run(cfg *config.Config, items []todo.Item, saver Saver) ([]todo.Item, error) {
	m := NewModel(cfg, items, saver)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}
	return m.Items(), nil
}
