package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/synmed/synviz/pkg/counter"
	"github.com/synmed/synviz/pkg/dataset"
	"github.com/synmed/synviz/pkg/geometry"
	"github.com/synmed/synviz/pkg/pipeline"
	"github.com/synmed/synviz/pkg/piechart"
	"github.com/synmed/synviz/pkg/schedule"
	"github.com/synmed/synviz/pkg/visibility"
)

// Preview layout, in terminal rows and columns. A cell is about twice as
// tall as it is wide, so the pie is twice as many columns as rows.
const (
	previewFPS      = 30
	pieRows         = 11
	pieCols         = pieRows * 2
	counterRows     = 5
	previewHoleSize = 0.38 // centre label hole, relative to the radius
)

var (
	previewTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	previewValueStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// previewCommand creates the preview command: the data section in the
// terminal, revealed as it is scrolled into view.
func (c *CLI) previewCommand() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "preview [dataset]",
		Short: "Scroll through the data section in the terminal",
		Long: `Show the data section in the terminal. It starts one screen below the top,
like the landing page; scroll with ↑/↓ (or j/k, PgUp/PgDn) to bring charts and
counters into view and watch them reveal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), datasetArg(args), locale)
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "number locale: en, ml, hi, bn (default: dataset locale)")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, source, locale string) error {
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	opts := pipeline.Options{Source: source, Locale: locale}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	ds, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}

	m := newPreviewModel(ds, sourceName(source))
	defer m.close()
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// previewModel
// =============================================================================

// tickMsg advances the animation clock to the wall-clock time it carries.
type tickMsg time.Time

// previewItem is one counter or chart placed on the page.
type previewItem struct {
	region  string
	top     int
	rows    int
	label   string
	chart   *piechart.Chart
	counter *counter.Animator
	trigger *visibility.Trigger
}

// previewModel is the bubbletea model of the terminal preview. Charts and
// counters run on a virtual clock that the model advances by wall-clock
// time on every frame tick; the viewport tracks the scroll position and
// fires their visibility triggers.
type previewModel struct {
	title    string
	clock    *schedule.Virtual
	viewport *visibility.Viewport
	items    []*previewItem

	width, height int
	intro         int // rows above the data section
	pageRows      int
	scroll        int
	last          time.Time
	ready         bool
}

func newPreviewModel(ds *dataset.Dataset, title string) *previewModel {
	m := &previewModel{
		title:    title,
		clock:    schedule.NewVirtual(),
		viewport: visibility.NewViewport(0, 0),
	}
	format := ds.Formatter()
	for i := range ds.Counters {
		dc := &ds.Counters[i]
		m.items = append(m.items, &previewItem{
			region:  "counter-" + dc.Name,
			rows:    counterRows,
			label:   dc.Label,
			counter: dc.New(m.clock, format),
		})
	}
	for i := range ds.Charts {
		dc := &ds.Charts[i]
		m.items = append(m.items, &previewItem{
			region: "chart-" + dc.Name,
			rows:   1 + pieRows + 1 + len(dc.Segments) + 1,
			label:  dc.Title,
			chart:  dc.New(m.clock),
		})
	}
	for _, it := range m.items {
		if it.chart != nil {
			it.trigger = visibility.NewTrigger(m.viewport, it.region, visibility.ChartThreshold)
			it.chart.Attach(it.trigger)
		} else {
			it.trigger = visibility.NewTrigger(m.viewport, it.region, visibility.CounterThreshold)
			it.counter.Attach(it.trigger)
		}
	}
	return m
}

func (m *previewModel) close() {
	for _, it := range m.items {
		it.trigger.Close()
		if it.chart != nil {
			it.chart.Close()
		} else {
			it.counter.Close()
		}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/previewFPS, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *previewModel) Init() tea.Cmd {
	return tick()
}

func (m *previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.scrollTo(m.scroll - 1)
		case "down", "j":
			m.scrollTo(m.scroll + 1)
		case "pgup", "b":
			m.scrollTo(m.scroll - m.viewRows())
		case "pgdown", " ", "f":
			m.scrollTo(m.scroll + m.viewRows())
		case "home", "g":
			m.scrollTo(0)
		case "end", "G":
			m.scrollTo(m.pageRows)
		}
	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollTo(m.scroll - 3)
		case tea.MouseButtonWheelDown:
			m.scrollTo(m.scroll + 3)
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		now := time.Time(msg)
		if !m.last.IsZero() {
			m.clock.Advance(now.Sub(m.last))
		}
		m.last = now
		return m, tick()
	}
	return m, nil
}

// viewRows is the number of page rows shown above the status line.
func (m *previewModel) viewRows() int { return max(m.height-1, 1) }

// resize lays the page out for a terminal of w by h cells. The data section
// starts one screen down, so nothing is visible until the reader scrolls.
func (m *previewModel) resize(w, h int) {
	m.width, m.height = w, h
	m.intro = m.viewRows()
	y := m.intro
	for _, it := range m.items {
		it.top = y
		y += it.rows
		m.viewport.Place(it.region, visibility.Rect{X: 0, Y: float64(it.top), W: float64(w), H: float64(it.rows)})
	}
	m.pageRows = y + 1
	m.viewport.Resize(float64(w), float64(m.viewRows()))
	m.ready = true
	m.scrollTo(m.scroll)
}

func (m *previewModel) scrollTo(y int) {
	y = min(y, m.pageRows-m.viewRows())
	m.scroll = max(y, 0)
	m.viewport.ScrollTo(float64(m.scroll))
}

func (m *previewModel) View() string {
	if !m.ready {
		return ""
	}
	page := make([]string, m.pageRows)
	m.renderIntro(page)
	for _, it := range m.items {
		var block []string
		if it.chart != nil {
			block = renderPreviewChart(it.chart.Scene())
		} else {
			block = renderPreviewCounter(it.label, it.counter.Frame())
		}
		copy(page[it.top:it.top+it.rows], block)
	}

	end := min(m.scroll+m.viewRows(), len(page))
	lines := append([]string(nil), page[m.scroll:end]...)
	for len(lines) < m.viewRows() {
		lines = append(lines, "")
	}
	status := fmt.Sprintf("↑/↓ scroll  q quit  %s  %d/%d",
		m.clock.Now().Round(100*time.Millisecond), m.scroll, max(m.pageRows-m.viewRows(), 0))
	lines = append(lines, previewStatusStyle.Render(status))
	return strings.Join(lines, "\n")
}

func (m *previewModel) renderIntro(page []string) {
	mid := m.intro / 2
	if mid < len(page) {
		page[mid] = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, StyleTitle.Render(m.title))
	}
	if mid+2 < len(page) {
		page[mid+2] = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, StyleDim.Render("scroll down"))
	}
}

// renderPreviewCounter paints a counter block: label, value and spacing.
func renderPreviewCounter(label string, f counter.Frame) []string {
	return []string{
		"",
		"  " + StyleDim.Render(label),
		"  " + previewValueStyle.Render(f.Text),
		"",
		"",
	}
}

// renderPreviewChart paints a chart block: title, raster pie and legend.
func renderPreviewChart(s piechart.Scene) []string {
	lines := []string{"  " + previewTitleStyle.Render(s.Title)}
	lines = append(lines, rasterPie(s)...)
	lines = append(lines, "")
	for _, e := range s.Legend {
		if e.Opacity < 0.5 {
			lines = append(lines, "")
			continue
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Fill)).Render(iconDot)
		lines = append(lines, fmt.Sprintf("  %s %s  %s", swatch, StyleValue.Render(e.Label), StyleDim.Render(e.Detail)))
	}
	return append(lines, "")
}

// rasterPie samples the scene on a pieRows by pieCols grid. Each cell shows
// the slice under its centre, shaded by the slice's opacity and clipped to
// its current scale.
func rasterPie(s piechart.Scene) []string {
	sectors := make([]geometry.Sector, len(s.Slices))
	for i, sl := range s.Slices {
		sectors[i] = sl.Sector
	}
	styles := make([]lipgloss.Style, len(s.Slices))
	for i, sl := range s.Slices {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(sl.Fill))
	}

	centreRow := pieRows / 2
	label := []rune(s.Center)
	labelStart := (pieCols - len(label)) / 2

	lines := make([]string, pieRows)
	for row := range pieRows {
		var b strings.Builder
		b.WriteString("  ")
		for col := 0; col < pieCols; col++ {
			if s.Center != "" && row == centreRow && col >= labelStart && col < labelStart+len(label) {
				b.WriteString(StyleValue.Render(string(label[col-labelStart])))
				continue
			}
			x := (float64(col)+0.5)/pieCols*2 - 1
			y := (float64(row)+0.5)/pieRows*2 - 1
			r := math.Hypot(x, y)
			if s.Center != "" && r < previewHoleSize {
				b.WriteByte(' ')
				continue
			}
			// Angles run clockwise from 12 o'clock, as in the rotated SVG.
			idx := geometry.Locate(sectors, math.Atan2(y, x)*180/math.Pi+90)
			if idx < 0 || r > s.Slices[idx].Scale || s.Slices[idx].Opacity <= 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(styles[idx].Render(shade(s.Slices[idx].Opacity)))
		}
		lines[row] = b.String()
	}
	return lines
}

func shade(opacity float64) string {
	switch {
	case opacity < 0.34:
		return "░"
	case opacity < 0.67:
		return "▒"
	}
	return "█"
}
