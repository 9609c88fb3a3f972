// Package tui is the terminal dashboard over the distribution views.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dilma-lab/dilma/internal/domain"
	"github.com/dilma-lab/dilma/internal/service/views"
)

// ViewSource is what the dashboard reads. *views.Service satisfies it.
type ViewSource interface {
	Reload(ctx context.Context) error
	Stats() views.Stats
	Axes() []views.Axis
	Models(c views.Context) []string
	Tractates() []string
	Dilemma(id string) (*domain.DilemmaRecord, bool)
	TagDistribution(c views.Context) []views.TagCount
	AxisDistribution(c views.Context, models []string) []views.AxisCount
	Compare(c views.Context) (views.Comparison, error)
}

// Option customizes App construction.
type Option func(*App)

// WithGlamourStyle selects a named glamour style instead of detecting one
// from the terminal.
func WithGlamourStyle(style string) Option {
	return func(a *App) { a.glamourStyle = style }
}

// WithContext sets the initial filter context.
func WithContext(c views.Context) Option {
	return func(a *App) { a.ctx = c }
}

type reloadedMsg struct{ err error }

// App is the dashboard model.
type App struct {
	svc  ViewSource
	page page
	ctx  views.Context

	table   table.Model
	summary string
	viewErr error
	err     error

	glamourStyle string
	renderer     *glamour.TermRenderer
	preview      string

	width  int
	height int
}

// NewApp creates the dashboard. Model A and B default to the first two
// models in the dataset.
func NewApp(svc ViewSource, opts ...Option) (*App, error) {
	a := &App{svc: svc}
	for _, opt := range opts {
		opt(a)
	}

	style := glamour.WithAutoStyle()
	if a.glamourStyle != "" {
		style = glamour.WithStandardStyle(a.glamourStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
	if err != nil {
		return nil, err
	}
	a.renderer = r

	a.table = table.New(
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithStyles(tableStyles()),
	)
	a.defaultModels()
	a.refresh()
	return a, nil
}

func (a *App) defaultModels() {
	models := a.svc.Models(views.Context{})
	if a.ctx.ModelA == "" && len(models) > 0 {
		a.ctx.ModelA = models[0]
	}
	if a.ctx.ModelB == "" && len(models) > 1 {
		a.ctx.ModelB = models[1]
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		if h := msg.Height - 12; h > 3 {
			a.table.SetHeight(h)
		}
		return a, nil

	case reloadedMsg:
		a.err = msg.err
		a.defaultModels()
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "tab", "right":
			a.setPage((a.page + 1) % page(len(pageTitles)))
			return a, nil
		case "shift+tab", "left":
			a.setPage((a.page + page(len(pageTitles)) - 1) % page(len(pageTitles)))
			return a, nil
		case "1", "2", "3":
			a.setPage(page(msg.String()[0] - '1'))
			return a, nil
		case "t":
			a.ctx.Tractate = cycle(a.svc.Tractates(), a.ctx.Tractate, true)
		case "d":
			next := cycle([]string{string(domain.DilemmaTypeOriginal), string(domain.DilemmaTypeNeutral)}, string(a.ctx.DilemmaType), true)
			a.ctx.DilemmaType = domain.DilemmaType(next)
		case "a":
			a.ctx.ModelA = cycle(a.svc.Models(views.Context{}), a.ctx.ModelA, false)
		case "b":
			a.ctx.ModelB = cycle(a.svc.Models(views.Context{}), a.ctx.ModelB, false)
		case "x":
			a.ctx.Axis = cycle(axisNames(a.svc.Axes()), a.ctx.Axis, true)
		case "r":
			svc := a.svc
			return a, func() tea.Msg {
				return reloadedMsg{err: svc.Reload(context.Background())}
			}
		case "enter":
			a.showPreview()
			return a, nil
		case "esc":
			a.preview = ""
			return a, nil
		default:
			var cmd tea.Cmd
			a.table, cmd = a.table.Update(msg)
			return a, cmd
		}
		a.preview = ""
		a.refresh()
		return a, nil
	}
	return a, nil
}

func (a *App) setPage(p page) {
	a.page = p
	a.preview = ""
	a.refresh()
}

// refresh recomputes the current page from a.ctx.
func (a *App) refresh() {
	var data tableData
	switch a.page {
	case pageAxes:
		data = a.axesData()
	case pageCompare:
		data = a.compareData()
	default:
		data = a.overviewData()
	}

	// Rows go first: the table renders existing rows against new columns.
	a.table.SetRows(nil)
	a.table.SetColumns(data.columns)
	a.table.SetRows(data.rows)
	a.table.SetCursor(0)
	a.summary = data.summary
	a.viewErr = data.err
}

func (a *App) showPreview() {
	if a.page != pageCompare {
		return
	}
	row := a.table.SelectedRow()
	if len(row) == 0 {
		return
	}
	rec, ok := a.svc.Dilemma(row[0])
	if !ok {
		return
	}
	out, err := a.renderer.Render(previewMarkdown(rec))
	if err != nil {
		a.err = err
		return
	}
	a.preview = out
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("dilma"))
	b.WriteString(" ")
	tabs := make([]string, len(pageTitles))
	for i, title := range pageTitles {
		if page(i) == a.page {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = tabStyle.Render(title)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	b.WriteString(contextStyle.Render(
		"tractate: " + orAll(a.ctx.Tractate) +
			"  type: " + orAll(a.ctx.DilemmaType.String()) +
			"  axis: " + orAll(a.ctx.Axis) +
			"  A: " + orAll(a.ctx.ModelA) +
			"  B: " + orAll(a.ctx.ModelB)))
	b.WriteString("\n")
	if a.summary != "" {
		b.WriteString(contextStyle.Render(a.summary))
		b.WriteString("\n")
	}
	for _, err := range []error{a.err, a.viewErr} {
		if err != nil {
			b.WriteString(errorStyle.Render("error: " + err.Error()))
			b.WriteString("\n")
		}
	}

	b.WriteString(a.table.View())
	b.WriteString("\n")
	if a.preview != "" {
		b.WriteString(previewStyle.Render(strings.TrimRight(a.preview, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render("tab page · t tractate · d type · x axis · a/b models · enter preview · r reload · q quit"))
	return b.String()
}

// Run starts the dashboard on the terminal and blocks until it exits.
func Run(a *App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}
