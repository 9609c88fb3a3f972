package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/dilma-lab/dilma/internal/domain"
	"github.com/dilma-lab/dilma/internal/service/views"
)

type page int

const (
	pageOverview page = iota
	pageAxes
	pageCompare
)

var pageTitles = []string{"Overview", "Axes", "Compare"}

func (p page) String() string { return pageTitles[p] }

// tableData is what one page puts in the table.
type tableData struct {
	columns []table.Column
	rows    []table.Row
	summary string
	err     error
}

func (a *App) overviewData() tableData {
	tags := a.svc.TagDistribution(a.ctx)
	rows := make([]table.Row, 0, len(tags))
	for _, tc := range tags {
		rows = append(rows, table.Row{tc.Tag, strconv.Itoa(tc.Count)})
	}
	st := a.svc.Stats()
	return tableData{
		columns: []table.Column{{Title: "Tag", Width: 32}, {Title: "Count", Width: 8}},
		rows:    rows,
		summary: fmt.Sprintf("%d dilemmas · %d rows · %d models", st.Dilemmas, st.Rows, len(a.svc.Models(a.ctx))),
	}
}

func (a *App) axesData() tableData {
	counts := a.svc.AxisDistribution(a.ctx, nil)
	rows := make([]table.Row, 0, len(counts))
	for _, c := range counts {
		if a.ctx.Axis != "" && c.Axis != a.ctx.Axis {
			continue
		}
		rows = append(rows, table.Row{
			c.Axis, c.Model,
			strconv.Itoa(c.Self), strconv.Itoa(c.Other), strconv.Itoa(c.Invalid),
		})
	}
	return tableData{
		columns: []table.Column{
			{Title: "Axis", Width: 28},
			{Title: "Model", Width: 24},
			{Title: "Self", Width: 6},
			{Title: "Other", Width: 6},
			{Title: "Invalid", Width: 8},
		},
		rows: rows,
	}
}

var compareColumns = []table.Column{
	{Title: "Dilemma", Width: 16},
	{Title: "Type", Width: 9},
	{Title: "A", Width: 8},
	{Title: "B", Width: 8},
	{Title: "Pole A", Width: 8},
	{Title: "Pole B", Width: 8},
	{Title: "Title", Width: 32},
}

func (a *App) compareData() tableData {
	data := tableData{columns: compareColumns}

	cmp, err := a.svc.Compare(a.ctx)
	if err != nil {
		data.err = err
		return data
	}
	for _, d := range cmp.Dilemmas {
		data.rows = append(data.rows, table.Row{
			d.DilemmaID, d.DilemmaType.String(),
			d.ChoiceA.String(), d.ChoiceB.String(),
			d.PoleA, d.PoleB, d.Title,
		})
	}
	changed := "none"
	if len(cmp.AxesWithDiff) > 0 {
		changed = strings.Join(cmp.AxesWithDiff, ", ")
	}
	data.summary = fmt.Sprintf("%s vs %s · %d differing dilemmas · axes changed: %s",
		cmp.ModelA, cmp.ModelB, len(cmp.Dilemmas), changed)
	return data
}

// previewMarkdown renders a dilemma the way a model sees it.
func previewMarkdown(rec *domain.DilemmaRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", rec.Title)
	fmt.Fprintf(&b, "_%s · %s · %s_\n\n", rec.ID, rec.Order, rec.Tractate)
	fmt.Fprintf(&b, "%s\n\n", rec.Vignette)
	for _, o := range rec.Options {
		fmt.Fprintf(&b, "- **%s**: %s", o.ID, o.Text)
		if len(o.Tags) > 0 {
			fmt.Fprintf(&b, " `%s`", strings.Join(o.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cycle returns the value after cur in values, wrapping around. With
// withAll the empty value, meaning "all", is part of the ring.
func cycle(values []string, cur string, withAll bool) string {
	ring := values
	if withAll {
		ring = append([]string{""}, values...)
	}
	if len(ring) == 0 {
		return ""
	}
	for i, v := range ring {
		if v == cur {
			return ring[(i+1)%len(ring)]
		}
	}
	return ring[0]
}

func axisNames(axes []views.Axis) []string {
	out := make([]string, len(axes))
	for i, ax := range axes {
		out[i] = ax.Name
	}
	return out
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
