package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jaigner-hub/msgdesk/internal/dashboard"
)

const (
	dashFieldMonthlyYear = iota
	dashFieldStatusYear
	dashFieldStatusMonth
	dashFieldCount // sentinel
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// dashForm holds the editable parameters of the query panels. Parse errors
// belong to the panel whose field failed.
type dashForm struct {
	fields   [dashFieldCount]textinput.Model
	field    int
	inputErr [dashFieldCount]string
}

func newDashForm(b *dashboard.Board) dashForm {
	var f dashForm
	values := [dashFieldCount]int{
		b.Monthly.Query().Year,
		b.Status.Query().Year,
		b.Status.Query().Month,
	}
	for i := range f.fields {
		t := textinput.New()
		t.CharLimit = 4
		t.Width = 5
		t.Prompt = ""
		t.SetValue(strconv.Itoa(values[i]))
		f.fields[i] = t
	}
	f.focusField(dashFieldMonthlyYear)
	return f
}

func (f *dashForm) focusField(i int) {
	f.field = (i%dashFieldCount + dashFieldCount) % dashFieldCount
	for j := range f.fields {
		if j == f.field {
			f.fields[j].Focus()
		} else {
			f.fields[j].Blur()
		}
	}
}

func (f *dashForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.field], cmd = f.fields[f.field].Update(msg)
	return cmd
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.board == nil {
		return *m, nil
	}
	f := &m.dash
	switch {
	case key.Matches(msg, keys.NextField):
		f.focusField(f.field + 1)
		return *m, textinput.Blink
	case key.Matches(msg, keys.PrevField):
		f.focusField(f.field - 1)
		return *m, textinput.Blink
	case key.Matches(msg, keys.Refresh):
		return *m, tea.Batch(m.fetchMonthly(), m.fetchStatus(), m.fetchRanking())
	case key.Matches(msg, keys.Enter):
		return *m, m.applyDashField(f.field, true)
	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		n, err := strconv.Atoi(strings.TrimSpace(f.fields[f.field].Value()))
		if err != nil {
			return *m, nil
		}
		if key.Matches(msg, keys.Up) {
			n++
		} else {
			n--
		}
		if f.field == dashFieldStatusMonth {
			n = (n+11)%12 + 1
		}
		f.fields[f.field].SetValue(strconv.Itoa(n))
		f.fields[f.field].CursorEnd()
		return *m, m.applyDashField(f.field, false)
	}
	return *m, f.update(msg)
}

// applyDashField parses field i into its panel's parameters. A change
// always triggers a request; force also re-issues unchanged parameters.
func (m *Model) applyDashField(i int, force bool) tea.Cmd {
	f := &m.dash
	n, err := strconv.Atoi(strings.TrimSpace(f.fields[i].Value()))
	if err != nil {
		f.inputErr[i] = fmt.Sprintf("%q is not a number", f.fields[i].Value())
		return nil
	}
	f.inputErr[i] = ""

	switch i {
	case dashFieldMonthlyYear:
		q := m.board.Monthly.Query()
		q.Year = n
		if m.board.Monthly.SetQuery(q) || force {
			return m.fetchMonthly()
		}
	case dashFieldStatusYear, dashFieldStatusMonth:
		q := m.board.Status.Query()
		if i == dashFieldStatusYear {
			q.Year = n
		} else {
			q.Month = n
		}
		if m.board.Status.SetQuery(q) || force {
			return m.fetchStatus()
		}
	}
	return nil
}

// fetchStaleDashboard requests every panel that has neither a result nor a
// pending request.
func (m *Model) fetchStaleDashboard() tea.Cmd {
	if m.board == nil {
		return nil
	}
	var cmds []tea.Cmd
	if _, ok := m.board.Monthly.Result(); !ok && !m.board.Monthly.Loading() {
		cmds = append(cmds, m.fetchMonthly())
	}
	if _, ok := m.board.Status.Result(); !ok && !m.board.Status.Loading() {
		cmds = append(cmds, m.fetchStatus())
	}
	if _, ok := m.board.Ranking.Result(); !ok && !m.board.Ranking.Loading() {
		cmds = append(cmds, m.fetchRanking())
	}
	return tea.Batch(cmds...)
}

func (m *Model) fetchMonthly() tea.Cmd {
	t := m.board.Monthly.Begin()
	svc, ctx, cost, epoch := m.backend, m.ctx, m.board.CostPerMessage, m.epoch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := dashboard.FetchMonthly(ctx, svc, t.Query, cost)
		return monthlyMsg{epoch: epoch, ticket: t, result: r, err: err}
	})
}

func (m *Model) fetchStatus() tea.Cmd {
	t := m.board.Status.Begin()
	svc, ctx, epoch := m.backend, m.ctx, m.epoch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := dashboard.FetchStatus(ctx, svc, t.Query)
		return statusMsg{epoch: epoch, ticket: t, result: r, err: err}
	})
}

func (m *Model) fetchRanking() tea.Cmd {
	t := m.board.Ranking.Begin()
	svc, ctx, epoch := m.backend, m.ctx, m.epoch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		r, err := dashboard.FetchRanking(ctx, svc, t.Query)
		return rankingMsg{epoch: epoch, ticket: t, result: r, err: err}
	})
}

func (m Model) renderDashboard(width, height int) string {
	if m.board == nil {
		return dimStyle.Render("Sign in to see the dashboard")
	}
	colW := max(width/3-2, 20)
	panels := []string{
		m.renderMonthlyPanel(colW),
		m.renderStatusPanel(colW),
		m.renderRankingPanel(colW),
	}
	for i, p := range panels {
		style := panelBorder
		if (i == 0) == (m.dash.field == dashFieldMonthlyYear) && i < 2 {
			style = activePanelBorder
		}
		panels[i] = style.Width(colW).Height(max(height-2, 3)).Render(p)
	}
	return lipgloss.NewStyle().MaxHeight(height).Render(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
}

func (m Model) fieldView(i int) string {
	v := m.dash.fields[i].View()
	if e := m.dash.inputErr[i]; e != "" {
		v += " " + statusFailed.Render(e)
	}
	return v
}

func (m Model) renderMonthlyPanel(width int) string {
	p := m.board.Monthly
	var b strings.Builder
	b.WriteString(titleStyle.Render("Monthly volume") + " " + loadingIndicator(p.Loading()) + "\n")
	b.WriteString(dimStyle.Render("year ") + m.fieldView(dashFieldMonthlyYear) + "\n\n")

	if err := p.Err(); err != nil {
		b.WriteString(statusFailed.Render(errText(err)))
		return b.String()
	}
	r, ok := p.Result()
	if !ok {
		b.WriteString(dimStyle.Render("no data"))
		return b.String()
	}

	peak := 0
	for _, c := range r.Counts {
		peak = max(peak, c)
	}
	barW := max(width-14, 1)
	for i, c := range r.Counts {
		n := 0
		if peak > 0 {
			n = c * barW / peak
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", monthNames[i], accentStyle.Render(strings.Repeat("█", n)), humanize.Comma(int64(c))))
	}
	b.WriteString("\n" + labelStyle.Render("Total ") + titleStyle.Render(humanize.Comma(int64(r.Total))) + "\n")
	b.WriteString(labelStyle.Render("Cost  ") + titleStyle.Render(humanize.FormatFloat("#,###.##", r.Cost)))
	return b.String()
}

func (m Model) renderStatusPanel(width int) string {
	p := m.board.Status
	var b strings.Builder
	b.WriteString(titleStyle.Render("Delivery status") + " " + loadingIndicator(p.Loading()) + "\n")
	b.WriteString(dimStyle.Render("year ") + m.fieldView(dashFieldStatusYear) + dimStyle.Render("  month ") + m.fieldView(dashFieldStatusMonth) + "\n\n")

	if err := p.Err(); err != nil {
		b.WriteString(statusFailed.Render(errText(err)))
		return b.String()
	}
	r, ok := p.Result()
	if !ok {
		b.WriteString(dimStyle.Render("no data"))
		return b.String()
	}

	barW := max(width-2, 1)
	ok1 := int(r.DeliveredRate * float64(barW) / 100)
	b.WriteString(statusOK.Render(strings.Repeat("█", ok1)) + statusFailed.Render(strings.Repeat("█", barW-ok1)) + "\n\n")
	b.WriteString(statusOK.Render(fmt.Sprintf("Delivered %5.1f%%", r.DeliveredRate)) + "  " + humanize.Comma(int64(r.Delivered)) + "\n")
	b.WriteString(statusFailed.Render(fmt.Sprintf("Failed    %5.1f%%", r.FailedRate)) + "  " + humanize.Comma(int64(r.Failed)) + "\n")
	b.WriteString(labelStyle.Render("Total ") + titleStyle.Render(humanize.Comma(int64(r.Total))))
	return b.String()
}

func (m Model) renderRankingPanel(width int) string {
	p := m.board.Ranking
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Top %d recipients", dashboard.TopN)) + " " + loadingIndicator(p.Loading()) + "\n")
	b.WriteString(dimStyle.Render(p.Query().UserEmail) + "\n\n")

	if err := p.Err(); err != nil {
		b.WriteString(statusFailed.Render(errText(err)))
		return b.String()
	}
	ranks, ok := p.Result()
	if !ok || len(ranks) == 0 {
		b.WriteString(dimStyle.Render("no data"))
		return b.String()
	}
	for i, r := range ranks {
		line := fmt.Sprintf("%d. %-15s %s", i+1, r.PhoneNum, humanize.Comma(int64(r.Count)))
		if i == 0 {
			b.WriteString(accentStyle.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}
