package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jaigner-hub/msgdesk/internal/addressbook"
	"github.com/jaigner-hub/msgdesk/internal/assist"
	"github.com/jaigner-hub/msgdesk/internal/composer"
	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/history"
	"github.com/jaigner-hub/msgdesk/internal/layout"
)

type msgFocus int

const (
	focusRecipients msgFocus = iota
	focusBody
	focusPrompt
	focusCount // sentinel
)

// nudgeStep is how far one splitter key press moves a splitter.
const nudgeStep layout.Share = 200

// Rows used by pane chrome: border, title and hint lines.
const (
	composerChrome  = 9
	assistantChrome = 6
)

func (m *Model) initMessagingWidgets() {
	r := textinput.New()
	r.Placeholder = "010-1234-5678, 010-9876-5432"
	r.CharLimit = 2048
	r.Prompt = "> "

	b := textarea.New()
	b.Placeholder = "Type your message..."
	b.ShowLineNumbers = false
	b.CharLimit = 2000
	b.Prompt = ""

	p := textinput.New()
	p.Placeholder = "Ask the assistant..."
	p.CharLimit = 4096
	p.Prompt = "> "

	m.recipients = r
	m.body = b
	m.prompt = p
	m.transcript = viewport.New(20, 5)
	m.focus = focusRecipients
}

func (m *Model) setMessagingFocus(f msgFocus) {
	m.focus = f
	m.recipients.Blur()
	m.body.Blur()
	m.prompt.Blur()
	switch f {
	case focusRecipients:
		m.recipients.Focus()
	case focusBody:
		m.body.Focus()
	case focusPrompt:
		m.prompt.Focus()
	}
}

// paneSizes returns the outer column widths and the inner height of the
// three messaging panes.
func (m Model) paneSizes() ([3]int, int) {
	cols := m.layout.Widths().Columns(m.width)
	inner := m.height - 4 // tab bar, status bar, top and bottom border
	if inner < 3 {
		inner = 3
	}
	return cols, inner
}

// resizeMessaging fits the widgets to the current split.
func (m *Model) resizeMessaging() {
	if m.width == 0 || m.height == 0 {
		return
	}
	cols, inner := m.paneSizes()
	composerW := max(cols[layout.PaneComposer]-2, 4)
	assistW := max(cols[layout.PaneAssistant]-2, 4)

	m.recipients.Width = max(composerW-3, 1)
	m.body.SetWidth(composerW)
	m.body.SetHeight(max(inner-composerChrome, 2))
	m.prompt.Width = max(assistW-3, 1)
	m.transcript.Width = assistW
	m.transcript.Height = max(inner-assistantChrome, 1)
	m.syncTranscript()
}

func (m *Model) handleMessagingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Send):
		return *m, m.sendMessage()
	case key.Matches(msg, keys.Refresh):
		return *m, m.refreshHistory()
	case key.Matches(msg, keys.NextModel):
		m.assist.CycleModel(1)
		return *m, nil
	case key.Matches(msg, keys.PrevModel):
		m.assist.CycleModel(-1)
		return *m, nil
	case key.Matches(msg, keys.CopyReply):
		return *m, m.copyLastReply()
	case key.Matches(msg, keys.InsertReply):
		return *m, m.insertLastReply()
	case key.Matches(msg, keys.LoadContacts):
		return *m, m.loadRecipientsFromBook()
	case key.Matches(msg, keys.LeftNarrow):
		m.nudge(layout.SplitterLeft, -nudgeStep)
		return *m, nil
	case key.Matches(msg, keys.LeftWiden):
		m.nudge(layout.SplitterLeft, nudgeStep)
		return *m, nil
	case key.Matches(msg, keys.RightNarrow):
		m.nudge(layout.SplitterRight, -nudgeStep)
		return *m, nil
	case key.Matches(msg, keys.RightWiden):
		m.nudge(layout.SplitterRight, nudgeStep)
		return *m, nil
	case key.Matches(msg, keys.ResetLayout):
		m.layout.Reset()
		m.resizeMessaging()
		return *m, nil
	case key.Matches(msg, keys.NextField):
		m.setMessagingFocus((m.focus + 1) % focusCount)
		return *m, textinput.Blink
	case key.Matches(msg, keys.PrevField):
		m.setMessagingFocus((m.focus + focusCount - 1) % focusCount)
		return *m, textinput.Blink
	case msg.String() == "pgup" || msg.String() == "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return *m, cmd
	case key.Matches(msg, keys.Enter) && m.focus == focusPrompt:
		return *m, m.askAssistant()
	case key.Matches(msg, keys.Enter) && m.focus == focusRecipients:
		m.setMessagingFocus(focusBody)
		return *m, textinput.Blink
	}
	return *m, m.updateMessagingInput(msg)
}

func (m *Model) updateMessagingInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusRecipients:
		if _, isKey := msg.(tea.KeyMsg); isKey && m.composer.Sending() {
			return nil
		}
		m.recipients, cmd = m.recipients.Update(msg)
	case focusBody:
		if _, isKey := msg.(tea.KeyMsg); isKey && m.composer.Sending() {
			return nil
		}
		m.body, cmd = m.body.Update(msg)
	case focusPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	}
	return cmd
}

func (m *Model) nudge(s layout.Splitter, delta layout.Share) {
	if m.layout.Nudge(s, delta) {
		m.resizeMessaging()
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.screen != screenMain || m.activeTab != tabMessaging {
		return *m, nil
	}

	// Button release anywhere ends a drag. A left press while dragging means
	// the release was lost outside the terminal: end the drag and handle the
	// press normally.
	if m.layout.Dragging() != layout.SplitterNone {
		switch msg.Action {
		case tea.MouseActionMotion:
			if m.layout.Move(msg.X) {
				m.resizeMessaging()
			}
			return *m, nil
		case tea.MouseActionRelease:
			m.layout.End()
			m.resizeMessaging()
			return *m, nil
		case tea.MouseActionPress:
			if msg.Button != tea.MouseButtonLeft {
				return *m, nil
			}
			m.layout.End()
			m.resizeMessaging()
		default:
			return *m, nil
		}
	}

	if msg.Y < 1 || msg.Y >= m.height-1 {
		return *m, nil
	}
	cols, _ := m.paneSizes()
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if s := m.layout.Widths().HitTest(msg.X, m.width); s != layout.SplitterNone {
			m.layout.Begin(s, msg.X, m.width)
			return *m, nil
		}
		switch {
		case msg.X < cols[0]:
		case msg.X < cols[0]+cols[1]:
			if msg.Y <= 4 {
				m.setMessagingFocus(focusRecipients)
			} else {
				m.setMessagingFocus(focusBody)
			}
		default:
			m.setMessagingFocus(focusPrompt)
		}
		return *m, nil
	case msg.X >= cols[0]+cols[1]:
		// Wheel scrolling over the transcript.
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return *m, cmd
	}
	return *m, nil
}

// refreshHistory starts a history fetch, superseding any pending one.
func (m *Model) refreshHistory() tea.Cmd {
	owner := m.session.Email()
	if owner == "" {
		return nil
	}
	tok := m.history.Begin(m.ctx, owner)
	backend := m.backend
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		records, err := backend.FetchMessages(tok.Context, tok.Owner)
		return historyMsg{tok: tok, records: records, err: err}
	})
}

func (m *Model) sendMessage() tea.Cmd {
	m.composer.SetDraft(m.recipients.Value(), m.body.Value())
	req, err := m.composer.Submit(m.session.Email())
	if err != nil {
		return nil
	}
	backend, ctx, epoch := m.backend, m.ctx, m.epoch
	m.log.Debug("sending message", "recipients", len(req.Recipients))
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return sentMsg{epoch: epoch, err: backend.SendMessage(ctx, req)}
	})
}

func (m *Model) sendFinished(err error) (Model, tea.Cmd) {
	if err != nil {
		m.composer.Fail(err)
		m.log.Warn("send failed", "error", err)
		return *m, nil
	}
	seq := m.composer.Succeed()
	m.recipients.SetValue("")
	m.body.Reset()
	return *m, tea.Batch(
		m.refreshHistory(),
		tea.Tick(composer.NoticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq} }),
	)
}

func (m *Model) askAssistant() tea.Cmd {
	m.assist.Prompt = m.prompt.Value()
	req, err := m.assist.Submit(m.session.Email())
	switch {
	case errors.Is(err, assist.ErrEmptyPrompt):
		return nil
	case err != nil:
		return m.setFlash(err.Error(), true)
	}
	m.prompt.SetValue("")
	m.syncTranscript()
	backend, ctx, epoch := m.backend, m.ctx, m.epoch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		resp, err := backend.Chat(ctx, req)
		return chatMsg{epoch: epoch, resp: resp, err: err}
	})
}

func (m *Model) copyLastReply() tea.Cmd {
	text, ok := m.assist.LastResponse()
	if !ok {
		return m.setFlash("No assistant reply to copy", true)
	}
	if err := m.copyText(text); err != nil {
		return m.setFlash("Copy failed: "+err.Error(), true)
	}
	return m.setFlash("Reply copied to clipboard", false)
}

func (m *Model) insertLastReply() tea.Cmd {
	text, ok := m.assist.LastResponse()
	if !ok {
		return m.setFlash("No assistant reply to insert", true)
	}
	if m.composer.Sending() {
		return m.setFlash(composer.ErrBusy.Error(), true)
	}
	m.body.SetValue(text)
	m.setMessagingFocus(focusBody)
	return m.setFlash("Reply inserted into message", false)
}

// loadRecipientsFromBook appends the numbers of the contacts currently
// visible in the address book.
func (m *Model) loadRecipientsFromBook() tea.Cmd {
	numbers := addressbook.PhoneNumbers(m.book.Visible())
	if len(numbers) == 0 {
		return m.setFlash("Address book has no contacts to add", true)
	}
	if m.composer.Sending() {
		return m.setFlash(composer.ErrBusy.Error(), true)
	}
	m.composer.SetDraft(m.recipients.Value(), m.body.Value())
	m.composer.AppendRecipients(numbers...)
	m.recipients.SetValue(m.composer.Recipients)
	m.recipients.CursorEnd()
	return m.setFlash(fmt.Sprintf("Added %d contacts", len(numbers)), false)
}

// syncTranscript re-renders the transcript into the viewport.
func (m *Model) syncTranscript() {
	width := m.transcript.Width
	if width <= 0 {
		return
	}
	entries := m.assist.Transcript()
	if len(entries) == 0 {
		m.transcript.SetContent(dimStyle.Render(wordwrap.String("Replies from the assistant appear here.", width)))
		return
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(entryStyle(e.Kind.String()).Render(e.Kind.String()+":") + "\n")
		if e.Kind == assist.KindAssistant {
			b.WriteString(m.renderMarkdown(e.Text, width))
		} else {
			b.WriteString(wordwrap.String(e.Text, width))
		}
		b.WriteString("\n")
	}
	m.transcript.SetContent(b.String())
	m.transcript.GotoBottom()
}

// renderMarkdown renders assistant replies, falling back to plain wrapping.
func (m *Model) renderMarkdown(text string, width int) string {
	if m.md == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.log.Debug("markdown renderer unavailable", "error", err)
			return wordwrap.String(text, width)
		}
		m.md = r
		m.mdWidth = width
	}
	out, err := m.md.Render(text)
	if err != nil {
		return wordwrap.String(text, width)
	}
	return strings.Trim(out, "\n")
}

func (m Model) renderMessaging(height int) string {
	cols, inner := m.paneSizes()
	dragging := m.layout.Dragging()

	border := func(p layout.Pane, active bool) lipgloss.Style {
		switch {
		case dragging == layout.SplitterLeft && (p == layout.PaneHistory || p == layout.PaneComposer),
			dragging == layout.SplitterRight && (p == layout.PaneComposer || p == layout.PaneAssistant):
			return draggingPanelBorder
		case active:
			return activePanelBorder
		}
		return panelBorder
	}

	h := border(layout.PaneHistory, false).
		Width(max(cols[0]-2, 1)).Height(inner).
		Render(m.renderHistory(max(cols[0]-2, 1), inner))
	c := border(layout.PaneComposer, m.focus == focusRecipients || m.focus == focusBody).
		Width(max(cols[1]-2, 1)).Height(inner).
		Render(m.renderComposer(max(cols[1]-2, 1)))
	a := border(layout.PaneAssistant, m.focus == focusPrompt).
		Width(max(cols[2]-2, 1)).Height(inner).
		Render(m.renderAssistant(max(cols[2]-2, 1)))

	return lipgloss.NewStyle().MaxHeight(height).Render(lipgloss.JoinHorizontal(lipgloss.Top, h, c, a))
}

func (m Model) renderHistory(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Message History") + " " + loadingIndicator(m.history.Loading()) + "\n")
	if err := m.history.Err(); err != nil {
		b.WriteString(statusFailed.Render(wordwrap.String(err.Error(), width)) + "\n")
	}

	items := m.history.Items()
	if len(items) == 0 {
		b.WriteString("\n" + dimStyle.Render(wordwrap.String(fmt.Sprintf("Your %d most recent sent messages will appear here", history.Limit), width)))
		return b.String()
	}

	now := m.now()
	for _, it := range items {
		b.WriteString(dimStyle.Render(strings.Repeat("─", min(width, 40))) + "\n")
		stamp := humanize.RelTime(it.SentAt, now, "ago", "from now")
		if it.SentAt.IsZero() {
			stamp = "unknown time"
		}
		b.WriteString(dimStyle.Render(stamp) + "\n")
		if len(it.Recipients) > 0 {
			b.WriteString(labelStyle.Render(wordwrap.String("To: "+strings.Join(it.Recipients, ", "), width)) + "\n")
		}
		b.WriteString(clampLines(wordwrap.String(data.Sanitize(it.Body), width), 3) + "\n")
	}
	return lipgloss.NewStyle().MaxHeight(height).Render(b.String())
}

func (m Model) renderComposer(width int) string {
	var b strings.Builder
	title := titleStyle.Render("Send Message")
	if m.composer.Sending() {
		title += " " + m.spinner.View() + statusThinking.Render(" sending...")
	}
	b.WriteString(title + "\n")
	b.WriteString(labelStyle.Render("Recipients") + "\n")
	b.WriteString(m.recipients.View() + "\n")
	b.WriteString(labelStyle.Render("Message") + dimStyle.Render(fmt.Sprintf("  %d chars", len([]rune(m.body.Value())))) + "\n")
	b.WriteString(m.body.View() + "\n")

	switch {
	case m.composer.Err() != "":
		b.WriteString(statusFailed.Render(wordwrap.String(m.composer.Err(), width)) + "\n")
	case m.composer.Notice() != "":
		b.WriteString(statusOK.Render(wordwrap.String(m.composer.Notice(), width)) + "\n")
	default:
		b.WriteString("\n")
	}
	hint := "ctrl+s send  ctrl+b add contacts"
	if !m.composer.CanSend() && !m.composer.Sending() {
		hint = "enter recipients and a message"
	}
	b.WriteString(dimStyle.Render(hint))
	return b.String()
}

func (m Model) renderAssistant(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chat Assist") + "\n")
	b.WriteString(dimStyle.Render("model ") + accentStyle.Render(m.assist.Model()) + dimStyle.Render("  ^n/^p") + "\n")
	b.WriteString(m.transcript.View() + "\n")
	if m.assist.Awaiting() {
		b.WriteString(m.spinner.View() + statusThinking.Render(" thinking...") + "\n")
	} else {
		b.WriteString("\n")
	}
	b.WriteString(m.prompt.View() + "\n")
	b.WriteString(dimStyle.Render("↵ ask  ^y copy  ^g use reply"))
	return b.String()
}

// clampLines keeps at most n lines of s, marking the cut.
func clampLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n") + dimStyle.Render(" …")
}
