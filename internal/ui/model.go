package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jaigner-hub/msgdesk/internal/addressbook"
	"github.com/jaigner-hub/msgdesk/internal/assist"
	"github.com/jaigner-hub/msgdesk/internal/composer"
	"github.com/jaigner-hub/msgdesk/internal/config"
	"github.com/jaigner-hub/msgdesk/internal/dashboard"
	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/history"
	"github.com/jaigner-hub/msgdesk/internal/layout"
	"github.com/jaigner-hub/msgdesk/internal/logger"
	"github.com/jaigner-hub/msgdesk/internal/session"
)

const (
	screenLogin = 0
	screenMain  = 1

	tabMessaging = 0
	tabDashboard = 1
	tabContacts  = 2
)

// flashTTL is how long status-bar notices stay up.
const flashTTL = 3 * time.Second

// Backend is every collaborator call the console makes. *data.Client
// implements it.
type Backend interface {
	session.Authenticator
	history.Fetcher
	dashboard.Service
	addressbook.Service
	SendMessage(ctx context.Context, req data.SendMessageRequest) error
	Chat(ctx context.Context, req data.ChatRequest) (*data.ChatResponse, error)
}

// Data messages
type loginMsg struct{ identity session.Identity }
type signupMsg struct{ email string }
type authErrMsg struct{ err error }
type historyMsg struct {
	tok     history.Token
	records []data.MessageRecord
	err     error
}
type sentMsg struct {
	epoch int
	err   error
}
type noticeExpiredMsg struct{ seq int }
type chatMsg struct {
	epoch int
	resp  *data.ChatResponse
	err   error
}
type monthlyMsg struct {
	epoch  int
	ticket dashboard.Ticket[dashboard.MonthlyQuery]
	result dashboard.Monthly
	err    error
}
type statusMsg struct {
	epoch  int
	ticket dashboard.Ticket[dashboard.StatusQuery]
	result dashboard.Status
	err    error
}
type rankingMsg struct {
	epoch  int
	ticket dashboard.Ticket[dashboard.RankingQuery]
	result []data.PhoneRank
	err    error
}
type contactsMsg struct {
	owner    string
	contacts []data.Contact
	err      error
}
type contactCreatedMsg struct {
	epoch   int
	contact *data.Contact
	err     error
}
type flashExpiredMsg struct{ seq int }

// Model is the main Bubble Tea model.
type Model struct {
	width  int
	height int

	screen    int
	activeTab int

	cfg      config.Config
	backend  Backend
	ctx      context.Context
	log      *slog.Logger
	now      func() time.Time
	copyText func(string) error

	session *session.Session
	login   loginForm
	// epoch changes at every logout. Replies tagged with an older epoch
	// belong to a previous user and are dropped.
	epoch int

	// Messaging tab
	history    *history.Store
	composer   *composer.Composer
	assist     *assist.Assistant
	layout     *layout.Controller
	focus      msgFocus
	recipients textinput.Model
	body       textarea.Model
	prompt     textinput.Model
	transcript viewport.Model
	md         *glamour.TermRenderer
	mdWidth    int

	// Dashboard tab
	board *dashboard.Board
	dash  dashForm

	// Contacts tab
	book     *addressbook.Book
	contacts contactsView

	spinner  spinner.Model
	help     help.Model
	flash    string
	flashErr bool
	flashSeq int
}

// NewModel builds the console around backend.
func NewModel(cfg config.Config, backend Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusThinking

	log := logger.Component("ui")
	lc := layout.NewController(layout.DefaultWidths())
	lc.OnAttach = func(s layout.Splitter) { log.Debug("splitter drag started", "splitter", s) }
	lc.OnDetach = func(s layout.Splitter) { log.Debug("splitter drag ended", "splitter", s) }

	m := Model{
		cfg:      cfg,
		backend:  backend,
		ctx:      context.Background(),
		log:      log,
		now:      time.Now,
		copyText: clipboard.WriteAll,
		session:  session.New(),
		login:    newLoginForm(cfg.UserEmail),
		history:  history.New(),
		composer: composer.New(),
		assist:   assist.New(cfg.ChatModel),
		layout:   lc,
		book:     addressbook.New(),
		contacts: newContactsView(),
		spinner:  sp,
		help:     help.New(),
	}
	m.initMessagingWidgets()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeMessaging()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.history.Cancel()
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			return (&m).handleLoginKey(msg)
		}
		return (&m).handleKey(msg)

	case tea.MouseMsg:
		return (&m).handleMouse(msg)

	case tea.FocusMsg:
		// Regaining focus is the terminal's version of the window becoming visible.
		if m.screen == screenMain && m.activeTab == tabMessaging {
			return m, m.refreshHistory()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginMsg:
		return (&m).signedIn(msg.identity)

	case signupMsg:
		m.login.busy = false
		m.login.setMode(modeLogin)
		m.login.email.SetValue(msg.email)
		m.login.notice = "Account created for " + msg.email + ". Sign in to continue."
		m.login.focusField(1)
		return m, textinput.Blink

	case authErrMsg:
		m.login.busy = false
		m.login.err = msg.err.Error()
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.history.Fail(msg.tok, msg.err)
		} else {
			m.history.Apply(msg.tok, msg.records)
		}
		return m, nil

	case sentMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		return (&m).sendFinished(msg.err)

	case noticeExpiredMsg:
		m.composer.DismissNotice(msg.seq)
		return m, nil

	case chatMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.assist.Resolve(msg.resp, msg.err)
		if msg.err != nil {
			m.log.Warn("chat request failed", "model", m.assist.Model(), "error", msg.err)
		}
		m.syncTranscript()
		return m, nil

	case monthlyMsg:
		if m.board != nil && msg.epoch == m.epoch {
			m.board.Monthly.Resolve(msg.ticket, msg.result, msg.err)
		}
		return m, nil

	case statusMsg:
		if m.board != nil && msg.epoch == m.epoch {
			m.board.Status.Resolve(msg.ticket, msg.result, msg.err)
		}
		return m, nil

	case rankingMsg:
		if m.board != nil && msg.epoch == m.epoch {
			m.board.Ranking.Resolve(msg.ticket, msg.result, msg.err)
		}
		return m, nil

	case contactsMsg:
		return (&m).contactsLoaded(msg)

	case contactCreatedMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		return (&m).contactCreated(msg)

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil
	}

	// Cursor blinks and the like go to whatever input has focus.
	return (&m).updateFocused(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Logout):
		return *m, m.logout()
	case key.Matches(msg, keys.Tab1):
		return *m, m.switchTab(tabMessaging)
	case key.Matches(msg, keys.Tab2):
		return *m, m.switchTab(tabDashboard)
	case key.Matches(msg, keys.Tab3):
		return *m, m.switchTab(tabContacts)
	}

	switch m.activeTab {
	case tabDashboard:
		return m.handleDashboardKey(msg)
	case tabContacts:
		return m.handleContactsKey(msg)
	default:
		return m.handleMessagingKey(msg)
	}
}

func (m *Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.screen == screenLogin {
		cmd = m.login.update(msg)
		return *m, cmd
	}
	switch m.activeTab {
	case tabMessaging:
		cmd = m.updateMessagingInput(msg)
	case tabDashboard:
		cmd = m.dash.update(msg)
	case tabContacts:
		cmd = m.contacts.update(msg)
	}
	return *m, cmd
}

// signedIn switches to the workspace and loads everything owned by the user.
func (m *Model) signedIn(id session.Identity) (Model, tea.Cmd) {
	m.login.busy = false
	m.login.err = ""
	m.login.password.SetValue("")
	m.login.confirm.SetValue("")
	m.screen = screenMain
	m.activeTab = tabMessaging
	m.board = dashboard.NewBoard(id.Email, m.now(), m.cfg.CostPerMessage)
	m.dash = newDashForm(m.board)
	m.setMessagingFocus(focusRecipients)
	m.log.Info("signed in", "email", id.Email)
	return *m, tea.Batch(m.refreshHistory(), m.loadContacts(), textinput.Blink)
}

// logout clears every piece of per-user state and returns to the login screen.
func (m *Model) logout() tea.Cmd {
	email := m.session.Email()
	m.epoch++
	m.session.Logout()
	m.history.Reset()
	m.composer.Reset()
	m.assist.Reset()
	m.book.Reset()
	m.layout.Reset()
	m.board = nil
	m.contacts = newContactsView()
	m.initMessagingWidgets()
	m.resizeMessaging()
	m.screen = screenLogin
	m.login = newLoginForm(email)
	m.flash = ""
	m.log.Info("signed out", "email", email)
	return textinput.Blink
}

func (m *Model) switchTab(tab int) tea.Cmd {
	if m.layout.Dragging() != layout.SplitterNone {
		m.layout.End()
	}
	m.activeTab = tab
	switch tab {
	case tabMessaging:
		m.setMessagingFocus(m.focus)
		return m.refreshHistory()
	case tabDashboard:
		m.dash.focusField(m.dash.field)
		return m.fetchStaleDashboard()
	case tabContacts:
		return m.loadContacts()
	}
	return nil
}

// busy reports whether any request with a visible indicator is pending.
func (m Model) busy() bool {
	if m.login.busy || m.composer.Sending() || m.assist.Awaiting() || m.history.Loading() || m.contacts.loading || m.contacts.saving {
		return true
	}
	if m.board != nil && (m.board.Monthly.Loading() || m.board.Status.Loading() || m.board.Ranking.Loading()) {
		return true
	}
	return false
}

// setFlash shows a transient status-bar message.
func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashErr = isErr
	seq := m.flashSeq
	return tea.Tick(flashTTL, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq}
	})
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.screen == screenLogin {
		return m.renderLogin()
	}

	contentHeight := m.height - 2 // tab bar + status bar
	if contentHeight < 5 {
		contentHeight = 5
	}

	var main string
	switch m.activeTab {
	case tabDashboard:
		main = m.renderDashboard(m.width, contentHeight)
	case tabContacts:
		main = m.renderContacts(m.width, contentHeight)
	default:
		main = m.renderMessaging(contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), main, m.renderStatusBar())
}

func (m Model) renderTabBar() string {
	names := []string{"F1 Messages", "F2 Dashboard", "F3 Contacts"}
	var tabs []string
	for i, name := range names {
		if i == m.activeTab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	left := titleStyle.Render("msgdesk") + " " + strings.Join(tabs, " ")
	right := dimStyle.Render(m.session.Email())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderStatusBar() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	var leftParts []string
	if m.busy() {
		leftParts = append(leftParts, m.spinner.View())
	}
	if m.activeTab == tabMessaging {
		leftParts = append(leftParts, accentStyle.Render(assist.ModelAlias(m.assist.Model())))
	}
	if m.flash != "" {
		text := runewidth.Truncate(m.flash, 80, "...")
		if m.flashErr {
			leftParts = append(leftParts, statusFailed.Render(text))
		} else {
			leftParts = append(leftParts, statusOK.Render(text))
		}
	}
	left := strings.Join(leftParts, " ")

	var bindings []key.Binding
	switch m.activeTab {
	case tabDashboard:
		bindings = keys.dashboardHelp()
	case tabContacts:
		bindings = keys.contactsHelp()
	default:
		bindings = keys.messagingHelp()
	}
	right := m.help.ShortHelpView(bindings)

	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Not enough room for the key help; drop it.
		right = ""
		gap = max(1, width-2-lipgloss.Width(left))
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprint(err)
}
