package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaigner-hub/msgdesk/internal/config"
	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/layout"
	"github.com/jaigner-hub/msgdesk/internal/session"
)

type fakeBackend struct {
	mu sync.Mutex

	loginValid bool
	sendErr    error
	records    []data.MessageRecord
	contacts   []data.Contact
	chatResp   *data.ChatResponse

	logins  int
	fetches int
	sends   []data.SendMessageRequest
	chats   []data.ChatRequest
	creates []data.CreateContactRequest
	counts  int
}

func (f *fakeBackend) Login(ctx context.Context, creds data.Credentials) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	return f.loginValid, nil
}

func (f *fakeBackend) Signup(ctx context.Context, creds data.Credentials) error {
	return nil
}

func (f *fakeBackend) FetchMessages(ctx context.Context, userEmail string) ([]data.MessageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return f.records, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, req data.SendMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, req)
	return f.sendErr
}

func (f *fakeBackend) Chat(ctx context.Context, req data.ChatRequest) (*data.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, req)
	return f.chatResp, nil
}

func (f *fakeBackend) MonthlyCounts(ctx context.Context, userEmail string, year int) (*data.MonthlyCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	return &data.MonthlyCounts{UserEmail: userEmail, Year: year, Counts: make([]int, 12)}, nil
}

func (f *fakeBackend) StatusMonthlyCounts(ctx context.Context, year, month int) (*data.StatusCounts, error) {
	return &data.StatusCounts{Year: year, Month: month}, nil
}

func (f *fakeBackend) PhoneRanking(ctx context.Context, userEmail string) ([]data.PhoneRank, error) {
	return nil, nil
}

func (f *fakeBackend) CreateContact(ctx context.Context, req data.CreateContactRequest) (*data.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	return &data.Contact{ID: "7", OwnerEmail: req.OwnerEmail, ContactName: req.ContactName, PhoneNumber: req.PhoneNumber, Carrier: req.Carrier}, nil
}

func (f *fakeBackend) ContactsByOwner(ctx context.Context, ownerEmail string) ([]data.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contacts, nil
}

func (f *fakeBackend) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// collect runs cmd and returns the messages it produces. Commands that do
// not return promptly, like notice timers, are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// step applies msg and then every message its commands produce, until
// nothing is left.
func step(m Model, msg tea.Msg) Model {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		updated, cmd := m.Update(next)
		m = updated.(Model)
		for _, out := range collect(cmd) {
			switch out.(type) {
			case loginMsg, signupMsg, authErrMsg, historyMsg, sentMsg, chatMsg,
				monthlyMsg, statusMsg, rankingMsg, contactsMsg, contactCreatedMsg:
				queue = append(queue, out)
			}
		}
	}
	return m
}

func keyMsg(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func newTestModel(f *fakeBackend) Model {
	cfg := config.Default()
	m := NewModel(cfg, f)
	m.copyText = func(string) error { return nil }
	return step(m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func signedInModel(t *testing.T, f *fakeBackend) Model {
	t.Helper()
	f.loginValid = true
	m := newTestModel(f)
	m.login.email.SetValue("a@b.com")
	m.login.password.SetValue("secret")
	m.login.focusField(1)
	m = step(m, keyMsg(tea.KeyEnter))
	if m.screen != screenMain {
		t.Fatalf("screen = %d after login, login err %q", m.screen, m.login.err)
	}
	return m
}

func TestLogin_InvalidFormMakesNoRequest(t *testing.T) {
	f := &fakeBackend{}
	m := newTestModel(f)
	m.login.email.SetValue("not-an-email")
	m.login.focusField(1)
	m = step(m, keyMsg(tea.KeyEnter))

	if f.logins != 0 {
		t.Errorf("logins = %d, want 0", f.logins)
	}
	if m.login.err == "" || m.screen != screenLogin {
		t.Errorf("err = %q, screen = %d", m.login.err, m.screen)
	}
}

func TestLogin_RejectedCredentials(t *testing.T) {
	f := &fakeBackend{loginValid: false}
	m := newTestModel(f)
	m.login.email.SetValue("a@b.com")
	m.login.password.SetValue("wrong")
	m.login.focusField(1)
	m = step(m, keyMsg(tea.KeyEnter))

	if m.screen != screenLogin {
		t.Fatal("signed in with rejected credentials")
	}
	if m.login.err != session.ErrInvalidCredentials.Error() {
		t.Errorf("err = %q", m.login.err)
	}
}

func TestLogin_LoadsHistoryAndContacts(t *testing.T) {
	now := time.Now()
	f := &fakeBackend{
		records: []data.MessageRecord{
			{ID: "1", Body: "old", CreatedAt: data.Timestamp{Time: now.Add(-2 * time.Hour)}},
			{ID: "2", Body: "new", CreatedAt: data.Timestamp{Time: now.Add(-time.Minute)}},
		},
		contacts: []data.Contact{{ID: "1", ContactName: "Kim", PhoneNumber: "010-1111-2222"}},
	}
	m := signedInModel(t, f)

	items := m.history.Items()
	if len(items) != 2 || items[0].Body != "new" {
		t.Errorf("history = %+v", items)
	}
	if m.book.Len() != 1 {
		t.Errorf("contacts = %d, want 1", m.book.Len())
	}
	if m.session.Email() != "a@b.com" {
		t.Errorf("session email = %q", m.session.Email())
	}
	if !strings.Contains(m.View(), "Message History") {
		t.Error("workspace not rendered")
	}
}

func TestSend_SuccessClearsFieldsAndRefreshesHistory(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	before := f.fetchCount()

	m.recipients.SetValue("010-1111-2222, 010-3333-4444")
	m.body.SetValue("hello")
	m = step(m, keyMsg(tea.KeyCtrlS))

	if len(f.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(f.sends))
	}
	if got := f.sends[0]; got.UserEmail != "a@b.com" || got.Body != "hello" || len(got.Recipients) != 2 {
		t.Errorf("request = %+v", got)
	}
	if m.recipients.Value() != "" || m.body.Value() != "" {
		t.Errorf("fields not cleared: %q %q", m.recipients.Value(), m.body.Value())
	}
	if !strings.HasPrefix(m.composer.Notice(), "Message sent to: 010-1111-2222") {
		t.Errorf("notice = %q", m.composer.Notice())
	}
	if f.fetchCount() != before+1 {
		t.Errorf("history fetches = %d, want %d", f.fetchCount(), before+1)
	}
}

func TestSend_FailureKeepsDraft(t *testing.T) {
	f := &fakeBackend{sendErr: &data.APIError{Method: "POST", Path: "/api/v1/messages", Status: 500, StatusText: "Internal Server Error", Body: "db down"}}
	m := signedInModel(t, f)

	m.recipients.SetValue("010-1111-2222")
	m.body.SetValue("hello")
	m = step(m, keyMsg(tea.KeyCtrlS))

	if m.body.Value() != "hello" || m.recipients.Value() != "010-1111-2222" {
		t.Error("draft lost after failed send")
	}
	if !strings.Contains(m.composer.Err(), "500 Internal Server Error db down") {
		t.Errorf("composer error = %q", m.composer.Err())
	}
}

func TestSend_ValidationMakesNoRequest(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	m.recipients.SetValue("010-1111-2222")
	m = step(m, keyMsg(tea.KeyCtrlS))

	if len(f.sends) != 0 {
		t.Errorf("sends = %d, want 0", len(f.sends))
	}
	if m.composer.Err() == "" {
		t.Error("no inline error for empty body")
	}
}

func TestChat_TranscriptOrder(t *testing.T) {
	f := &fakeBackend{chatResp: &data.ChatResponse{Success: true, Response: "Hi there"}}
	m := signedInModel(t, f)
	m.setMessagingFocus(focusPrompt)
	m.prompt.SetValue("hello")
	m = step(m, keyMsg(tea.KeyEnter))

	tr := m.assist.Transcript()
	if len(tr) != 2 || tr[0].Text != "hello" || tr[1].Text != "Hi there" {
		t.Fatalf("transcript = %+v", tr)
	}
	if m.prompt.Value() != "" {
		t.Error("prompt not cleared")
	}
	if len(f.chats) != 1 || f.chats[0].UserID != "a@b.com" || f.chats[0].Model != "gpt-4o-mini" {
		t.Errorf("chat requests = %+v", f.chats)
	}

	m = step(m, keyMsg(tea.KeyCtrlY))
	if m.flash != "Reply copied to clipboard" {
		t.Errorf("flash = %q", m.flash)
	}
	m = step(m, keyMsg(tea.KeyCtrlG))
	if m.body.Value() != "Hi there" {
		t.Errorf("body = %q, want inserted reply", m.body.Value())
	}
}

func TestMouseDragResizesPanes(t *testing.T) {
	m := signedInModel(t, &fakeBackend{})
	cols := m.layout.Widths().Columns(m.width)

	m = step(m, tea.MouseMsg{X: cols[0], Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.layout.Dragging() != layout.SplitterLeft {
		t.Fatalf("Dragging() = %v, want left", m.layout.Dragging())
	}
	for _, x := range []int{cols[0] + 10, cols[0] + 200, 0, cols[0] - 5} {
		m = step(m, tea.MouseMsg{X: x, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
		if w := m.layout.Widths(); !w.Valid() {
			t.Fatalf("widths %v invalid after move to %d", w, x)
		}
	}
	m = step(m, tea.MouseMsg{X: 3, Y: 30, Action: tea.MouseActionRelease})
	if m.layout.Dragging() != layout.SplitterNone {
		t.Error("drag not ended by release")
	}
	if m.layout.Widths() == layout.DefaultWidths() {
		t.Error("widths unchanged after drag")
	}
}

func TestFocusRefreshesHistory(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	before := f.fetchCount()
	m = step(m, tea.FocusMsg{})
	if f.fetchCount() != before+1 {
		t.Errorf("fetches = %d, want %d", f.fetchCount(), before+1)
	}
}

func TestLoadRecipientsFromAddressBook(t *testing.T) {
	f := &fakeBackend{contacts: []data.Contact{
		{ID: "1", ContactName: "Kim", PhoneNumber: "010-1111-2222"},
		{ID: "2", ContactName: "Lee", PhoneNumber: "010-3333-4444"},
	}}
	m := signedInModel(t, f)
	m.recipients.SetValue("010-1111-2222")
	m = step(m, keyMsg(tea.KeyCtrlB))
	if got := m.recipients.Value(); got != "010-1111-2222, 010-3333-4444" {
		t.Errorf("recipients = %q", got)
	}
}

func TestContacts_EditDeleteUnsupported(t *testing.T) {
	f := &fakeBackend{contacts: []data.Contact{{ID: "1", ContactName: "Kim", PhoneNumber: "010-1111-2222"}}}
	m := signedInModel(t, f)
	m = step(m, keyMsg(tea.KeyF3))
	m = step(m, runes("d"))
	if !m.flashErr || !strings.Contains(m.flash, "not supported") {
		t.Errorf("flash = %q", m.flash)
	}
	if m.book.Len() != 1 {
		t.Error("delete changed local state")
	}
}

func TestContacts_AddValidatesFirst(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	m = step(m, keyMsg(tea.KeyF3))
	m = step(m, runes("a"))
	if !m.contacts.adding {
		t.Fatal("add form not open")
	}
	m.contacts.form[contactFieldName].SetValue("Kim")
	m.contacts.form[contactFieldPhone].SetValue("12345")
	m.contacts.form[contactFieldCarrier].SetValue("SKT")
	m.contacts.focusField(contactFieldCarrier)
	m = step(m, keyMsg(tea.KeyEnter))
	if len(f.creates) != 0 {
		t.Fatalf("create issued for invalid phone")
	}
	if m.contacts.formErr == "" {
		t.Error("no form error")
	}

	m.contacts.form[contactFieldPhone].SetValue("010-1234-5678")
	m = step(m, keyMsg(tea.KeyEnter))
	if len(f.creates) != 1 {
		t.Fatalf("creates = %d, want 1", len(f.creates))
	}
	got := m.book.Visible()
	if len(got) != 1 || got[0].ID != "7" || got[0].ContactName != "Kim" {
		t.Errorf("book = %+v", got)
	}
}

func TestDashboard_ParameterChangeRefetches(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	m = step(m, keyMsg(tea.KeyF2))
	if f.counts != 1 {
		t.Fatalf("monthly fetches = %d, want 1", f.counts)
	}
	year := m.board.Monthly.Query().Year
	m = step(m, keyMsg(tea.KeyUp))
	if got := m.board.Monthly.Query().Year; got != year+1 {
		t.Errorf("year = %d, want %d", got, year+1)
	}
	if f.counts != 2 {
		t.Errorf("monthly fetches = %d, want 2", f.counts)
	}
	if _, ok := m.board.Monthly.Result(); !ok {
		t.Error("no result after refetch")
	}
}

func TestLogoutClearsState(t *testing.T) {
	f := &fakeBackend{chatResp: &data.ChatResponse{Success: true, Response: "x"}}
	m := signedInModel(t, f)
	m.setMessagingFocus(focusPrompt)
	m.prompt.SetValue("hello")
	m = step(m, keyMsg(tea.KeyEnter))

	m = step(m, keyMsg(tea.KeyCtrlO))
	if m.screen != screenLogin {
		t.Fatal("not on login screen")
	}
	if m.session.Email() != "" || len(m.assist.Transcript()) != 0 || m.book.Len() != 0 {
		t.Error("per-user state survived logout")
	}
	if m.login.email.Value() != "a@b.com" {
		t.Errorf("email field = %q, want prefilled", m.login.email.Value())
	}
}

func TestSignupReturnsToLogin(t *testing.T) {
	f := &fakeBackend{}
	m := newTestModel(f)
	m = step(m, keyMsg(tea.KeyCtrlT))
	if m.login.mode != modeSignup {
		t.Fatal("not in signup mode")
	}
	m.login.email.SetValue("new@b.com")
	m.login.password.SetValue("pw")
	m.login.confirm.SetValue("different")
	m.login.focusField(2)
	m = step(m, keyMsg(tea.KeyEnter))
	if m.login.err == "" || m.login.mode != modeSignup {
		t.Fatalf("mismatched confirmation accepted: err %q", m.login.err)
	}

	m.login.confirm.SetValue("pw")
	m = step(m, keyMsg(tea.KeyEnter))
	if m.login.mode != modeLogin || !strings.Contains(m.login.notice, "new@b.com") {
		t.Errorf("mode = %v notice = %q", m.login.mode, m.login.notice)
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeBackend{})
	_, cmd := m.Update(keyMsg(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func signIn(t *testing.T, m Model, email string) Model {
	t.Helper()
	m.login.email.SetValue(email)
	m.login.password.SetValue("secret")
	m.login.focusField(1)
	m = step(m, keyMsg(tea.KeyEnter))
	if m.screen != screenMain || m.session.Email() != email {
		t.Fatalf("sign in as %s failed: %q", email, m.login.err)
	}
	return m
}

// press applies msg and returns the command without running it.
func press(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestRepliesForPreviousUserAreDropped(t *testing.T) {
	f := &fakeBackend{chatResp: &data.ChatResponse{Success: true, Response: "secret for a"}}
	m := signedInModel(t, f)

	var pending []tea.Cmd
	var cmd tea.Cmd
	m.setMessagingFocus(focusPrompt)
	m.prompt.SetValue("hello")
	m, cmd = press(m, keyMsg(tea.KeyEnter))
	pending = append(pending, cmd)

	m.recipients.SetValue("010-1111-2222")
	m.body.SetValue("hi")
	m, cmd = press(m, keyMsg(tea.KeyCtrlS))
	pending = append(pending, cmd)

	m = step(m, keyMsg(tea.KeyF3))
	m = step(m, runes("a"))
	m.contacts.form[contactFieldName].SetValue("Kim")
	m.contacts.form[contactFieldPhone].SetValue("010-1234-5678")
	m.contacts.form[contactFieldCarrier].SetValue("SKT")
	m.contacts.focusField(contactFieldCarrier)
	m, cmd = press(m, keyMsg(tea.KeyEnter))
	pending = append(pending, cmd)

	m = step(m, keyMsg(tea.KeyCtrlO))
	m = signIn(t, m, "b@c.com")
	fetches := f.fetchCount()

	delivered := 0
	for _, c := range pending {
		for _, msg := range collect(c) {
			switch msg.(type) {
			case chatMsg, sentMsg, contactCreatedMsg:
				delivered++
				m = step(m, msg)
			}
		}
	}
	if delivered != 3 {
		t.Fatalf("delivered %d replies, want 3", delivered)
	}

	if tr := m.assist.Transcript(); len(tr) != 0 {
		t.Errorf("transcript = %v, want empty", tr)
	}
	if m.book.Len() != 0 {
		t.Errorf("book = %+v, want empty", m.book.Visible())
	}
	if m.composer.Notice() != "" || m.composer.Err() != "" {
		t.Errorf("composer notice %q err %q", m.composer.Notice(), m.composer.Err())
	}
	if f.fetchCount() != fetches {
		t.Errorf("history fetches = %d, want %d", f.fetchCount(), fetches)
	}
}

func TestStaleDashboardReplyDroppedAfterRelogin(t *testing.T) {
	f := &fakeBackend{}
	m := signedInModel(t, f)
	m = step(m, keyMsg(tea.KeyF1))
	m, cmd := press(m, keyMsg(tea.KeyF2))

	m = step(m, keyMsg(tea.KeyCtrlO))
	m = signIn(t, m, "b@c.com")
	// b's own request for the same month is still pending when a's reply
	// arrives; both tickets carry the same sequence number and query.
	m, _ = press(m, keyMsg(tea.KeyF2))
	for _, msg := range collect(cmd) {
		if _, ok := msg.(statusMsg); ok {
			m = step(m, msg)
		}
	}
	if _, ok := m.board.Status.Result(); ok {
		t.Error("status result from the previous session was applied")
	}
	if !m.board.Status.Loading() {
		t.Error("b's pending status request was resolved by a stale reply")
	}
}

func TestFlashTruncationKeepsRunesWhole(t *testing.T) {
	m := signedInModel(t, &fakeBackend{})
	m.setFlash(strings.Repeat("전송 실패 ", 40), true)
	bar := m.renderStatusBar()
	if !utf8.ValidString(bar) {
		t.Fatal("status bar is not valid UTF-8")
	}
	if !strings.Contains(bar, "...") {
		t.Error("long flash not truncated")
	}
}

func TestPressDuringDragEndsIt(t *testing.T) {
	m := signedInModel(t, &fakeBackend{})
	cols := m.layout.Widths().Columns(m.width)

	m = step(m, tea.MouseMsg{X: cols[0], Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.layout.Dragging() != layout.SplitterLeft {
		t.Fatal("drag not started")
	}
	// The release happened outside the terminal and was never reported.
	m = step(m, tea.MouseMsg{X: cols[0] + 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.layout.Dragging() != layout.SplitterNone {
		t.Error("press did not end the stale drag")
	}
	if m.focus != focusBody {
		t.Errorf("focus = %v, want body", m.focus)
	}
}
