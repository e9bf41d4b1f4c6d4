package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jaigner-hub/msgdesk/internal/validate"
)

type loginMode int

const (
	modeLogin loginMode = iota
	modeSignup
)

type loginForm struct {
	mode     loginMode
	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	field    int
	busy     bool
	err      string
	notice   string
}

func newLoginForm(email string) loginForm {
	e := textinput.New()
	e.Placeholder = "you@example.com"
	e.CharLimit = 254
	e.Width = 36
	e.SetValue(email)

	p := textinput.New()
	p.Placeholder = "password"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.CharLimit = 128
	p.Width = 36

	c := textinput.New()
	c.Placeholder = "confirm password"
	c.EchoMode = textinput.EchoPassword
	c.EchoCharacter = '•'
	c.CharLimit = 128
	c.Width = 36

	f := loginForm{email: e, password: p, confirm: c}
	if email != "" {
		f.focusField(1)
	} else {
		f.focusField(0)
	}
	return f
}

func (f *loginForm) inputs() []*textinput.Model {
	if f.mode == modeSignup {
		return []*textinput.Model{&f.email, &f.password, &f.confirm}
	}
	return []*textinput.Model{&f.email, &f.password}
}

func (f *loginForm) focusField(i int) {
	in := f.inputs()
	f.field = (i%len(in) + len(in)) % len(in)
	for j, t := range in {
		if j == f.field {
			t.Focus()
		} else {
			t.Blur()
		}
	}
	if f.mode == modeLogin {
		f.confirm.Blur()
	}
}

func (f *loginForm) setMode(mode loginMode) {
	f.mode = mode
	f.err = ""
	f.notice = ""
	f.password.SetValue("")
	f.confirm.SetValue("")
	f.focusField(0)
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	in := f.inputs()
	*in[f.field], cmd = in[f.field].Update(msg)
	return cmd
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := &m.login
	if f.busy {
		return *m, nil
	}
	switch {
	case key.Matches(msg, keys.ToggleMode):
		if f.mode == modeLogin {
			f.setMode(modeSignup)
		} else {
			f.setMode(modeLogin)
		}
		return *m, textinput.Blink
	case key.Matches(msg, keys.NextField), key.Matches(msg, keys.Down):
		f.focusField(f.field + 1)
		return *m, nil
	case key.Matches(msg, keys.PrevField), key.Matches(msg, keys.Up):
		f.focusField(f.field - 1)
		return *m, nil
	case key.Matches(msg, keys.Enter):
		if f.field < len(f.inputs())-1 {
			f.focusField(f.field + 1)
			return *m, nil
		}
		return *m, m.submitLogin()
	}
	f.err = ""
	return *m, f.update(msg)
}

// submitLogin validates the form and, only if it is valid, contacts the
// auth service.
func (m *Model) submitLogin() tea.Cmd {
	f := &m.login
	f.notice = ""
	email := strings.TrimSpace(f.email.Value())
	password := f.password.Value()
	sess, backend, ctx := m.session, m.backend, m.ctx

	if f.mode == modeSignup {
		confirm := f.confirm.Value()
		if _, err := validate.Signup(email, password, confirm); err != nil {
			f.err = err.Error()
			return nil
		}
		f.busy = true
		f.err = ""
		return tea.Batch(m.spinner.Tick, func() tea.Msg {
			if err := sess.SignUp(ctx, backend, email, password, confirm); err != nil {
				return authErrMsg{err}
			}
			return signupMsg{email}
		})
	}

	if _, err := validate.Login(email, password); err != nil {
		f.err = err.Error()
		return nil
	}
	f.busy = true
	f.err = ""
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		id, err := sess.SignIn(ctx, backend, email, password)
		if err != nil {
			return authErrMsg{err}
		}
		return loginMsg{id}
	})
}

func (m Model) renderLogin() string {
	f := m.login
	var b strings.Builder

	title := "Sign in"
	if f.mode == modeSignup {
		title = "Create account"
	}
	b.WriteString(titleStyle.Render("msgdesk") + "  " + accentStyle.Render(title) + "\n\n")

	labels := []string{"Email", "Password", "Confirm"}
	in := f.inputs()
	for i, t := range in {
		marker, style := "  ", dimStyle
		if i == f.field {
			marker, style = "▸ ", accentStyle
		}
		b.WriteString(marker + style.Render(padRight(labels[i]+":", 10)) + t.View() + "\n")
	}
	b.WriteString("\n")

	switch {
	case f.busy:
		b.WriteString(m.spinner.View() + statusThinking.Render(" contacting auth service...") + "\n")
	case f.err != "":
		b.WriteString(statusFailed.Render(f.err) + "\n")
	case f.notice != "":
		b.WriteString(statusOK.Render(f.notice) + "\n")
	default:
		b.WriteString("\n")
	}

	other := "ctrl+t: create an account"
	if f.mode == modeSignup {
		other = "ctrl+t: back to sign in"
	}
	b.WriteString(dimStyle.Render("tab: next field  ↵: submit  " + other + "  ctrl+c: quit"))

	card := cardStyle.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func padRight(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}
