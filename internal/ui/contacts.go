package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jaigner-hub/msgdesk/internal/addressbook"
	"github.com/jaigner-hub/msgdesk/internal/data"
)

const (
	contactFieldName = iota
	contactFieldPhone
	contactFieldCarrier
	contactFieldCount // sentinel
)

type contactsView struct {
	cursor int

	searching bool
	search    textinput.Model

	adding  bool
	form    [contactFieldCount]textinput.Model
	field   int
	formErr string
	saving  bool

	loading bool
	loadErr string
}

func newContactsView() contactsView {
	s := textinput.New()
	s.Placeholder = "name or phone"
	s.CharLimit = 64
	s.Width = 30

	v := contactsView{search: s}
	placeholders := [contactFieldCount]string{"name", "010-1234-5678", "SKT / KT / LG / MVNO"}
	for i := range v.form {
		t := textinput.New()
		t.Placeholder = placeholders[i]
		t.CharLimit = 64
		t.Width = 30
		v.form[i] = t
	}
	carriers := make([]string, len(data.Carriers))
	for i, c := range data.Carriers {
		carriers[i] = string(c)
	}
	v.form[contactFieldCarrier].SetSuggestions(carriers)
	v.form[contactFieldCarrier].ShowSuggestions = true
	return v
}

func (v *contactsView) focusField(i int) {
	v.field = (i%contactFieldCount + contactFieldCount) % contactFieldCount
	for j := range v.form {
		if j == v.field {
			v.form[j].Focus()
		} else {
			v.form[j].Blur()
		}
	}
}

func (v *contactsView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case v.adding:
		v.form[v.field], cmd = v.form[v.field].Update(msg)
	case v.searching:
		v.search, cmd = v.search.Update(msg)
	}
	return cmd
}

func (m *Model) handleContactsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	v := &m.contacts

	if v.adding {
		switch {
		case key.Matches(msg, keys.Escape):
			v.adding = false
			v.formErr = ""
			return *m, nil
		case key.Matches(msg, keys.NextField):
			v.focusField(v.field + 1)
			return *m, textinput.Blink
		case key.Matches(msg, keys.PrevField):
			v.focusField(v.field - 1)
			return *m, textinput.Blink
		case key.Matches(msg, keys.Enter):
			if v.field < contactFieldCount-1 {
				v.focusField(v.field + 1)
				return *m, textinput.Blink
			}
			return *m, m.createContact()
		}
		return *m, v.update(msg)
	}

	if v.searching {
		switch {
		case key.Matches(msg, keys.Escape):
			v.searching = false
			v.search.SetValue("")
			v.search.Blur()
			m.book.SetSearch("")
			v.cursor = 0
			return *m, nil
		case key.Matches(msg, keys.Enter):
			v.searching = false
			v.search.Blur()
			return *m, nil
		}
		cmd := v.update(msg)
		m.book.SetSearch(v.search.Value())
		v.cursor = 0
		return *m, cmd
	}

	visible := m.book.Visible()
	switch {
	case key.Matches(msg, keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, keys.Down):
		if v.cursor < len(visible)-1 {
			v.cursor++
		}
	case key.Matches(msg, keys.Search):
		v.searching = true
		v.search.Focus()
		return *m, textinput.Blink
	case key.Matches(msg, keys.Sort):
		m.book.ToggleSort()
		v.cursor = 0
	case key.Matches(msg, keys.Add):
		v.adding = true
		v.formErr = ""
		for i := range v.form {
			v.form[i].SetValue("")
		}
		v.focusField(contactFieldName)
		return *m, textinput.Blink
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Delete):
		if v.cursor >= len(visible) {
			return *m, nil
		}
		id := visible[v.cursor].ID
		var err error
		if key.Matches(msg, keys.Edit) {
			err = m.book.Edit(id, addressbook.Draft{})
		} else {
			err = m.book.Delete(id)
		}
		return *m, m.setFlash(err.Error(), true)
	case key.Matches(msg, keys.Reload), key.Matches(msg, keys.Refresh):
		return *m, m.loadContacts()
	}
	return *m, nil
}

func (m *Model) loadContacts() tea.Cmd {
	owner := m.session.Email()
	if owner == "" {
		return nil
	}
	m.contacts.loading = true
	backend, ctx := m.backend, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		cs, err := backend.ContactsByOwner(ctx, owner)
		return contactsMsg{owner: owner, contacts: cs, err: err}
	})
}

func (m *Model) contactsLoaded(msg contactsMsg) (Model, tea.Cmd) {
	if msg.owner != m.session.Email() {
		return *m, nil
	}
	m.contacts.loading = false
	if msg.err != nil {
		m.contacts.loadErr = msg.err.Error()
		m.log.Warn("contacts load failed", "owner", msg.owner, "error", msg.err)
		return *m, nil
	}
	m.contacts.loadErr = ""
	m.book.Replace(msg.contacts)
	if n := len(m.book.Visible()); m.contacts.cursor >= n {
		m.contacts.cursor = max(n-1, 0)
	}
	return *m, nil
}

// createContact validates the form and, only if it is valid, asks the
// phonebook service to store it.
func (m *Model) createContact() tea.Cmd {
	v := &m.contacts
	if v.saving {
		return nil
	}
	d := addressbook.Draft{
		Name:    v.form[contactFieldName].Value(),
		Phone:   v.form[contactFieldPhone].Value(),
		Carrier: v.form[contactFieldCarrier].Value(),
	}
	req, err := d.Request(m.session.Email())
	if err != nil {
		v.formErr = err.Error()
		return nil
	}
	v.formErr = ""
	v.saving = true
	backend, ctx, epoch := m.backend, m.ctx, m.epoch
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		c, err := backend.CreateContact(ctx, req)
		return contactCreatedMsg{epoch: epoch, contact: c, err: err}
	})
}

func (m *Model) contactCreated(msg contactCreatedMsg) (Model, tea.Cmd) {
	v := &m.contacts
	v.saving = false
	if msg.err != nil {
		v.formErr = msg.err.Error()
		return *m, nil
	}
	m.book.Add(*msg.contact)
	v.adding = false
	return *m, m.setFlash("Saved "+msg.contact.ContactName, false)
}

func (m Model) renderContacts(width, height int) string {
	v := m.contacts
	var b strings.Builder

	visible := m.book.Visible()
	header := titleStyle.Render("Address Book") + " " + loadingIndicator(v.loading) +
		dimStyle.Render(fmt.Sprintf("  %s of %s  sort %s", humanize.Comma(int64(len(visible))), humanize.Comma(int64(m.book.Len())), m.book.Order()))
	b.WriteString(header + "\n")

	switch {
	case v.searching:
		b.WriteString("/ " + v.search.View() + "\n")
	case m.book.Search() != "":
		b.WriteString(dimStyle.Render("search: "+m.book.Search()) + "\n")
	default:
		b.WriteString("\n")
	}
	if v.loadErr != "" {
		b.WriteString(statusFailed.Render(v.loadErr) + "\n")
	}

	nameW := max(min(width/3, 24), 8)
	phoneW := 15
	b.WriteString(dimStyle.Render(addressbook.Cell("Name", nameW)+"  "+addressbook.Cell("Phone", phoneW)+"  Carrier") + "\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", min(width-4, nameW+phoneW+12))) + "\n")

	listH := height - 8
	if v.adding {
		listH -= 6
	}
	if len(visible) == 0 {
		b.WriteString(dimStyle.Render("No contacts. Press a to add one.") + "\n")
	}
	start := 0
	if v.cursor >= listH && listH > 0 {
		start = v.cursor - listH + 1
	}
	for i := start; i < len(visible) && i-start < max(listH, 1); i++ {
		row := addressbook.Row(visible[i], nameW, phoneW)
		if i == v.cursor {
			b.WriteString(selectedStyle.Render(row) + "\n")
		} else {
			b.WriteString(row + "\n")
		}
	}

	if v.adding {
		b.WriteString("\n" + m.renderContactForm())
	} else {
		b.WriteString("\n" + dimStyle.Render("edit and delete are not offered by the phonebook service"))
	}

	return activePanelBorder.Width(max(width-2, 10)).Height(max(height-2, 3)).
		Render(lipgloss.NewStyle().MaxHeight(max(height-2, 3)).Render(b.String()))
}

func (m Model) renderContactForm() string {
	v := m.contacts
	var b strings.Builder
	title := titleStyle.Render("New contact")
	if v.saving {
		title += " " + m.spinner.View() + statusThinking.Render(" saving...")
	}
	b.WriteString(title + "\n")
	labels := [contactFieldCount]string{"Name", "Phone", "Carrier"}
	for i := range v.form {
		marker, style := "  ", dimStyle
		if i == v.field {
			marker, style = "▸ ", accentStyle
		}
		b.WriteString(marker + style.Render(padRight(labels[i]+":", 9)) + v.form[i].View() + "\n")
	}
	if v.formErr != "" {
		b.WriteString(statusFailed.Render(v.formErr) + "\n")
	}
	b.WriteString(dimStyle.Render("tab: next field  ↵: save  esc: cancel"))
	return b.String()
}
