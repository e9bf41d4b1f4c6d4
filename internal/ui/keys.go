package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	NextField  key.Binding
	PrevField  key.Binding
	Enter      key.Binding
	Escape     key.Binding
	Tab1       key.Binding
	Tab2       key.Binding
	Tab3       key.Binding
	Logout     key.Binding
	ToggleMode key.Binding

	// messaging
	Send         key.Binding
	Refresh      key.Binding
	NextModel    key.Binding
	PrevModel    key.Binding
	CopyReply    key.Binding
	InsertReply  key.Binding
	LoadContacts key.Binding
	LeftNarrow   key.Binding
	LeftWiden    key.Binding
	RightNarrow  key.Binding
	RightWiden   key.Binding
	ResetLayout  key.Binding

	// lists
	Up     key.Binding
	Down   key.Binding
	Search key.Binding
	Sort   key.Binding
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Reload key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev field"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "submit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("f1", "alt+1"),
		key.WithHelp("f1", "messages"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("f2", "alt+2"),
		key.WithHelp("f2", "dashboard"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("f3", "alt+3"),
		key.WithHelp("f3", "contacts"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "logout"),
	),
	ToggleMode: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "login/signup"),
	),

	Send: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "send"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	NextModel: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next model"),
	),
	PrevModel: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "prev model"),
	),
	CopyReply: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy reply"),
	),
	InsertReply: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "use reply"),
	),
	LoadContacts: key.NewBinding(
		key.WithKeys("ctrl+b"),
		key.WithHelp("ctrl+b", "add contacts"),
	),
	LeftNarrow: key.NewBinding(
		key.WithKeys("ctrl+left"),
		key.WithHelp("ctrl+←/→", "left splitter"),
	),
	LeftWiden: key.NewBinding(
		key.WithKeys("ctrl+right"),
	),
	RightNarrow: key.NewBinding(
		key.WithKeys("shift+left"),
		key.WithHelp("shift+←/→", "right splitter"),
	),
	RightWiden: key.NewBinding(
		key.WithKeys("shift+right"),
	),
	ResetLayout: key.NewBinding(
		key.WithKeys("ctrl+w"),
		key.WithHelp("ctrl+w", "reset panes"),
	),

	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
}

func (k keyMap) messagingHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Send, k.Refresh, k.NextModel, k.CopyReply, k.InsertReply, k.LoadContacts, k.Logout, k.Quit}
}

func (k keyMap) dashboardHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Enter, k.Refresh, k.Logout, k.Quit}
}

func (k keyMap) contactsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Search, k.Sort, k.Add, k.Edit, k.Delete, k.Reload, k.Logout, k.Quit}
}

func (k keyMap) loginHelp() []key.Binding {
	return []key.Binding{k.NextField, k.Enter, k.ToggleMode, k.Quit}
}
