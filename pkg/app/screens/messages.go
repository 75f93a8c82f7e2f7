package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/data"
)

type screenType int

const (
	libraryView screenType = iota
	jobsView
	watchlistView
	adminView
	settingsView
	detailsView
	readerView
	commentsView
	jobDetailView
	loginView
)

// Tabs are the top-level views reachable with tab.
var tabs = []struct {
	view  screenType
	label string
}{
	{libraryView, "Library"},
	{jobsView, "Jobs"},
	{watchlistView, "Watchlist"},
	{adminView, "Admin"},
	{settingsView, "Settings"},
}

// SwitchScreenMsg asks the root screen to navigate.
type SwitchScreenMsg struct {
	Screen screenType
	Data   interface{}
}

// ErrorMsg routes a failed call to the root screen, which decides between a
// toast, offline mode and a forced logout.
type ErrorMsg struct {
	Err error
}

// ToastMsg shows a transient notice.
type ToastMsg struct {
	Text    string
	Success bool
}

type readerTarget struct {
	Novel  *data.Novel
	Number int
}

type jobTarget struct {
	Kind data.JobKind
	ID   string
}

// capturer is implemented by screens with a focused text field, so keys like
// q and tab reach the field instead of the root.
type capturer interface {
	Capturing() bool
}

// closer is implemented by screens holding background work that must stop
// when the screen is left.
type closer interface {
	Close()
}

func switchTo(screen screenType, data interface{}) tea.Cmd {
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: screen, Data: data}
	}
}

func reportError(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

func toast(text string, success bool) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Text: text, Success: success}
	}
}
