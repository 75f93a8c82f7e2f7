package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type WatchlistScreen struct {
	ctrl     *services.Controller
	entries  []data.WatchlistEntry
	selected int
	input    textinput.Model
	loading  bool
	loaded   bool
	width    int
	height   int
}

func NewWatchlistScreen(ctrl *services.Controller) *WatchlistScreen {
	ti := textinput.New()
	ti.Placeholder = "Source URL to watch"
	ti.CharLimit = 500
	ti.Width = 60

	return &WatchlistScreen{ctrl: ctrl, input: ti}
}

func (s *WatchlistScreen) Init() tea.Cmd {
	if s.loaded || s.loading {
		return nil
	}
	return s.refresh()
}

func (s *WatchlistScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *WatchlistScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.input.Width = msg.Width - 10

	case tea.KeyMsg:
		if s.input.Focused() {
			switch msg.String() {
			case "esc":
				s.input.Blur()
				s.input.Reset()
				return s, nil
			case "enter":
				url := strings.TrimSpace(s.input.Value())
				s.input.Blur()
				s.input.Reset()
				return s, s.add(url)
			}
			var cmd tea.Cmd
			s.input, cmd = s.input.Update(msg)
			return s, cmd
		}
		return s.handleKey(msg)

	case watchlistLoadedMsg:
		s.loading = false
		s.loaded = true
		// A failed fetch shows the empty list; the toast carries the error.
		s.entries = msg.entries
		if s.selected >= len(s.entries) {
			s.selected = max(len(s.entries)-1, 0)
		}
		return s, reportError(msg.err)

	case watchlistChangedMsg:
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, tea.Batch(toast(msg.text, true), s.refresh())

	case jobStartedMsg:
		if msg.source != watchlistView {
			return s, nil
		}
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, switchTo(jobDetailView, jobTarget{Kind: data.JobWatchlist, ID: msg.job.ID})
	}

	return s, nil
}

func (s *WatchlistScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.entries)-1 {
			s.selected++
		}
	case "r":
		return s, s.refresh()
	case "a":
		if !s.ctrl.Session.IsAdmin() {
			return s, toast("Only admins can change the watchlist", false)
		}
		s.input.Focus()
		return s, textinput.Blink
	case "x":
		if s.selected < len(s.entries) && s.ctrl.Session.IsAdmin() {
			return s, s.remove(s.entries[s.selected].ID)
		}
	case "c":
		if s.ctrl.Session.IsAdmin() {
			return s, s.checkNow()
		}
	case "enter":
		if s.selected < len(s.entries) && s.entries[s.selected].NovelID != "" {
			return s, switchTo(detailsView, s.entries[s.selected].NovelID)
		}
	}
	return s, nil
}

func (s *WatchlistScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("👁 Watchlist")

	var body string
	switch {
	case !s.ctrl.Session.LoggedIn():
		body = styles.MutedStyle.Render("Sign in from Settings to see the watchlist.")
	case s.loading && len(s.entries) == 0:
		body = styles.StatusActive.Render("Loading watchlist...")
	case len(s.entries) == 0:
		body = styles.MutedStyle.Render("Nothing is being watched")
	default:
		body = s.renderEntries()
	}

	var input string
	if s.input.Focused() {
		input = "\n" + styles.FocusedInputStyle.Render(s.input.View())
	}

	help := "↑/k ↓/j: navigate • enter: open novel • r: refresh"
	if s.ctrl.Session.IsAdmin() {
		help += " • a: add • x: remove • c: check now"
	}
	if s.input.Focused() {
		help = "enter: add • esc: cancel"
	}

	return fmt.Sprintf("%s\n%s%s\n%s", header, body, input, styles.HelpStyle.Render(help))
}

func (s *WatchlistScreen) renderEntries() string {
	var b strings.Builder
	for i, e := range s.entries {
		title := e.Title
		if title == "" {
			title = e.SourceURL
		}
		checked := "never checked"
		if !e.LastChecked.IsZero() {
			checked = "checked " + e.LastChecked.Local().Format("2006-01-02 15:04")
		}
		state := styles.StatusCompleted.Render("on")
		if !e.Enabled {
			state = styles.StatusPaused.Render("off")
		}
		line := fmt.Sprintf("%s %s", state, components.Truncate(title, s.width-50))
		meta := styles.MutedStyle.Render(fmt.Sprintf(" • ch. %d • %s", e.LastChapter, checked))

		if i == s.selected {
			b.WriteString(styles.CursorStyle.Render("› ") + line + meta)
		} else {
			b.WriteString("  " + line + meta)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Messages
type watchlistLoadedMsg struct {
	entries []data.WatchlistEntry
	err     error
}

type watchlistChangedMsg struct {
	text string
	err  error
}

// Commands
func (s *WatchlistScreen) refresh() tea.Cmd {
	if !s.ctrl.Session.LoggedIn() {
		return nil
	}
	s.loading = true
	return func() tea.Msg {
		entries, err := s.ctrl.Watchlist.List(context.Background())
		return watchlistLoadedMsg{entries: entries, err: err}
	}
}

func (s *WatchlistScreen) add(url string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.ctrl.Watchlist.Add(context.Background(), "", url, "")
		return watchlistChangedMsg{text: "Added to watchlist", err: err}
	}
}

func (s *WatchlistScreen) remove(id string) tea.Cmd {
	return func() tea.Msg {
		err := s.ctrl.Watchlist.Remove(context.Background(), id)
		return watchlistChangedMsg{text: "Removed from watchlist", err: err}
	}
}

func (s *WatchlistScreen) checkNow() tea.Cmd {
	return func() tea.Msg {
		job, err := s.ctrl.Watchlist.CheckNow(context.Background())
		return jobStartedMsg{source: watchlistView, job: job, err: err}
	}
}
