package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/content"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type ReaderScreen struct {
	ctrl     *services.Controller
	novel    *data.Novel
	number   int
	chapter  *data.Chapter
	cached   bool
	loading  bool
	viewport viewport.Model
	ready    bool
	width    int
	height   int
	err      error
}

func NewReaderScreen(ctrl *services.Controller, novel *data.Novel, number int) *ReaderScreen {
	if number < 1 {
		number = 1
	}
	return &ReaderScreen{
		ctrl:   ctrl,
		novel:  novel,
		number: number,
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	return s.load(s.number)
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		// Title and help lines.
		h := msg.Height - 6
		if h < 3 {
			h = 3
		}
		if !s.ready {
			s.viewport = viewport.New(msg.Width, h)
			s.ready = true
		} else {
			s.viewport.Width = msg.Width
			s.viewport.Height = h
		}
		s.render()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "n", "right":
			if s.chapter != nil && !s.loading && (s.novel.ChapterCount == 0 || s.number < s.novel.ChapterCount) {
				return s, s.load(s.number + 1)
			}
			return s, nil
		case "p", "left":
			if s.number > 1 && !s.loading {
				return s, s.load(s.number - 1)
			}
			return s, nil
		case "esc", "backspace":
			return s, switchTo(detailsView, nil)
		}
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd

	case chapterLoadedMsg:
		if msg.novelID != s.novel.ID {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.err = msg.err
			return s, reportError(msg.err)
		}
		s.err = nil
		s.chapter = msg.chapter
		s.number = msg.chapter.Number
		s.cached = msg.cached
		s.render()
		s.viewport.GotoTop()
		return s, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		s.viewport, cmd = s.viewport.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *ReaderScreen) render() {
	if !s.ready || s.chapter == nil {
		return
	}
	width := s.width - 4
	if width > 100 {
		width = 100
	}
	if width < 20 {
		width = 20
	}
	paragraphs := content.Paragraphs(s.chapter.Content)
	if len(paragraphs) == 0 {
		paragraphs = []string{styles.MutedStyle.Render("This chapter has no text yet.")}
	}
	s.viewport.SetContent(styles.ReaderStyle.Width(width).Render(strings.Join(paragraphs, "\n\n")))
}

func (s *ReaderScreen) View() string {
	if !s.ready {
		return "Loading..."
	}

	title := fmt.Sprintf("📖 %s · Ch. %d", s.novel.Title, s.number)
	if s.chapter != nil && s.chapter.Title != "" {
		title += ": " + s.chapter.Title
	}
	header := styles.TitleStyle.Render(title)
	if s.cached {
		header += " " + styles.OfflineBadge.Render("offline copy")
	}

	var body string
	switch {
	case s.loading && s.chapter == nil:
		body = styles.StatusActive.Render("Loading chapter...")
	case s.err != nil && s.chapter == nil:
		body = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	default:
		body = s.viewport.View()
	}

	status := fmt.Sprintf("%3.0f%%", s.viewport.ScrollPercent()*100)
	if s.chapter != nil {
		status += fmt.Sprintf(" · %d words", content.WordCount(s.chapter.Content))
	}
	progress := styles.MutedStyle.Render(status)
	help := styles.HelpStyle.Render("↑/↓ pgup/pgdn: scroll • n/→: next chapter • p/←: previous • esc: back")

	return fmt.Sprintf("%s\n%s\n%s %s", header, body, progress, help)
}

// Messages
type chapterLoadedMsg struct {
	novelID string
	chapter *data.Chapter
	cached  bool
	err     error
}

// Commands
func (s *ReaderScreen) load(number int) tea.Cmd {
	s.loading = true
	novelID := s.novel.ID
	return func() tea.Msg {
		chapter, cached, err := s.ctrl.Library.Chapter(context.Background(), novelID, number)
		return chapterLoadedMsg{novelID: novelID, chapter: chapter, cached: cached, err: err}
	}
}
