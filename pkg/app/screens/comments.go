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
	"github.com/kerbaras/novelshelf/pkg/reactions"
	"github.com/kerbaras/novelshelf/pkg/services"
)

// commentRow is one line of the flattened reply tree.
type commentRow struct {
	comment data.Comment
	depth   int
}

type CommentsScreen struct {
	ctrl       *services.Controller
	novel      *data.Novel
	discussion *services.Discussion
	rows       []commentRow
	selected   int
	input      textinput.Model
	replyTo    string
	loading    bool
	posting    bool
	width      int
	height     int
	err        error
}

func NewCommentsScreen(ctrl *services.Controller, novel *data.Novel) *CommentsScreen {
	ti := textinput.New()
	ti.Placeholder = "Write a comment..."
	ti.CharLimit = 2000
	ti.Width = 60

	return &CommentsScreen{
		ctrl:       ctrl,
		novel:      novel,
		discussion: ctrl.Discussion(novel.ID),
		input:      ti,
	}
}

func (s *CommentsScreen) Init() tea.Cmd {
	s.loading = true
	return s.load
}

func (s *CommentsScreen) Capturing() bool {
	return s.input.Focused()
}

// Close waits for pending reactions so they are not cut off on exit.
func (s *CommentsScreen) Close() {
	s.discussion.Thread.Wait()
}

func (s *CommentsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.input.Width = msg.Width - 10

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.updateCompose(msg)
		}
		return s.handleKey(msg)

	case commentsLoadedMsg:
		if msg.novelID != s.novel.ID {
			return s, nil
		}
		s.loading = false
		s.err = msg.err
		s.refresh()
		return s, reportError(msg.err)

	case commentPostedMsg:
		if msg.novelID != s.novel.ID {
			return s, nil
		}
		s.posting = false
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		s.input.Reset()
		s.replyTo = ""
		s.refresh()
		return s, toast("Comment posted", true)
	}

	return s, nil
}

func (s *CommentsScreen) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		s.replyTo = ""
		return s, nil
	case "enter":
		if s.posting || strings.TrimSpace(s.input.Value()) == "" {
			return s, nil
		}
		s.posting = true
		s.input.Blur()
		return s, s.post(s.input.Value(), s.replyTo)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *CommentsScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.rows)-1 {
			s.selected++
		}
	case "c":
		return s.compose("")
	case "r":
		if c := s.current(); c != nil {
			return s.compose(c.ID)
		}
	case "l":
		if c := s.current(); c != nil {
			if !s.discussion.Thread.Like(c.ID) {
				return s, toast("Sign in to react", false)
			}
			s.refresh()
		}
	case "d":
		if c := s.current(); c != nil {
			if !s.discussion.Thread.Dislike(c.ID) {
				return s, toast("Sign in to react", false)
			}
			s.refresh()
		}
	case "x":
		if c := s.current(); c != nil && s.canRemove(c) {
			s.discussion.Thread.Remove(c.ID)
			s.refresh()
		}
	case "R":
		s.loading = true
		return s, s.load
	case "esc", "backspace":
		return s, switchTo(detailsView, nil)
	}
	return s, nil
}

func (s *CommentsScreen) compose(parentID string) (tea.Model, tea.Cmd) {
	if !s.ctrl.Session.LoggedIn() {
		return s, toast("Sign in to comment", false)
	}
	s.replyTo = parentID
	if parentID != "" {
		s.input.Placeholder = "Write a reply..."
	} else {
		s.input.Placeholder = "Write a comment..."
	}
	s.input.Focus()
	return s, textinput.Blink
}

func (s *CommentsScreen) canRemove(c *data.Comment) bool {
	u := s.ctrl.Session.User()
	return u != nil && (u.ID == c.AuthorID || u.Role == data.RoleAdmin)
}

func (s *CommentsScreen) current() *data.Comment {
	if s.selected < 0 || s.selected >= len(s.rows) {
		return nil
	}
	return &s.rows[s.selected].comment
}

// refresh flattens the thread into display order, replies under parents.
func (s *CommentsScreen) refresh() {
	all := s.discussion.Thread.Comments()
	present := make(map[string]bool, len(all))
	for _, c := range all {
		present[c.ID] = true
	}

	s.rows = s.rows[:0]
	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, c := range reactions.Replies(all, parentID) {
			s.rows = append(s.rows, commentRow{comment: c, depth: depth})
			walk(c.ID, depth+1)
		}
	}
	walk("", 0)
	// Replies whose parent is gone are shown at the top level.
	for _, c := range all {
		if c.ParentID != "" && !present[c.ParentID] {
			s.rows = append(s.rows, commentRow{comment: c})
			walk(c.ID, 1)
		}
	}

	if s.selected >= len(s.rows) {
		s.selected = len(s.rows) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

func (s *CommentsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("💬 %s", s.novel.Title))

	var body string
	switch {
	case s.loading && len(s.rows) == 0:
		body = styles.StatusActive.Render("Loading comments...")
	case s.err != nil && len(s.rows) == 0:
		body = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	case len(s.rows) == 0:
		body = styles.MutedStyle.Render("No comments yet. Press c to start the discussion.")
	default:
		body = s.renderRows()
	}

	var compose string
	if s.input.Focused() || s.posting {
		label := "New comment"
		if s.replyTo != "" {
			label = "Reply"
		}
		compose = "\n" + styles.SubtitleStyle.Render(label) + "\n" + styles.FocusedInputStyle.Render(s.input.View())
	}

	help := "↑/k ↓/j: navigate • c: comment • r: reply • l: like • d: dislike • x: delete • R: reload • esc: back"
	if s.input.Focused() {
		help = "enter: post • esc: cancel"
	}

	return fmt.Sprintf("%s\n%s%s\n%s", header, body, compose, styles.HelpStyle.Render(help))
}

func (s *CommentsScreen) renderRows() string {
	userID := ""
	if u := s.ctrl.Session.User(); u != nil {
		userID = u.ID
	}

	window := (s.height - 8) / 2
	if window < 3 {
		window = 3
	}
	start := 0
	if s.selected >= window {
		start = s.selected - window + 1
	}
	end := start + window
	if end > len(s.rows) {
		end = len(s.rows)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		row := s.rows[i]
		c := row.comment
		indent := strings.Repeat("  ", row.depth)

		likes := fmt.Sprintf("▲ %d", len(c.LikedBy))
		dislikes := fmt.Sprintf("▼ %d", len(c.DislikedBy))
		if userID != "" && contains(c.LikedBy, userID) {
			likes = styles.StatusCompleted.Render(likes)
		}
		if userID != "" && contains(c.DislikedBy, userID) {
			dislikes = styles.StatusError.Render(dislikes)
		}

		meta := fmt.Sprintf("%s%s %s %s", indent, c.AuthorName, styles.MutedStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")), likes+" "+dislikes)
		text := indent + "  " + components.Truncate(c.Content, s.width-len(indent)-6)

		if i == s.selected {
			b.WriteString(styles.CursorStyle.Render("› ") + meta + "\n" + styles.CursorStyle.Render(text))
		} else {
			b.WriteString("  " + meta + "\n" + styles.TextStyle.Render(text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Messages
type commentsLoadedMsg struct {
	novelID string
	err     error
}

type commentPostedMsg struct {
	novelID string
	err     error
}

// Commands
func (s *CommentsScreen) load() tea.Msg {
	return commentsLoadedMsg{novelID: s.novel.ID, err: s.discussion.Load(context.Background())}
}

func (s *CommentsScreen) post(text, parentID string) tea.Cmd {
	novelID := s.novel.ID
	return func() tea.Msg {
		_, err := s.discussion.Post(context.Background(), text, parentID)
		return commentPostedMsg{novelID: novelID, err: err}
	}
}
