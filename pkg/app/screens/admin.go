package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/listing"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type adminPane int

const (
	usersPane adminPane = iota
	glossaryPane
)

// What the shared text field is collecting.
type adminInput int

const (
	inputNone adminInput = iota
	inputSearch
	inputNovel
	inputTerm
)

var roleCycle = []string{string(data.RoleUser), string(data.RoleContributor), string(data.RoleAdmin)}

type AdminScreen struct {
	ctrl *services.Controller
	pane adminPane

	users        *listing.Pager[data.User]
	usersLoading bool
	selectedUser int

	novelID      string
	terms        []data.GlossaryTerm
	selectedTerm int
	editingTerm  string

	input     textinput.Model
	inputMode adminInput

	width  int
	height int
}

func NewAdminScreen(ctrl *services.Controller) *AdminScreen {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 50

	return &AdminScreen{
		ctrl:  ctrl,
		users: ctrl.Admin.Users(),
		input: ti,
	}
}

func (s *AdminScreen) Init() tea.Cmd {
	if !s.ctrl.Session.IsAdmin() || s.users.Loaded() || s.usersLoading {
		return nil
	}
	return s.fetchUsers(func(ctx context.Context) error { return s.users.Reload(ctx) })
}

func (s *AdminScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *AdminScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		if !s.ctrl.Session.IsAdmin() {
			return s, nil
		}
		if s.input.Focused() {
			return s.updateInput(msg)
		}
		return s.handleKey(msg)

	case usersLoadedMsg:
		s.usersLoading = false
		if items := s.users.Items(); s.selectedUser >= len(items) {
			s.selectedUser = max(len(items)-1, 0)
		}
		return s, reportError(msg.err)

	case roleChangedMsg:
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, tea.Batch(
			toast(fmt.Sprintf("%s is now %s", msg.user.Name, msg.user.Role), true),
			s.fetchUsers(func(ctx context.Context) error { return s.users.Reload(ctx) }),
		)

	case glossaryLoadedMsg:
		if msg.novelID != s.novelID {
			return s, nil
		}
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		s.terms = msg.terms
		if s.selectedTerm >= len(s.terms) {
			s.selectedTerm = max(len(s.terms)-1, 0)
		}

	case glossaryChangedMsg:
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, tea.Batch(toast(msg.text, true), s.loadGlossary(s.novelID))

	case sessionChangedMsg:
		// Load the list once an admin signs in.
		if s.ctrl.Session.IsAdmin() && !s.users.Loaded() {
			return s, s.Init()
		}
	}

	return s, nil
}

func (s *AdminScreen) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.closeInput()
		s.editingTerm = ""
		return s, nil
	case "enter":
		value := strings.TrimSpace(s.input.Value())
		mode := s.inputMode
		s.closeInput()
		switch mode {
		case inputSearch:
			return s, s.fetchUsers(func(ctx context.Context) error { return s.users.SetSearch(ctx, value) })
		case inputNovel:
			s.novelID = value
			s.terms = nil
			s.selectedTerm = 0
			return s, s.loadGlossary(value)
		case inputTerm:
			term, translation, ok := strings.Cut(value, "=")
			if !ok {
				return s, toast("Use term=translation", false)
			}
			id := s.editingTerm
			s.editingTerm = ""
			return s, s.upsertTerm(data.GlossaryTerm{ID: id, NovelID: s.novelID, Term: term, Translation: translation})
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *AdminScreen) openInput(mode adminInput, placeholder, value string) (tea.Model, tea.Cmd) {
	s.inputMode = mode
	s.input.Placeholder = placeholder
	s.input.SetValue(value)
	s.input.Focus()
	return s, textinput.Blink
}

func (s *AdminScreen) closeInput() {
	s.input.Blur()
	s.input.Reset()
	s.inputMode = inputNone
}

func (s *AdminScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "v" {
		if s.pane == usersPane {
			s.pane = glossaryPane
		} else {
			s.pane = usersPane
		}
		return s, nil
	}
	if s.pane == usersPane {
		return s.handleUsersKey(msg)
	}
	return s.handleGlossaryKey(msg)
}

func (s *AdminScreen) handleUsersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	users := s.users.Items()
	switch msg.String() {
	case "up", "k":
		if s.selectedUser > 0 {
			s.selectedUser--
		}
	case "down", "j":
		if s.selectedUser < len(users)-1 {
			s.selectedUser++
		} else if s.users.HasMore() {
			return s, s.fetchUsers(func(ctx context.Context) error { return s.users.NextPage(ctx) })
		}
	case "/":
		return s.openInput(inputSearch, "Search users by name or email", s.users.Query().Search)
	case "r":
		return s, s.fetchUsers(func(ctx context.Context) error { return s.users.Reload(ctx) })
	case "R":
		if s.selectedUser < len(users) {
			u := users[s.selectedUser]
			if me := s.ctrl.Session.User(); me != nil && me.ID == u.ID {
				return s, toast("You cannot change your own role", false)
			}
			return s, s.setRole(u.ID, data.Role(next(roleCycle, string(u.Role))))
		}
	}
	return s, nil
}

func (s *AdminScreen) handleGlossaryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selectedTerm > 0 {
			s.selectedTerm--
		}
	case "down", "j":
		if s.selectedTerm < len(s.terms)-1 {
			s.selectedTerm++
		}
	case "o":
		return s.openInput(inputNovel, "Novel ID", s.novelID)
	case "a":
		if s.novelID == "" {
			return s, toast("Open a novel's glossary first (o)", false)
		}
		return s.openInput(inputTerm, "term=translation", "")
	case "e":
		if s.selectedTerm < len(s.terms) {
			t := s.terms[s.selectedTerm]
			s.editingTerm = t.ID
			return s.openInput(inputTerm, "term=translation", t.Term+"="+t.Translation)
		}
	case "x":
		if s.selectedTerm < len(s.terms) {
			return s, s.deleteTerm(s.terms[s.selectedTerm].ID)
		}
	case "r":
		if s.novelID != "" {
			return s, s.loadGlossary(s.novelID)
		}
	}
	return s, nil
}

func (s *AdminScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("🛡 Admin")
	if !s.ctrl.Session.IsAdmin() {
		return header + "\n" + styles.MutedStyle.Render("Admin access is required.")
	}

	panes := []string{"Users", "Glossary"}
	for i := range panes {
		if adminPane(i) == s.pane {
			panes[i] = styles.ActiveTabStyle.Render(panes[i])
		} else {
			panes[i] = styles.InactiveTabStyle.Render(panes[i])
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Top, panes...)

	var body, help string
	if s.pane == usersPane {
		body = s.renderUsers()
		help = "v: glossary • ↑/k ↓/j: navigate • /: search • R: cycle role • r: refresh"
	} else {
		body = s.renderGlossary()
		help = "v: users • o: open novel • a: add • e: edit • x: delete • r: refresh"
	}

	var input string
	if s.input.Focused() {
		input = "\n" + styles.FocusedInputStyle.Render(s.input.View())
		help = "enter: confirm • esc: cancel"
	}

	return fmt.Sprintf("%s\n%s\n\n%s%s\n%s", header, selector, body, input, styles.HelpStyle.Render(help))
}

func (s *AdminScreen) renderUsers() string {
	users := s.users.Items()
	if len(users) == 0 {
		if s.usersLoading {
			return styles.StatusActive.Render("Loading users...")
		}
		return styles.MutedStyle.Render("No users")
	}

	var b strings.Builder
	if q := s.users.Query().Search; q != "" {
		b.WriteString(styles.MutedStyle.Render("search: "+q) + "\n")
	}
	for i, u := range users {
		line := fmt.Sprintf("%-24s %s", components.Truncate(u.Name, 24), styles.MutedStyle.Render(u.Email))
		role := styles.RoleStyle(string(u.Role)).Render(string(u.Role))
		if i == s.selectedUser {
			b.WriteString(styles.CursorStyle.Render("› ") + line + " " + role)
		} else {
			b.WriteString("  " + line + " " + role)
		}
		b.WriteString("\n")
	}
	if s.users.HasMore() {
		b.WriteString(styles.MutedStyle.Render("  ↓ more"))
	}
	return b.String()
}

func (s *AdminScreen) renderGlossary() string {
	if s.novelID == "" {
		return styles.MutedStyle.Render("Press o and enter a novel ID to manage its glossary.")
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render("Novel "+s.novelID) + "\n\n")
	if len(s.terms) == 0 {
		b.WriteString(styles.MutedStyle.Render("No terms"))
		return b.String()
	}
	for i, t := range s.terms {
		line := fmt.Sprintf("%s → %s", t.Term, t.Translation)
		if t.Notes != "" {
			line += styles.MutedStyle.Render(" (" + t.Notes + ")")
		}
		if i == s.selectedTerm {
			b.WriteString(styles.CursorStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Messages
type usersLoadedMsg struct {
	err error
}

type roleChangedMsg struct {
	user *data.User
	err  error
}

type glossaryLoadedMsg struct {
	novelID string
	terms   []data.GlossaryTerm
	err     error
}

type glossaryChangedMsg struct {
	text string
	err  error
}

// Commands
func (s *AdminScreen) fetchUsers(op func(ctx context.Context) error) tea.Cmd {
	s.usersLoading = true
	return func() tea.Msg {
		return usersLoadedMsg{err: op(context.Background())}
	}
}

func (s *AdminScreen) setRole(userID string, role data.Role) tea.Cmd {
	return func() tea.Msg {
		user, err := s.ctrl.Admin.SetRole(context.Background(), userID, role)
		return roleChangedMsg{user: user, err: err}
	}
}

func (s *AdminScreen) loadGlossary(novelID string) tea.Cmd {
	if novelID == "" {
		return nil
	}
	return func() tea.Msg {
		terms, err := s.ctrl.Admin.Glossary(context.Background(), novelID)
		return glossaryLoadedMsg{novelID: novelID, terms: terms, err: err}
	}
}

func (s *AdminScreen) upsertTerm(term data.GlossaryTerm) tea.Cmd {
	return func() tea.Msg {
		_, err := s.ctrl.Admin.UpsertTerm(context.Background(), term)
		return glossaryChangedMsg{text: "Term saved", err: err}
	}
}

func (s *AdminScreen) deleteTerm(termID string) tea.Cmd {
	novelID := s.novelID
	return func() tea.Msg {
		err := s.ctrl.Admin.DeleteTerm(context.Background(), novelID, termID)
		return glossaryChangedMsg{text: "Term deleted", err: err}
	}
}
