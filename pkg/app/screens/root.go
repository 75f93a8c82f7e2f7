package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type RootScreen struct {
	ctrl *services.Controller

	currentView screenType
	screens     map[screenType]tea.Model
	toaster     *components.Toaster

	sessionCh <-chan struct{}
	loggedIn  bool

	width  int
	height int
}

type sessionRestoredMsg struct{ err error }

type sessionChangedMsg struct{}

func NewRootScreen(ctrl *services.Controller) *RootScreen {
	r := &RootScreen{
		ctrl:        ctrl,
		currentView: libraryView,
		toaster:     components.NewToaster(0),
		sessionCh:   ctrl.Session.Subscribe(),
		loggedIn:    ctrl.Session.LoggedIn(),
	}
	r.screens = map[screenType]tea.Model{
		libraryView:   NewLibraryScreen(ctrl),
		jobsView:      NewJobsScreen(ctrl),
		watchlistView: NewWatchlistScreen(ctrl),
		adminView:     NewAdminScreen(ctrl),
		settingsView:  NewSettingsScreen(ctrl),
	}
	return r
}

func (r *RootScreen) Init() tea.Cmd {
	return tea.Batch(
		r.restoreSession,
		r.listenForSession,
		r.screens[libraryView].Init(),
	)
}

func (r *RootScreen) restoreSession() tea.Msg {
	return sessionRestoredMsg{err: r.ctrl.Session.Restore(context.Background())}
}

func (r *RootScreen) listenForSession() tea.Msg {
	<-r.sessionCh
	return sessionChangedMsg{}
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.height = msg.Height
		return r, r.broadcast(r.contentSize())

	case tea.KeyMsg:
		return r.handleKey(msg)

	case SwitchScreenMsg:
		return r, r.navigate(msg.Screen, msg.Data)

	case ErrorMsg:
		return r, r.handleError(msg.Err)

	case ToastMsg:
		level := components.ToastInfo
		if msg.Success {
			level = components.ToastSuccess
		}
		return r, r.toaster.Show(msg.Text, level)

	case components.ToastExpiredMsg:
		r.toaster.Update(msg)
		return r, nil

	case sessionRestoredMsg:
		r.loggedIn = r.ctrl.Session.LoggedIn()
		switch {
		case api.IsUnauthorized(msg.err):
			return r, r.toaster.Show("Session expired, please sign in again", components.ToastError)
		case msg.err != nil:
			return r, r.toaster.Show(api.Message(msg.err), components.ToastError)
		case r.ctrl.Session.Offline():
			return r, r.toaster.Show("Offline: showing cached data", components.ToastInfo)
		}
		return r, nil

	case sessionChangedMsg:
		now := r.ctrl.Session.LoggedIn()
		wasLoggedIn := r.loggedIn
		r.loggedIn = now
		cmds := []tea.Cmd{r.listenForSession, r.broadcast(msg)}
		if wasLoggedIn && !now && r.currentView != loginView {
			cmds = append(cmds, r.navigate(loginView, nil))
		}
		return r, tea.Batch(cmds...)
	}

	// Async results go to every open screen; each only reacts to its own.
	return r, r.broadcast(msg)
}

func (r *RootScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return r, tea.Quit
	}
	if c, ok := r.screens[r.currentView].(capturer); ok && c.Capturing() {
		return r, r.forward(msg)
	}

	switch msg.String() {
	case "q":
		return r, tea.Quit
	case "tab", "shift+tab":
		if idx := tabIndex(r.currentView); idx >= 0 {
			step := 1
			if msg.String() == "shift+tab" {
				step = len(tabs) - 1
			}
			return r, r.navigate(tabs[(idx+step)%len(tabs)].view, nil)
		}
	case "1", "2", "3", "4", "5":
		if tabIndex(r.currentView) >= 0 {
			return r, r.navigate(tabs[int(msg.String()[0]-'1')].view, nil)
		}
	}
	return r, r.forward(msg)
}

func tabIndex(view screenType) int {
	for i, t := range tabs {
		if t.view == view {
			return i
		}
	}
	return -1
}

func (r *RootScreen) forward(msg tea.Msg) tea.Cmd {
	screen, ok := r.screens[r.currentView]
	if !ok {
		return nil
	}
	updated, cmd := screen.Update(msg)
	r.screens[r.currentView] = updated
	return cmd
}

func (r *RootScreen) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for view, screen := range r.screens {
		updated, cmd := screen.Update(msg)
		r.screens[view] = updated
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (r *RootScreen) contentSize() tea.WindowSizeMsg {
	// Tabs, status line and toast take four lines.
	return tea.WindowSizeMsg{Width: r.width, Height: r.height - 4}
}

func (r *RootScreen) navigate(view screenType, data interface{}) tea.Cmd {
	if r.currentView != view {
		r.leave(r.currentView)
	}

	var screen tea.Model
	switch view {
	case detailsView:
		// Without a novel ID this is a "back" to the open details screen.
		if novelID, ok := data.(string); ok {
			screen = NewDetailsScreen(r.ctrl, novelID)
		} else {
			screen = r.screens[detailsView]
		}
	case readerView:
		target, ok := data.(readerTarget)
		if !ok {
			return nil
		}
		screen = NewReaderScreen(r.ctrl, target.Novel, target.Number)
	case commentsView:
		target, ok := data.(readerTarget)
		if !ok {
			return nil
		}
		screen = NewCommentsScreen(r.ctrl, target.Novel)
	case jobDetailView:
		target, ok := data.(jobTarget)
		if !ok {
			return nil
		}
		screen = NewJobDetailScreen(r.ctrl, target.Kind, target.ID)
	case loginView:
		screen = NewLoginScreen(r.ctrl)
	default:
		screen = r.screens[view]
	}
	if screen == nil {
		return nil
	}

	screen, _ = screen.Update(r.contentSize())
	r.screens[view] = screen
	r.currentView = view
	return screen.Init()
}

// leave stops and drops transient screens.
func (r *RootScreen) leave(view screenType) {
	if tabIndex(view) >= 0 || view == detailsView {
		return
	}
	if c, ok := r.screens[view].(closer); ok {
		c.Close()
	}
	delete(r.screens, view)
}

func (r *RootScreen) handleError(err error) tea.Cmd {
	if r.ctrl.Session.HandleError(err) {
		r.loggedIn = false
		cmds := []tea.Cmd{r.toaster.Show("Session expired, please sign in again", components.ToastError)}
		if r.currentView != loginView {
			cmds = append(cmds, r.navigate(loginView, nil))
		}
		return tea.Batch(cmds...)
	}

	switch api.Classify(err) {
	case api.OutcomeOK, api.OutcomeCancelled:
		return nil
	case api.OutcomeForceLogout:
		// Already signed out; a protected action needs a login.
		return r.toaster.Show("Sign in to continue", components.ToastError)
	case api.OutcomeNotFound:
		return r.toaster.Show("Not found", components.ToastError)
	default:
		return r.toaster.Show(api.Message(err), components.ToastError)
	}
}

func (r *RootScreen) View() string {
	screen, ok := r.screens[r.currentView]
	if !ok {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top, r.renderTabs(), "  ", r.renderStatus())
	return fmt.Sprintf("%s\n\n%s\n%s", header, screen.View(), r.toaster.View())
}

func (r *RootScreen) renderTabs() string {
	if tabIndex(r.currentView) < 0 {
		// Don't show tabs in nested views
		return ""
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.view == r.currentView {
			rendered[i] = styles.ActiveTabStyle.Render(t.label)
		} else {
			rendered[i] = styles.InactiveTabStyle.Render(t.label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (r *RootScreen) renderStatus() string {
	var status string
	if user := r.ctrl.Session.User(); user != nil {
		status = styles.MutedStyle.Render(user.Name+" ") + styles.RoleStyle(string(user.Role)).Render(string(user.Role))
	} else {
		status = styles.MutedStyle.Render("not signed in")
	}
	if r.ctrl.Session.Offline() {
		status += " " + styles.OfflineBadge.Render("OFFLINE")
	}
	return status
}
