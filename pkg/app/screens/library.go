package screens

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/listing"
	"github.com/kerbaras/novelshelf/pkg/services"
)

var (
	statusCycle = []string{"", string(data.NovelOngoing), string(data.NovelCompleted), string(data.NovelStopped)}
	sortCycle   = []string{"", "latest", "popular", "title", "chapters"}
)

type LibraryScreen struct {
	ctrl      *services.Controller
	pager     *listing.Pager[data.Novel]
	debouncer *listing.Debouncer
	input     textinput.Model
	novelList *components.NovelList
	home      *services.HomeSections
	loading   bool
	width     int
	height    int

	// Categories seen so far; the first entry means all.
	categories []string
}

func NewLibraryScreen(ctrl *services.Controller) *LibraryScreen {
	ti := textinput.New()
	ti.Placeholder = "Search novels... (/)"
	ti.CharLimit = 100
	ti.Width = 50

	return &LibraryScreen{
		ctrl:       ctrl,
		pager:      ctrl.Library.Browse(),
		debouncer:  listing.NewDebouncer(ctrl.Config.Debounce),
		input:      ti,
		novelList:  components.NewNovelList(),
		categories: []string{""},
	}
}

func (s *LibraryScreen) Init() tea.Cmd {
	if s.pager.Loaded() || s.loading {
		return nil
	}
	s.loading = true
	return tea.Batch(s.loadHome, s.fetch(func(ctx context.Context) error {
		return s.pager.Reload(ctx)
	}))
}

func (s *LibraryScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *LibraryScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.novelList.Width = msg.Width - 4
		s.novelList.Height = msg.Height - 12

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.updateSearch(msg)
		}
		return s.handleKey(msg)

	case homeLoadedMsg:
		s.home = msg.home
		if msg.home != nil {
			s.learnCategories(msg.home.Latest)
			s.learnCategories(msg.home.Popular)
			s.learnCategories(msg.home.Completed)
		}
		return s, reportError(msg.err)

	case novelsLoadedMsg:
		s.loading = false
		s.learnCategories(s.pager.Items())
		s.novelList.SetItems(s.pager.Items())
		s.novelList.HasMore = s.pager.HasMore()
		return s, reportError(msg.err)

	case searchSettledMsg:
		if !s.debouncer.Settled(msg.tag) {
			return s, nil
		}
		return s, s.search(s.input.Value())
	}

	return s, nil
}

func (s *LibraryScreen) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		return s, nil
	case "enter":
		// Search now rather than waiting for the pause.
		s.input.Blur()
		s.debouncer.Cancel()
		return s, s.search(s.input.Value())
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if s.input.Value() == before {
		return s, cmd
	}

	tag := s.debouncer.Mark()
	settle := tea.Tick(s.debouncer.Delay(), func(time.Time) tea.Msg {
		return searchSettledMsg{tag: tag}
	})
	return s, tea.Batch(cmd, settle)
}

func (s *LibraryScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		s.input.Focus()
		return s, textinput.Blink
	case "up", "k":
		s.novelList.Prev()
	case "down", "j":
		if s.novelList.AtEnd() && s.pager.HasMore() {
			return s, s.nextPage()
		}
		s.novelList.Next()
	case "n", "pgdown":
		return s, s.nextPage()
	case "s":
		status := next(statusCycle, s.pager.Query().Status)
		return s, s.fetch(func(ctx context.Context) error { return s.pager.SetStatus(ctx, status) })
	case "c":
		category := next(s.categories, s.pager.Query().Category)
		return s, s.fetch(func(ctx context.Context) error { return s.pager.SetCategory(ctx, category) })
	case "o":
		sort := next(sortCycle, s.pager.Query().Sort)
		return s, s.fetch(func(ctx context.Context) error { return s.pager.SetSort(ctx, sort) })
	case "r":
		return s, tea.Batch(s.loadHome, s.fetch(func(ctx context.Context) error { return s.pager.Reload(ctx) }))
	case "enter":
		if selected := s.novelList.Selected(); selected != nil {
			return s, switchTo(detailsView, selected.ID)
		}
	}
	return s, nil
}

func (s *LibraryScreen) learnCategories(novels []data.Novel) {
	for _, n := range novels {
		if n.Category != "" && !slices.Contains(s.categories, n.Category) {
			s.categories = append(s.categories, n.Category)
		}
	}
	slices.Sort(s.categories[1:])
}

func next(cycle []string, current string) string {
	for i, v := range cycle {
		if v == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (s *LibraryScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("📚 Novel Library")

	inputStyle := styles.InputStyle
	if s.input.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	inputView := inputStyle.Render(s.input.View())

	q := s.pager.Query()
	filters := styles.MutedStyle.Render(fmt.Sprintf("status: %s • category: %s • sort: %s",
		orAll(q.Status), orAll(q.Category), orDefault(q.Sort)))

	var body string
	switch {
	case s.loading && !s.pager.Loaded():
		body = styles.StatusActive.Render("Loading...")
	default:
		body = s.novelList.View()
	}

	help := styles.HelpStyle.Render(
		"/: search • ↑/k ↓/j: navigate • enter: details • s: status • c: category • o: sort • n: more • r: refresh • tab: switch view • q: quit",
	)

	return fmt.Sprintf("%s\n%s\n%s\n%s\n\n%s\n%s", header, s.renderHome(), inputView, filters, body, help)
}

func (s *LibraryScreen) renderHome() string {
	if s.home == nil {
		return ""
	}
	line := func(label string, novels []data.Novel) string {
		titles := make([]string, 0, 3)
		for i, n := range novels {
			if i == 3 {
				break
			}
			titles = append(titles, n.Title)
		}
		return styles.SubtitleStyle.Render(label+": ") + styles.TextStyle.Render(components.Truncate(strings.Join(titles, ", "), s.width-20))
	}
	return strings.Join([]string{
		line("Latest", s.home.Latest),
		line("Popular", s.home.Popular),
		line("Completed", s.home.Completed),
	}, "\n") + "\n"
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

// Messages
type homeLoadedMsg struct {
	home *services.HomeSections
	err  error
}

type novelsLoadedMsg struct {
	err error
}

type searchSettledMsg struct {
	tag uint64
}

// Commands
func (s *LibraryScreen) loadHome() tea.Msg {
	home, err := s.ctrl.Library.Home(context.Background())
	return homeLoadedMsg{home: home, err: err}
}

func (s *LibraryScreen) fetch(op func(ctx context.Context) error) tea.Cmd {
	s.loading = true
	return func() tea.Msg {
		return novelsLoadedMsg{err: op(context.Background())}
	}
}

func (s *LibraryScreen) search(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	return s.fetch(func(ctx context.Context) error { return s.pager.SetSearch(ctx, query) })
}

func (s *LibraryScreen) nextPage() tea.Cmd {
	if !s.pager.HasMore() {
		return nil
	}
	return s.fetch(func(ctx context.Context) error { return s.pager.NextPage(ctx) })
}
