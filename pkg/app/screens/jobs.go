package screens

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
)

var jobKinds = []data.JobKind{data.JobTranslate, data.JobTitles, data.JobScrape, data.JobImport, data.JobWatchlist}

type JobsScreen struct {
	ctrl    *services.Controller
	kind    int
	jobs    []data.Job
	table   table.Model
	input   textinput.Model
	mode    data.JobKind // scrape or import while the URL field is open
	loading bool
	loaded  bool
	width   int
	height  int
	err     error
}

func NewJobsScreen(ctrl *services.Controller) *JobsScreen {
	ti := textinput.New()
	ti.CharLimit = 4000
	ti.Width = 60

	t := table.New(
		table.WithColumns(jobColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Foreground(styles.Secondary).Bold(true)
	st.Selected = st.Selected.Foreground(styles.Primary).Bold(true)
	t.SetStyles(st)

	return &JobsScreen{
		ctrl:  ctrl,
		table: t,
		input: ti,
	}
}

func jobColumns(width int) []table.Column {
	title := width - 52
	if title < 12 {
		title = 12
	}
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Novel", Width: title},
		{Title: "Status", Width: 10},
		{Title: "Progress", Width: 16},
		{Title: "Updated", Width: 12},
	}
}

func (s *JobsScreen) Init() tea.Cmd {
	if s.loaded || s.loading {
		return nil
	}
	return s.refresh()
}

func (s *JobsScreen) Capturing() bool {
	return s.input.Focused()
}

func (s *JobsScreen) kindValue() data.JobKind {
	return jobKinds[s.kind]
}

func (s *JobsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.table.SetColumns(jobColumns(msg.Width - 4))
		s.table.SetHeight(max(msg.Height-12, 3))
		s.input.Width = msg.Width - 10

	case tea.KeyMsg:
		if s.input.Focused() {
			return s.updateInput(msg)
		}
		return s.handleKey(msg)

	case jobsLoadedMsg:
		if msg.kind != s.kindValue() {
			return s, nil
		}
		s.loading = false
		s.loaded = true
		s.err = msg.err
		if msg.err == nil {
			s.jobs = msg.jobs
			s.table.SetRows(jobRows(msg.jobs))
		}
		return s, reportError(msg.err)

	case jobsRefreshMsg:
		if msg.kind != s.kindValue() || s.loading {
			return s, nil
		}
		return s, s.refresh()

	case jobStartedMsg:
		if msg.source != jobsView {
			return s, nil
		}
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, tea.Batch(
			s.refresh(),
			switchTo(jobDetailView, jobTarget{Kind: msg.job.Kind, ID: msg.job.ID}),
		)
	}

	return s, nil
}

func (s *JobsScreen) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		s.input.Reset()
		return s, nil
	case "enter":
		value := s.input.Value()
		s.input.Blur()
		s.input.Reset()
		return s, s.start(s.mode, value)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *JobsScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		s.kind = (s.kind + len(jobKinds) - 1) % len(jobKinds)
		return s, s.switchKind()
	case "right", "l":
		s.kind = (s.kind + 1) % len(jobKinds)
		return s, s.switchKind()
	case "r":
		return s, s.refresh()
	case "enter":
		if job := s.selected(); job != nil {
			return s, switchTo(jobDetailView, jobTarget{Kind: s.kindValue(), ID: job.ID})
		}
	case "p":
		return s, s.act(s.ctrl.Jobs.Pause)
	case "u":
		return s, s.act(s.ctrl.Jobs.Resume)
	case "x":
		return s, s.act(s.ctrl.Jobs.Delete)
	case "n":
		return s.openInput(data.JobScrape, "Source URL to scrape")
	case "i":
		return s.openInput(data.JobImport, "Source URLs, comma separated")
	default:
		var cmd tea.Cmd
		s.table, cmd = s.table.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *JobsScreen) openInput(mode data.JobKind, placeholder string) (tea.Model, tea.Cmd) {
	if !s.ctrl.Session.CanContribute() {
		return s, toast("Only contributors can start jobs", false)
	}
	s.mode = mode
	s.input.Placeholder = placeholder
	s.input.Focus()
	return s, textinput.Blink
}

func (s *JobsScreen) switchKind() tea.Cmd {
	s.jobs = nil
	s.table.SetRows(nil)
	s.err = nil
	return s.refresh()
}

func (s *JobsScreen) selected() *data.Job {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.jobs) {
		return nil
	}
	return &s.jobs[i]
}

func jobRows(jobs []data.Job) []table.Row {
	rows := make([]table.Row, len(jobs))
	for i, j := range jobs {
		novel := j.NovelTitle
		if novel == "" {
			novel = j.NovelID
		}
		updated := ""
		if !j.UpdatedAt.IsZero() {
			updated = j.UpdatedAt.Local().Format("01-02 15:04")
		}
		rows[i] = table.Row{
			shortID(j.ID),
			novel,
			string(j.Status),
			fmt.Sprintf("%d/%d", j.Processed, j.Total),
			updated,
		}
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (s *JobsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("⚙ Jobs")

	kinds := make([]string, len(jobKinds))
	for i, k := range jobKinds {
		if i == s.kind {
			kinds[i] = styles.ActiveTabStyle.Render(string(k))
		} else {
			kinds[i] = styles.InactiveTabStyle.Render(string(k))
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Top, kinds...)

	var body string
	switch {
	case !s.ctrl.Session.LoggedIn():
		body = styles.MutedStyle.Render("Sign in from Settings to see jobs.")
	case s.loading && len(s.jobs) == 0:
		body = styles.StatusActive.Render("Loading jobs...")
	case s.err != nil && len(s.jobs) == 0:
		body = styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err))
	case len(s.jobs) == 0:
		body = styles.MutedStyle.Render("No jobs")
	default:
		body = s.table.View()
		if job := s.selected(); job != nil {
			body += "\n" + styles.StatusStyle(string(job.Status)).Render(string(job.Status)) + " " +
				components.SimpleProgress(job.Processed, job.Total, 30)
		}
	}

	var input string
	if s.input.Focused() {
		input = "\n" + styles.FocusedInputStyle.Render(s.input.View())
	}

	help := "←/→: kind • ↑/↓: select • enter: details • p: pause • u: resume • x: delete • n: new scrape • i: bulk import • r: refresh"
	if s.input.Focused() {
		help = "enter: start • esc: cancel"
	}

	return fmt.Sprintf("%s\n%s\n\n%s%s\n%s", header, selector, body, input, styles.HelpStyle.Render(help))
}

// Messages
type jobsLoadedMsg struct {
	kind data.JobKind
	jobs []data.Job
	err  error
}

type jobsRefreshMsg struct {
	kind data.JobKind
}

// Commands
func (s *JobsScreen) refresh() tea.Cmd {
	if !s.ctrl.Session.LoggedIn() {
		return nil
	}
	s.loading = true
	kind := s.kindValue()
	return func() tea.Msg {
		jobs, err := s.ctrl.Jobs.List(context.Background(), kind)
		return jobsLoadedMsg{kind: kind, jobs: jobs, err: err}
	}
}

// act fires a job control call and refreshes once the server had a chance
// to apply it.
func (s *JobsScreen) act(call func(context.Context, data.JobKind, string) error) tea.Cmd {
	job := s.selected()
	if job == nil {
		return nil
	}
	kind := s.kindValue()
	if err := call(context.Background(), kind, job.ID); err != nil {
		return reportError(err)
	}
	return tea.Tick(s.ctrl.Config.PollInterval, func(time.Time) tea.Msg {
		return jobsRefreshMsg{kind: kind}
	})
}

func (s *JobsScreen) start(mode data.JobKind, value string) tea.Cmd {
	return func() tea.Msg {
		var (
			job *data.Job
			err error
		)
		if mode == data.JobImport {
			job, err = s.ctrl.Jobs.StartImport(context.Background(), strings.Split(value, ","))
		} else {
			job, err = s.ctrl.Jobs.StartScrape(context.Background(), value, "", 0, 0)
		}
		return jobStartedMsg{source: jobsView, job: job, err: err}
	}
}
