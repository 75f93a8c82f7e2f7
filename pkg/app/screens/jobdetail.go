package screens

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
)

// JobDetailScreen follows one job until it reaches a terminal status or the
// screen is left.
type JobDetailScreen struct {
	ctrl     *services.Controller
	kind     data.JobKind
	id       string
	progress *components.JobProgress
	updates  <-chan data.Job
	cancel   context.CancelFunc
	done     bool
	width    int
	height   int
}

func NewJobDetailScreen(ctrl *services.Controller, kind data.JobKind, id string) *JobDetailScreen {
	return &JobDetailScreen{
		ctrl:     ctrl,
		kind:     kind,
		id:       id,
		progress: components.NewJobProgress(80),
	}
}

func (s *JobDetailScreen) Init() tea.Cmd {
	if s.updates != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	updates, err := s.ctrl.Jobs.Watch(ctx, s.kind, s.id)
	if err != nil {
		cancel()
		s.done = true
		return reportError(err)
	}
	s.cancel = cancel
	s.updates = updates
	return s.listen()
}

// Close stops polling.
func (s *JobDetailScreen) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *JobDetailScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		s.progress.SetWidth(msg.Width - 4)
		s.progress.LogLines = max(msg.Height-14, 3)

	case jobUpdateMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.progress.Update(msg.job)
		return s, s.listen()

	case jobWatchDoneMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.done = true
		if job := s.progress.Job(); job != nil && job.Status.Terminal() {
			return s, toast(fmt.Sprintf("Job %s %s", shortID(job.ID), job.Status), job.Status == data.JobCompleted)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "p":
			return s, s.act(s.ctrl.Jobs.Pause)
		case "u":
			return s, s.act(s.ctrl.Jobs.Resume)
		case "x":
			if cmd := s.act(s.ctrl.Jobs.Delete); cmd != nil {
				return s, cmd
			}
			return s, switchTo(jobsView, nil)
		case "esc", "backspace":
			return s, switchTo(jobsView, nil)
		}
	}

	return s, nil
}

func (s *JobDetailScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("⚙ Job")

	var state string
	switch {
	case s.done && s.progress.Job() != nil && s.progress.Job().Status.Terminal():
		state = styles.MutedStyle.Render("finished")
	case s.done:
		state = styles.MutedStyle.Render("stopped following")
	case s.progress.HasActive() && s.progress.Job().Status == data.JobPaused:
		state = styles.StatusPaused.Render("paused, still polling")
	default:
		state = styles.StatusActive.Render(fmt.Sprintf("polling every %s", s.ctrl.Config.PollInterval))
	}

	help := styles.HelpStyle.Render("p: pause • u: resume • x: delete • esc: back")

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", header, state, s.progress.View(), help)
}

// Messages
type jobUpdateMsg struct {
	id  string
	job data.Job
}

type jobWatchDoneMsg struct {
	id string
}

// Commands
func (s *JobDetailScreen) listen() tea.Cmd {
	updates, id := s.updates, s.id
	return func() tea.Msg {
		job, ok := <-updates
		if !ok {
			return jobWatchDoneMsg{id: id}
		}
		return jobUpdateMsg{id: id, job: job}
	}
}

// act sends a control call; the next poll shows its effect. A failure to
// dispatch is returned as an error command.
func (s *JobDetailScreen) act(call func(context.Context, data.JobKind, string) error) tea.Cmd {
	if err := call(context.Background(), s.kind, s.id); err != nil {
		return reportError(err)
	}
	return nil
}
