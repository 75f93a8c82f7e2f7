package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/app/components"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
)

var novelStatusCycle = []string{string(data.NovelOngoing), string(data.NovelCompleted), string(data.NovelStopped)}

type DetailsScreen struct {
	ctrl            *services.Controller
	novelID         string
	novel           *data.Novel
	chapters        []data.Chapter
	page            int
	cached          bool
	selectedChapter int
	busy            string
	width           int
	height          int
	err             error
}

func NewDetailsScreen(ctrl *services.Controller, novelID string) *DetailsScreen {
	return &DetailsScreen{
		ctrl:    ctrl,
		novelID: novelID,
		page:    1,
	}
}

func (s *DetailsScreen) Init() tea.Cmd {
	if s.novel != nil {
		return nil
	}
	return tea.Batch(s.loadNovel, s.loadChapters(s.page))
}

func (s *DetailsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		return s.handleKey(msg)

	case novelLoadedMsg:
		if msg.novelID != s.novelID {
			return s, nil
		}
		s.err = msg.err
		if msg.err == nil {
			s.novel = msg.novel
		}
		return s, reportError(msg.err)

	case chaptersLoadedMsg:
		if msg.novelID != s.novelID {
			return s, nil
		}
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		s.chapters = msg.chapters
		s.page = msg.page
		s.cached = msg.cached
		s.selectedChapter = 0

	case exportDoneMsg:
		if msg.novelID != s.novelID {
			return s, nil
		}
		s.busy = ""
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, toast("Exported to "+msg.path, true)

	case jobStartedMsg:
		if msg.source != detailsView {
			return s, nil
		}
		s.busy = ""
		if msg.err != nil {
			return s, reportError(msg.err)
		}
		return s, switchTo(jobDetailView, jobTarget{Kind: msg.job.Kind, ID: msg.job.ID})
	}

	return s, nil
}

func (s *DetailsScreen) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if s.selectedChapter > 0 {
			s.selectedChapter--
		}
	case "down", "j":
		if s.selectedChapter < len(s.chapters)-1 {
			s.selectedChapter++
		}
	case "n", "right":
		if len(s.chapters) >= s.ctrl.Config.PageSize {
			return s, s.loadChapters(s.page + 1)
		}
	case "p", "left":
		if s.page > 1 {
			return s, s.loadChapters(s.page - 1)
		}
	case "enter":
		if s.novel != nil && s.selectedChapter < len(s.chapters) {
			return s, switchTo(readerView, readerTarget{Novel: s.novel, Number: s.chapters[s.selectedChapter].Number})
		}
	case "c":
		if s.novel != nil {
			return s, switchTo(commentsView, readerTarget{Novel: s.novel})
		}
	case "r":
		return s, tea.Batch(s.loadNovel, s.loadChapters(s.page))
	case "x":
		if s.busy == "" {
			s.busy = "Exporting EPUB..."
			return s, s.export()
		}
	case "D":
		if err := s.ctrl.ClearCache(s.novelID); err != nil {
			return s, reportError(err)
		}
		return s, toast("Offline copies removed", true)
	case "t":
		if s.ctrl.Session.CanContribute() && s.busy == "" {
			s.busy = "Starting translation..."
			return s, s.startJob(func(ctx context.Context) (*data.Job, error) {
				return s.ctrl.Jobs.StartTranslation(ctx, api.TranslationRequest{NovelID: s.novelID, UseGlossary: true})
			})
		}
	case "g":
		if s.ctrl.Session.CanContribute() && s.busy == "" {
			s.busy = "Starting title extraction..."
			return s, s.startJob(func(ctx context.Context) (*data.Job, error) {
				return s.ctrl.Jobs.StartTitleExtraction(ctx, api.TitleRequest{NovelID: s.novelID})
			})
		}
	case "S":
		if s.ctrl.Session.CanContribute() && s.novel != nil && s.novel.SourceURL != "" && s.busy == "" {
			s.busy = "Starting scrape..."
			source := s.novel.SourceURL
			return s, s.startJob(func(ctx context.Context) (*data.Job, error) {
				return s.ctrl.Jobs.StartScrape(ctx, source, s.novelID, 0, 0)
			})
		}
	case "w":
		if s.ctrl.Session.IsAdmin() && s.novel != nil && s.novel.SourceURL != "" {
			return s, s.watch()
		}
	case "m":
		if s.ctrl.Session.IsAdmin() && s.novel != nil {
			status := data.NovelStatus(next(novelStatusCycle, string(s.novel.Status)))
			s.novel = s.ctrl.Library.EditNovel(context.Background(), s.novel, api.NovelPatch{Status: &status})
		}
	case "esc", "backspace":
		return s, switchTo(libraryView, nil)
	}
	return s, nil
}

func (s *DetailsScreen) View() string {
	if s.width == 0 || s.novel == nil {
		if s.err != nil {
			return styles.StatusError.Render(fmt.Sprintf("Error: %s", s.err)) + "\n" + styles.HelpStyle.Render("r: retry • esc: back")
		}
		return "Loading..."
	}

	header := styles.TitleStyle.Render(fmt.Sprintf("📖 %s", s.novel.Title))

	var busy string
	if s.busy != "" {
		busy = styles.StatusActive.Render(s.busy) + "\n\n"
	}

	help := "↑/k ↓/j: navigate • enter: read • n/p: page • c: comments • x: export EPUB • D: clear offline copies • r: refresh • esc: back"
	if s.ctrl.Session.CanContribute() {
		help += "\nt: translate • g: extract titles • S: re-scrape"
	}
	if s.ctrl.Session.IsAdmin() {
		help += " • w: watch source • m: cycle status"
	}

	return fmt.Sprintf("%s\n\n%s%s\n%s\n%s",
		header,
		busy,
		s.renderNovelInfo(),
		s.renderChaptersList(),
		styles.HelpStyle.Render(help),
	)
}

func (s *DetailsScreen) renderNovelInfo() string {
	status := styles.StatusStyle(string(s.novel.Status)).Render(string(s.novel.Status))

	meta := []string{status, styles.MutedStyle.Render(fmt.Sprintf("%d chapters", s.novel.ChapterCount))}
	if s.novel.Author != "" {
		meta = append(meta, styles.MutedStyle.Render("by "+s.novel.Author))
	}
	if s.novel.Category != "" {
		meta = append(meta, styles.MutedStyle.Render(s.novel.Category))
	}

	lines := []string{
		styles.TextStyle.Render(components.Truncate(s.novel.Description, 300)),
		"",
		strings.Join(meta, styles.MutedStyle.Render(" • ")),
	}
	if len(s.novel.Tags) > 0 {
		lines = append(lines, styles.MutedStyle.Render("Tags: "+strings.Join(s.novel.Tags, ", ")))
	}
	if s.novel.SourceURL != "" {
		lines = append(lines, styles.MutedStyle.Render("Source: "+s.novel.SourceURL))
	}

	return styles.CardStyle.Width(s.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *DetailsScreen) renderChaptersList() string {
	if len(s.chapters) == 0 {
		return styles.MutedStyle.Render("No chapters available")
	}

	var b strings.Builder
	title := fmt.Sprintf("Chapters (page %d):", s.page)
	if s.cached {
		title += " " + styles.OfflineBadge.Render("offline copies")
	}
	b.WriteString(styles.SubtitleStyle.Render(title))
	b.WriteString("\n\n")

	start := 0
	end := len(s.chapters)
	window := s.height - 16
	if window < 5 {
		window = 5
	}
	if end > window {
		start = s.selectedChapter - window/2
		if start < 0 {
			start = 0
		}
		end = start + window
		if end > len(s.chapters) {
			end = len(s.chapters)
			start = end - window
		}
	}

	for i := start; i < end; i++ {
		line := components.Truncate(chapterLabel(s.chapters[i]), s.width-8)
		if i == s.selectedChapter {
			b.WriteString(styles.CursorStyle.Render("› " + line))
		} else {
			b.WriteString(styles.TextStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func chapterLabel(c data.Chapter) string {
	label := fmt.Sprintf("Ch. %d", c.Number)
	if c.Title != "" {
		label = fmt.Sprintf("%s: %s", label, c.Title)
	}
	return label
}

// Messages
type novelLoadedMsg struct {
	novelID string
	novel   *data.Novel
	err     error
}

type chaptersLoadedMsg struct {
	novelID  string
	page     int
	chapters []data.Chapter
	cached   bool
	err      error
}

type exportDoneMsg struct {
	novelID string
	path    string
	err     error
}

type jobStartedMsg struct {
	source screenType
	job    *data.Job
	err    error
}

// Commands
func (s *DetailsScreen) loadNovel() tea.Msg {
	novel, err := s.ctrl.Library.Novel(context.Background(), s.novelID)
	return novelLoadedMsg{novelID: s.novelID, novel: novel, err: err}
}

func (s *DetailsScreen) loadChapters(page int) tea.Cmd {
	novelID := s.novelID
	return func() tea.Msg {
		chapters, cached, err := s.ctrl.Library.Chapters(context.Background(), novelID, page)
		return chaptersLoadedMsg{novelID: novelID, page: page, chapters: chapters, cached: cached, err: err}
	}
}

func (s *DetailsScreen) export() tea.Cmd {
	novelID := s.novelID
	return func() tea.Msg {
		path, err := s.ctrl.Export(context.Background(), novelID)
		return exportDoneMsg{novelID: novelID, path: path, err: err}
	}
}

func (s *DetailsScreen) startJob(start func(ctx context.Context) (*data.Job, error)) tea.Cmd {
	return func() tea.Msg {
		job, err := start(context.Background())
		return jobStartedMsg{source: detailsView, job: job, err: err}
	}
}

func (s *DetailsScreen) watch() tea.Cmd {
	novelID, source := s.novelID, s.novel.SourceURL
	return func() tea.Msg {
		if _, err := s.ctrl.Watchlist.Add(context.Background(), novelID, source, ""); err != nil {
			return ErrorMsg{Err: err}
		}
		return ToastMsg{Text: "Added to watchlist", Success: true}
	}
}
