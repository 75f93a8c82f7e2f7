package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type SettingsScreen struct {
	ctrl   *services.Controller
	width  int
	height int
}

func NewSettingsScreen(ctrl *services.Controller) *SettingsScreen {
	return &SettingsScreen{ctrl: ctrl}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "l":
			if !s.ctrl.Session.LoggedIn() {
				return s, switchTo(loginView, nil)
			}
		case "L":
			if s.ctrl.Session.LoggedIn() {
				if err := s.ctrl.Auth.Logout(); err != nil {
					return s, reportError(err)
				}
				return s, toast("Signed out", true)
			}
		}
	}
	return s, nil
}

func (s *SettingsScreen) View() string {
	if s.width == 0 {
		return "Loading..."
	}

	header := styles.TitleStyle.Render("⚙ Settings")

	var account string
	if u := s.ctrl.Session.User(); u != nil {
		account = fmt.Sprintf("%s <%s> %s", u.Name, u.Email, styles.RoleStyle(string(u.Role)).Render(string(u.Role)))
	} else {
		account = styles.MutedStyle.Render("Not signed in")
	}
	if s.ctrl.Session.Offline() {
		account += " " + styles.OfflineBadge.Render("OFFLINE")
	}

	cfg := s.ctrl.Config
	rows := [][2]string{
		{"API", cfg.APIURL},
		{"Scraper", cfg.ScraperURL},
		{"Scheduler", cfg.SchedulerURL},
		{"Local store", cfg.DBPath},
		{"Exports", cfg.ExportDir()},
		{"Log file", cfg.LogPath()},
		{"Poll interval", cfg.PollInterval.String()},
		{"Search delay", cfg.Debounce.String()},
		{"Page size", fmt.Sprint(cfg.PageSize)},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("%-14s", r[0])))
		b.WriteString(styles.TextStyle.Render(r[1]))
		b.WriteString("\n")
	}

	about := styles.MutedStyle.Render("NovelShelf: read, discuss and manage web novels from the terminal.\nSettings come from NOVELSHELF_* environment variables or a .env file.")

	help := "l: sign in • L: sign out • tab: switch view • q: quit"

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s",
		header,
		styles.CardStyle.Render(account),
		b.String(),
		about,
		styles.HelpStyle.Render(help),
	)
}
