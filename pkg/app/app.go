package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/screens"
	"github.com/kerbaras/novelshelf/pkg/services"
)

type App struct {
	ctrl *services.Controller
}

func NewApp(ctrl *services.Controller) *App {
	return &App{ctrl: ctrl}
}

func (a *App) Run() error {
	model := screens.NewRootScreen(a.ctrl)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
