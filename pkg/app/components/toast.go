package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
)

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

const DefaultToastTTL = 4 * time.Second

// ToastExpiredMsg clears the toast it was scheduled for.
type ToastExpiredMsg struct{ id int }

// Toaster shows one transient message at a time.
type Toaster struct {
	message string
	level   ToastLevel
	id      int
	ttl     time.Duration
}

func NewToaster(ttl time.Duration) *Toaster {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	return &Toaster{ttl: ttl}
}

// Show replaces the current toast and schedules its expiry.
func (t *Toaster) Show(message string, level ToastLevel) tea.Cmd {
	t.id++
	t.message = message
	t.level = level
	id := t.id
	return tea.Tick(t.ttl, func(time.Time) tea.Msg {
		return ToastExpiredMsg{id: id}
	})
}

func (t *Toaster) Update(msg tea.Msg) {
	if m, ok := msg.(ToastExpiredMsg); ok && m.id == t.id {
		t.message = ""
	}
}

func (t *Toaster) Message() string {
	return t.message
}

func (t *Toaster) View() string {
	if t.message == "" {
		return ""
	}
	switch t.level {
	case ToastError:
		return styles.ToastErrorStyle.Render(t.message)
	case ToastSuccess:
		return styles.ToastSuccessStyle.Render(t.message)
	default:
		return styles.ToastStyle.Render(t.message)
	}
}
