package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novelshelf/pkg/app/styles"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/kerbaras/novelshelf/pkg/validate"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
)

type LoginScreen struct {
	ctrl    *services.Controller
	fields  []textinput.Model
	focus   int
	signup  bool
	pending bool
	errs    validate.FieldErrors
	err     error
	width   int
	height  int
}

func NewLoginScreen(ctrl *services.Controller) *LoginScreen {
	newField := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 200
		ti.Width = 40
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		return ti
	}

	s := &LoginScreen{
		ctrl: ctrl,
		fields: []textinput.Model{
			fieldName:     newField("Display name", false),
			fieldEmail:    newField("Email", false),
			fieldPassword: newField("Password", true),
			fieldConfirm:  newField("Confirm password", true),
		},
		focus: fieldEmail,
	}
	s.fields[fieldEmail].Focus()
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return textinput.Blink
}

// Capturing is always true: every key belongs to a field.
func (s *LoginScreen) Capturing() bool {
	return true
}

// visible lists the fields of the current mode in tab order.
func (s *LoginScreen) visible() []int {
	if s.signup {
		return []int{fieldName, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldEmail, fieldPassword}
}

func (s *LoginScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, switchTo(libraryView, nil)
		case "tab", "down":
			return s, s.move(1)
		case "shift+tab", "up":
			return s, s.move(-1)
		case "ctrl+n":
			s.setSignup(!s.signup)
			return s, textinput.Blink
		case "enter":
			if s.pending {
				return s, nil
			}
			if s.focus != s.visible()[len(s.visible())-1] {
				return s, s.move(1)
			}
			return s, s.submit()
		}
		var cmd tea.Cmd
		s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
		return s, cmd

	case authDoneMsg:
		s.pending = false
		switch {
		case errors.Is(msg.err, services.ErrNoAccount):
			s.setSignup(true)
			s.err = nil
			return s, toast("No account with that email yet. Create one below.", false)
		case msg.err != nil:
			var fe validate.FieldErrors
			if errors.As(msg.err, &fe) {
				s.errs = fe
				return s, nil
			}
			s.err = msg.err
			return s, nil
		}
		return s, tea.Batch(
			toast(fmt.Sprintf("Welcome, %s", msg.user.Name), true),
			switchTo(libraryView, nil),
		)
	}

	return s, nil
}

func (s *LoginScreen) setSignup(on bool) {
	s.signup = on
	s.errs = nil
	s.err = nil
	s.focusField(s.visible()[0])
	if on && s.fields[fieldEmail].Value() != "" {
		s.focusField(fieldName)
	}
}

func (s *LoginScreen) move(step int) tea.Cmd {
	order := s.visible()
	pos := 0
	for i, f := range order {
		if f == s.focus {
			pos = i
		}
	}
	pos = (pos + step + len(order)) % len(order)
	s.focusField(order[pos])
	return textinput.Blink
}

func (s *LoginScreen) focusField(field int) {
	for i := range s.fields {
		s.fields[i].Blur()
	}
	s.focus = field
	s.fields[field].Focus()
}

func (s *LoginScreen) View() string {
	title := "🔑 Sign in"
	if s.signup {
		title = "✨ Create an account"
	}
	header := styles.TitleStyle.Render(title)

	labels := map[int]string{
		fieldName:     "Name",
		fieldEmail:    "Email",
		fieldPassword: "Password",
		fieldConfirm:  "Confirm",
	}
	keys := map[int]string{
		fieldName:     "name",
		fieldEmail:    "email",
		fieldPassword: "password",
		fieldConfirm:  "confirm",
	}

	var b strings.Builder
	for _, f := range s.visible() {
		style := styles.InputStyle
		if f == s.focus {
			style = styles.FocusedInputStyle
		}
		b.WriteString(styles.SubtitleStyle.Render(labels[f]))
		b.WriteString("\n")
		b.WriteString(style.Render(s.fields[f].View()))
		b.WriteString("\n")
		if msg, ok := s.errs[keys[f]]; ok {
			b.WriteString(styles.StatusError.Render(msg))
			b.WriteString("\n")
		}
	}

	var status string
	switch {
	case s.pending:
		status = styles.StatusActive.Render("Signing in...")
	case s.err != nil:
		status = styles.StatusError.Render(s.err.Error())
	}

	help := "tab: next field • enter: submit • ctrl+n: sign up • esc: cancel"
	if s.signup {
		help = "tab: next field • enter: create account • ctrl+n: sign in instead • esc: cancel"
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, b.String(), status, styles.HelpStyle.Render(help))
}

// Messages
type authDoneMsg struct {
	user *data.User
	err  error
}

// Commands
func (s *LoginScreen) submit() tea.Cmd {
	s.pending = true
	s.errs = nil
	s.err = nil

	email := s.fields[fieldEmail].Value()
	password := s.fields[fieldPassword].Value()
	if !s.signup {
		return func() tea.Msg {
			user, err := s.ctrl.Auth.Login(context.Background(), email, password)
			return authDoneMsg{user: user, err: err}
		}
	}

	form := validate.SignupForm{
		Name:     s.fields[fieldName].Value(),
		Email:    email,
		Password: password,
		Confirm:  s.fields[fieldConfirm].Value(),
	}
	return func() tea.Msg {
		user, err := s.ctrl.Auth.Signup(context.Background(), form)
		return authDoneMsg{user: user, err: err}
	}
}
