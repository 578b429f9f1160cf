package app

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type signInForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
}

type signUpForm struct {
	email    textinput.Model
	username textinput.Model
	password textinput.Model
	repeat   textinput.Model
	focus    int
}

func newSignInForm() signInForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return signInForm{email: email, password: password}
}

func newSignUpForm() signUpForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 100
	email.Focus()

	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 60

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	repeat := textinput.New()
	repeat.Placeholder = "repeat password"
	repeat.CharLimit = 100
	repeat.EchoMode = textinput.EchoPassword

	return signUpForm{email: email, username: username, password: password, repeat: repeat}
}

func textinputBlink() tea.Cmd {
	return textinput.Blink
}

func (f *signInForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.email, &f.password}
}

func (f *signUpForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.email, &f.username, &f.password, &f.repeat}
}

func cycleFocus(inputs []*textinput.Model, focus *int, delta int) tea.Cmd {
	*focus = (*focus + delta + len(inputs)) % len(inputs)
	var cmd tea.Cmd
	for i, in := range inputs {
		if i == *focus {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

func (m Model) updateSignIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, cycleFocus(m.signIn.inputs(), &m.signIn.focus, 1)
	case "shift+tab", "up":
		return m, cycleFocus(m.signIn.inputs(), &m.signIn.focus, -1)
	case "ctrl+r":
		m.screen = screenSignUp
		m.signUp = newSignUpForm()
		m.status = "Create an account"
		return m, nil
	case "enter":
		email := strings.TrimSpace(m.signIn.email.Value())
		password := m.signIn.password.Value()
		if email == "" || password == "" {
			return m.setError(errors.New("email and password are required"))
		}
		m.status = "Signing in…"
		return m, m.signInCmd(email, password)
	}
	in := m.signIn.inputs()[m.signIn.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m Model) updateSignUp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return m, cycleFocus(m.signUp.inputs(), &m.signUp.focus, 1)
	case "shift+tab", "up":
		return m, cycleFocus(m.signUp.inputs(), &m.signUp.focus, -1)
	case "esc":
		m.screen = screenSignIn
		m.status = "Sign in to listen"
		return m, nil
	case "enter":
		email := strings.TrimSpace(m.signUp.email.Value())
		username := strings.TrimSpace(m.signUp.username.Value())
		password := m.signUp.password.Value()
		repeat := m.signUp.repeat.Value()
		if err := validateSignUp(email, username, password, repeat); err != nil {
			return m.setError(err)
		}
		m.status = "Creating account…"
		return m, m.signUpCmd(email, password, username)
	}
	in := m.signUp.inputs()[m.signUp.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

// validateSignUp checks the form before any request goes out, mirroring the
// service's own rejection rules so most mistakes are caught locally.
func validateSignUp(email, username, password, repeat string) error {
	if email == "" || username == "" || password == "" {
		return errors.New("all fields are required")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email looks invalid")
	}
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if password != repeat {
		return errors.New("passwords do not match")
	}
	return nil
}
