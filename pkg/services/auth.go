package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/session"
	"github.com/kerbaras/novelshelf/pkg/validate"
)

// ErrNoAccount means the login email is unknown and the user should sign up.
var ErrNoAccount = errors.New("no account with that email")

type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (string, error)
	Signup(ctx context.Context, req api.SignupRequest) (string, error)
}

type Auth struct {
	api     AuthAPI
	session *session.Manager
}

func NewAuth(api AuthAPI, session *session.Manager) *Auth {
	return &Auth{api: api, session: session}
}

func (a *Auth) Login(ctx context.Context, email, password string) (*data.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Login(email, password); err != nil {
		return nil, err
	}
	token, err := a.api.Login(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		if api.IsNotFound(err) {
			return nil, ErrNoAccount
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return a.session.Login(ctx, token)
}

func (a *Auth) Signup(ctx context.Context, form validate.SignupForm) (*data.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := validate.Signup(form); err != nil {
		return nil, err
	}
	token, err := a.api.Signup(ctx, api.SignupRequest{Name: form.Name, Email: form.Email, Password: form.Password})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return a.session.Login(ctx, token)
}

func (a *Auth) Logout() error {
	return a.session.Logout()
}
