package api

import (
	"context"
	"fmt"

	"github.com/kerbaras/novelshelf/pkg/data"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  *data.User `json:"user,omitempty"`
}

// Login exchanges credentials for a token. A 404 means no such account.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp tokenResponse
	if err := c.post(ctx, "/auth/login", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response did not contain a token")
	}
	return resp.Token, nil
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (string, error) {
	var resp tokenResponse
	if err := c.post(ctx, "/auth/signup", req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("signup response did not contain a token")
	}
	return resp.Token, nil
}

// Me fetches the profile for the current token.
func (c *Client) Me(ctx context.Context) (*data.User, error) {
	var user data.User
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
