package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kerbaras/novelshelf/pkg/data"
)

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) ([]data.User, error) {
	var resp Page[data.User]
	if err := c.get(ctx, "/api/admin/users", opts.params(), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) SetUserRole(ctx context.Context, userID string, role data.Role) (*data.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	var user data.User
	body := map[string]data.Role{"role": role}
	if err := c.patch(ctx, "/api/admin/users/"+url.PathEscape(userID), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func glossaryPath(novelID string) string {
	return fmt.Sprintf("/api/admin/novels/%s/glossary", url.PathEscape(novelID))
}

func (c *Client) ListGlossary(ctx context.Context, novelID string) ([]data.GlossaryTerm, error) {
	var resp Page[data.GlossaryTerm]
	if err := c.get(ctx, glossaryPath(novelID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UpsertGlossaryTerm creates the term or updates the one with the same spelling.
func (c *Client) UpsertGlossaryTerm(ctx context.Context, term data.GlossaryTerm) (*data.GlossaryTerm, error) {
	var saved data.GlossaryTerm
	if err := c.post(ctx, glossaryPath(term.NovelID), term, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteGlossaryTerm(ctx context.Context, novelID, termID string) error {
	return c.delete(ctx, glossaryPath(novelID)+"/"+url.PathEscape(termID))
}
