package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/listing"
)

type AdminAPI interface {
	ListUsers(ctx context.Context, opts api.ListOptions) ([]data.User, error)
	SetUserRole(ctx context.Context, userID string, role data.Role) (*data.User, error)
	ListGlossary(ctx context.Context, novelID string) ([]data.GlossaryTerm, error)
	UpsertGlossaryTerm(ctx context.Context, term data.GlossaryTerm) (*data.GlossaryTerm, error)
	DeleteGlossaryTerm(ctx context.Context, novelID, termID string) error
}

type Admin struct {
	api      AdminAPI
	pageSize int
	logger   *slog.Logger
}

func NewAdmin(api AdminAPI, pageSize int, logger *slog.Logger) *Admin {
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{api: api, pageSize: pageSize, logger: logger}
}

// Users returns a searchable pager over accounts.
func (a *Admin) Users() *listing.Pager[data.User] {
	return listing.NewPager(func(ctx context.Context, q listing.Query) ([]data.User, error) {
		return a.api.ListUsers(ctx, listOptions(q))
	}, a.pageSize, a.logger.With(slog.String("pager", "users")))
}

func (a *Admin) SetRole(ctx context.Context, userID string, role data.Role) (*data.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	user, err := a.api.SetUserRole(ctx, userID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to change role: %w", err)
	}
	a.logger.Info("role changed", slog.String("user_id", userID), slog.String("role", string(role)))
	return user, nil
}

func (a *Admin) Glossary(ctx context.Context, novelID string) ([]data.GlossaryTerm, error) {
	terms, err := a.api.ListGlossary(ctx, novelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list glossary: %w", err)
	}
	return terms, nil
}

func (a *Admin) UpsertTerm(ctx context.Context, term data.GlossaryTerm) (*data.GlossaryTerm, error) {
	term.Term = strings.TrimSpace(term.Term)
	term.Translation = strings.TrimSpace(term.Translation)
	if term.NovelID == "" {
		return nil, fmt.Errorf("novel is required")
	}
	if term.Term == "" || term.Translation == "" {
		return nil, fmt.Errorf("term and translation are required")
	}
	saved, err := a.api.UpsertGlossaryTerm(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to save term: %w", err)
	}
	return saved, nil
}

func (a *Admin) DeleteTerm(ctx context.Context, novelID, termID string) error {
	if err := a.api.DeleteGlossaryTerm(ctx, novelID, termID); err != nil {
		return fmt.Errorf("failed to delete term: %w", err)
	}
	return nil
}
