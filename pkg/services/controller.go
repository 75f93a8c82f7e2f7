package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/config"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/integrations"
	"github.com/kerbaras/novelshelf/pkg/session"
)

// Controller wires the backends, the local store and the services that the
// TUI and the CLI share.
type Controller struct {
	Config    *config.Config
	Session   *session.Manager
	Auth      *Auth
	Library   *Library
	Jobs      *Jobs
	Watchlist *Watchlist
	Admin     *Admin

	api      *api.Client
	exporter integrations.Exporter
	repo     *data.Repository
	logger   *slog.Logger
}

// backends shares one bearer token across the three services.
type backends struct {
	main      *api.Client
	scraper   *api.Client
	scheduler *api.Client
}

func (b *backends) SetToken(token string) {
	b.main.SetToken(token)
	b.scraper.SetToken(token)
	b.scheduler.SetToken(token)
}

func (b *backends) Me(ctx context.Context) (*data.User, error) {
	return b.main.Me(ctx)
}

func NewController(cfg *config.Config, logger *slog.Logger) (*Controller, error) {
	repo, err := data.OpenRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return newController(cfg, repo, logger), nil
}

func newController(cfg *config.Config, repo *data.Repository, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []api.Option{
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.RateLimit, int(cfg.RateLimit)),
		api.WithLogger(logger),
	}
	b := &backends{
		main:      api.NewClient(cfg.APIURL, opts...),
		scraper:   api.NewClient(cfg.ScraperURL, opts...),
		scheduler: api.NewClient(cfg.SchedulerURL, opts...),
	}

	sess := session.NewManager(repo, b, logger.With(slog.String("component", "session")))
	jobs := NewJobs(b.main, b.scraper, b.scheduler, cfg.PollInterval, logger.With(slog.String("component", "jobs")))
	jobs.OnError(sess.HandleError)
	library := NewLibrary(b.main, repo, cfg.PageSize, logger.With(slog.String("component", "library")))
	library.OnError(sess.HandleError)

	return &Controller{
		Config:    cfg,
		Session:   sess,
		Auth:      NewAuth(b.main, sess),
		Library:   library,
		Jobs:      jobs,
		Watchlist: NewWatchlist(b.scheduler, jobs),
		Admin:     NewAdmin(b.main, cfg.PageSize, logger.With(slog.String("component", "admin"))),
		api:       b.main,
		exporter:  integrations.NewEPubBuilder(cfg.ExportDir()).WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		repo:      repo,
		logger:    logger,
	}
}

// Discussion opens the comment thread of a novel as the current user.
func (c *Controller) Discussion(novelID string) *Discussion {
	userID := ""
	if u := c.Session.User(); u != nil {
		userID = u.ID
	}
	return NewDiscussion(c.api, novelID, userID, 0, c.logger.With(slog.String("component", "comments")))
}

// Export compiles every chapter of a novel into an EPUB and returns its path.
func (c *Controller) Export(ctx context.Context, novelID string) (string, error) {
	novel, err := c.Library.Novel(ctx, novelID)
	if err != nil {
		return "", err
	}
	chapters, err := c.Library.AllChapters(ctx, novelID)
	if err != nil {
		return "", fmt.Errorf("failed to collect chapters: %w", err)
	}
	path, err := c.exporter.CreateEPub(ctx, novel, chapters)
	if err != nil {
		return "", fmt.Errorf("failed to export: %w", err)
	}
	c.logger.Info("novel exported", slog.String("novel_id", novelID), slog.String("path", path))
	return path, nil
}

// ClearCache drops the offline copies of a novel's chapters.
func (c *Controller) ClearCache(novelID string) error {
	return c.repo.ClearChapters(novelID)
}

// Close waits for background calls and releases the local store.
func (c *Controller) Close() error {
	c.Jobs.Wait()
	c.Library.Wait()
	return c.repo.Close()
}
