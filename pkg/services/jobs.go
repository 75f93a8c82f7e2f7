package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/poll"
)

// JobBackend is a service that owns jobs of some kinds.
type JobBackend interface {
	ListJobs(ctx context.Context, kind data.JobKind) ([]data.Job, error)
	GetJob(ctx context.Context, kind data.JobKind, id string) (*data.Job, error)
	PauseJob(ctx context.Context, kind data.JobKind, id string) error
	ResumeJob(ctx context.Context, kind data.JobKind, id string) error
	DeleteJob(ctx context.Context, kind data.JobKind, id string) error
}

// Translator runs translation and title extraction jobs on the main backend.
type Translator interface {
	JobBackend
	StartTranslation(ctx context.Context, req api.TranslationRequest) (*data.Job, error)
	StartTitleExtraction(ctx context.Context, req api.TitleRequest) (*data.Job, error)
}

// Scraper runs scrape and bulk import jobs.
type Scraper interface {
	JobBackend
	StartScrape(ctx context.Context, req api.ScrapeRequest) (*data.Job, error)
}

// Jobs starts, monitors and controls server-side jobs.
type Jobs struct {
	translator Translator
	scraper    Scraper
	scheduler  JobBackend
	interval   time.Duration
	logger     *slog.Logger
	onError    func(error) bool
	pending    sync.WaitGroup
}

func NewJobs(translator Translator, scraper Scraper, scheduler JobBackend, interval time.Duration, logger *slog.Logger) *Jobs {
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Jobs{
		translator: translator,
		scraper:    scraper,
		scheduler:  scheduler,
		interval:   interval,
		logger:     logger,
	}
}

// OnError registers a hook for errors raised by polling and background calls.
func (j *Jobs) OnError(fn func(error) bool) {
	j.onError = fn
}

func (j *Jobs) backend(kind data.JobKind) (JobBackend, error) {
	switch kind {
	case data.JobTranslate, data.JobTitles:
		return j.translator, nil
	case data.JobScrape, data.JobImport:
		return j.scraper, nil
	case data.JobWatchlist:
		return j.scheduler, nil
	default:
		return nil, fmt.Errorf("unknown job kind %q", kind)
	}
}

func checkRange(from, to int) error {
	if from < 0 || to < 0 {
		return fmt.Errorf("chapter numbers must be positive")
	}
	if from > 0 && to > 0 && from > to {
		return fmt.Errorf("invalid chapter range %d-%d", from, to)
	}
	return nil
}

func (j *Jobs) StartTranslation(ctx context.Context, req api.TranslationRequest) (*data.Job, error) {
	if req.NovelID == "" {
		return nil, fmt.Errorf("novel is required")
	}
	if err := checkRange(req.FromChapter, req.ToChapter); err != nil {
		return nil, err
	}
	job, err := j.translator.StartTranslation(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start translation: %w", err)
	}
	j.logger.Info("translation started", slog.String("job_id", job.ID), slog.String("novel_id", req.NovelID))
	return job, nil
}

func (j *Jobs) StartTitleExtraction(ctx context.Context, req api.TitleRequest) (*data.Job, error) {
	if req.NovelID == "" {
		return nil, fmt.Errorf("novel is required")
	}
	if err := checkRange(req.FromChapter, req.ToChapter); err != nil {
		return nil, err
	}
	job, err := j.translator.StartTitleExtraction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start title extraction: %w", err)
	}
	j.logger.Info("title extraction started", slog.String("job_id", job.ID), slog.String("novel_id", req.NovelID))
	return job, nil
}

// StartScrape scrapes one source. A novelID re-scrapes into an existing novel.
func (j *Jobs) StartScrape(ctx context.Context, sourceURL, novelID string, from, to int) (*data.Job, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	job, err := j.scraper.StartScrape(ctx, api.ScrapeRequest{
		Mode:        "single",
		SourceURL:   sourceURL,
		NovelID:     novelID,
		FromChapter: from,
		ToChapter:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start scrape: %w", err)
	}
	j.logger.Info("scrape started", slog.String("job_id", job.ID), slog.String("source", sourceURL))
	return job, nil
}

// StartImport scrapes many sources as one bulk import job. Blank and
// duplicate URLs are dropped.
func (j *Jobs) StartImport(ctx context.Context, sourceURLs []string) (*data.Job, error) {
	seen := make(map[string]bool, len(sourceURLs))
	var urls []string
	for _, u := range sourceURLs {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one source URL is required")
	}

	job, err := j.scraper.StartScrape(ctx, api.ScrapeRequest{Mode: "bulk", SourceURLs: urls})
	if err != nil {
		return nil, fmt.Errorf("failed to start import: %w", err)
	}
	j.logger.Info("import started", slog.String("job_id", job.ID), slog.Int("sources", len(urls)))
	return job, nil
}

func (j *Jobs) List(ctx context.Context, kind data.JobKind) ([]data.Job, error) {
	b, err := j.backend(kind)
	if err != nil {
		return nil, err
	}
	jobs, err := b.ListJobs(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s jobs: %w", kind, err)
	}
	return jobs, nil
}

// Status fetches a job once.
func (j *Jobs) Status(ctx context.Context, kind data.JobKind, id string) (*data.Job, error) {
	b, err := j.backend(kind)
	if err != nil {
		return nil, err
	}
	return b.GetJob(ctx, kind, id)
}

// Poller builds a status poller for one job. Fetch errors are reported to
// the error hook and otherwise ignored.
func (j *Jobs) Poller(kind data.JobKind, id string) (*poll.Poller[data.Job], error) {
	b, err := j.backend(kind)
	if err != nil {
		return nil, err
	}
	fetch := func(ctx context.Context) (data.Job, error) {
		job, err := b.GetJob(ctx, kind, id)
		if err != nil {
			loggedOut := false
			if j.onError != nil && ctx.Err() == nil {
				loggedOut = j.onError(err)
			}
			// Without a session every later request fails the same way.
			if loggedOut || api.IsUnauthorized(err) {
				return data.Job{}, fmt.Errorf("%w: %w", poll.ErrStop, err)
			}
			return data.Job{}, err
		}
		return *job, nil
	}
	terminal := func(job data.Job) bool { return job.Status.Terminal() }

	p := poll.New(fetch, terminal, poll.Config{
		Interval: j.interval,
		Logger:   j.logger.With(slog.String("job_id", id)),
		Name:     string(kind),
	})
	p.OnTerminal(func(job data.Job) {
		j.logger.Info("job finished",
			slog.String("job_id", job.ID),
			slog.String("kind", string(kind)),
			slog.String("status", string(job.Status)))
	})
	return p, nil
}

// Watch streams job updates until the job is terminal, the session is lost,
// or ctx is cancelled.
func (j *Jobs) Watch(ctx context.Context, kind data.JobKind, id string) (<-chan data.Job, error) {
	p, err := j.Poller(kind, id)
	if err != nil {
		return nil, err
	}
	return p.Watch(ctx), nil
}

// Follow polls in the foreground and returns the terminal job.
func (j *Jobs) Follow(ctx context.Context, kind data.JobKind, id string, onUpdate func(data.Job)) (data.Job, error) {
	p, err := j.Poller(kind, id)
	if err != nil {
		return data.Job{}, err
	}
	return p.Run(ctx, onUpdate)
}

// Pause, Resume and Delete do not wait for the server; the next poll shows
// the outcome.
func (j *Jobs) Pause(ctx context.Context, kind data.JobKind, id string) error {
	return j.fire(ctx, "pause", kind, id, func(b JobBackend, ctx context.Context) error {
		return b.PauseJob(ctx, kind, id)
	})
}

func (j *Jobs) Resume(ctx context.Context, kind data.JobKind, id string) error {
	return j.fire(ctx, "resume", kind, id, func(b JobBackend, ctx context.Context) error {
		return b.ResumeJob(ctx, kind, id)
	})
}

func (j *Jobs) Delete(ctx context.Context, kind data.JobKind, id string) error {
	return j.fire(ctx, "delete", kind, id, func(b JobBackend, ctx context.Context) error {
		return b.DeleteJob(ctx, kind, id)
	})
}

func (j *Jobs) fire(ctx context.Context, action string, kind data.JobKind, id string, call func(JobBackend, context.Context) error) error {
	b, err := j.backend(kind)
	if err != nil {
		return err
	}
	j.pending.Add(1)
	go func() {
		defer j.pending.Done()
		if err := call(b, context.WithoutCancel(ctx)); err != nil {
			j.logger.Error("job action failed",
				slog.String("action", action),
				slog.String("job_id", id),
				slog.String("error", err.Error()))
			if j.onError != nil {
				j.onError(err)
			}
			return
		}
		j.logger.Info("job action sent", slog.String("action", action), slog.String("job_id", id))
	}()
	return nil
}

// Wait blocks until fired actions have completed.
func (j *Jobs) Wait() {
	j.pending.Wait()
}
