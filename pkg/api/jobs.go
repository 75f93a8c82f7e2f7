package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/kerbaras/novelshelf/pkg/data"
)

// jobsPath resolves the collection path for a job kind. Scrape, import and
// watchlist jobs live on the scraper or scheduler service, so the caller must
// use the client pointed at that service.
func jobsPath(kind data.JobKind) (string, error) {
	switch kind {
	case data.JobTranslate:
		return "/api/translator/jobs", nil
	case data.JobTitles:
		return "/api/title-gen/jobs", nil
	case data.JobScrape, data.JobImport, data.JobWatchlist:
		return "/jobs", nil
	default:
		return "", fmt.Errorf("unknown job kind %q", kind)
	}
}

func jobPath(kind data.JobKind, id string) (string, error) {
	base, err := jobsPath(kind)
	if err != nil {
		return "", err
	}
	return base + "/" + url.PathEscape(id), nil
}

type TranslationRequest struct {
	NovelID     string `json:"novelId"`
	FromChapter int    `json:"fromChapter,omitempty"`
	ToChapter   int    `json:"toChapter,omitempty"`
	Model       string `json:"model,omitempty"`
	UseGlossary bool   `json:"useGlossary"`
}

type TitleRequest struct {
	NovelID     string `json:"novelId"`
	FromChapter int    `json:"fromChapter,omitempty"`
	ToChapter   int    `json:"toChapter,omitempty"`
}

type ScrapeRequest struct {
	Mode        string   `json:"mode"` // "single" or "bulk"
	SourceURL   string   `json:"sourceUrl,omitempty"`
	SourceURLs  []string `json:"sourceUrls,omitempty"`
	NovelID     string   `json:"novelId,omitempty"`
	FromChapter int      `json:"fromChapter,omitempty"`
	ToChapter   int      `json:"toChapter,omitempty"`
}

func (c *Client) startJob(ctx context.Context, path string, kind data.JobKind, body any) (*data.Job, error) {
	var job data.Job
	if err := c.post(ctx, path, body, &job); err != nil {
		return nil, err
	}
	if job.Kind == "" {
		job.Kind = kind
	}
	return &job, nil
}

func (c *Client) StartTranslation(ctx context.Context, req TranslationRequest) (*data.Job, error) {
	return c.startJob(ctx, "/api/translator/jobs", data.JobTranslate, req)
}

func (c *Client) StartTitleExtraction(ctx context.Context, req TitleRequest) (*data.Job, error) {
	return c.startJob(ctx, "/api/title-gen/jobs", data.JobTitles, req)
}

// StartScrape is served by the scraper service.
func (c *Client) StartScrape(ctx context.Context, req ScrapeRequest) (*data.Job, error) {
	kind := data.JobScrape
	if req.Mode == "" {
		req.Mode = "single"
	}
	if req.Mode == "bulk" {
		kind = data.JobImport
	}
	return c.startJob(ctx, "/scrape", kind, req)
}

func (c *Client) ListJobs(ctx context.Context, kind data.JobKind) ([]data.Job, error) {
	path, err := jobsPath(kind)
	if err != nil {
		return nil, err
	}
	var resp Page[data.Job]
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) GetJob(ctx context.Context, kind data.JobKind, id string) (*data.Job, error) {
	path, err := jobPath(kind, id)
	if err != nil {
		return nil, err
	}
	var job data.Job
	if err := c.get(ctx, path, nil, &job); err != nil {
		return nil, err
	}
	if job.Kind == "" {
		job.Kind = kind
	}
	return &job, nil
}

func (c *Client) PauseJob(ctx context.Context, kind data.JobKind, id string) error {
	path, err := jobPath(kind, id)
	if err != nil {
		return err
	}
	return c.post(ctx, path+"/pause", nil, nil)
}

func (c *Client) ResumeJob(ctx context.Context, kind data.JobKind, id string) error {
	path, err := jobPath(kind, id)
	if err != nil {
		return err
	}
	return c.post(ctx, path+"/resume", nil, nil)
}

func (c *Client) DeleteJob(ctx context.Context, kind data.JobKind, id string) error {
	path, err := jobPath(kind, id)
	if err != nil {
		return err
	}
	return c.delete(ctx, path)
}
