package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
	"github.com/kerbaras/novelshelf/pkg/listing"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentChapters bounds chapter fetches during export.
const maxConcurrentChapters = 3

// NovelAPI is the slice of the backend the library reads from.
type NovelAPI interface {
	ListNovels(ctx context.Context, opts api.ListOptions) ([]data.Novel, error)
	GetNovel(ctx context.Context, id string) (*data.Novel, error)
	ListChapters(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error)
	GetChapter(ctx context.Context, novelID string, number int) (*data.Chapter, error)
	UpdateNovel(ctx context.Context, id string, patch api.NovelPatch) (*data.Novel, error)
}

// ChapterCache is the offline reading cache.
type ChapterCache interface {
	SaveChapter(chapter *data.Chapter) error
	GetChapter(novelID string, number int) (*data.Chapter, error)
	ListCachedChapters(novelID string) ([]*data.Chapter, error)
}

// HomeSections are the three lists shown on the landing screen.
type HomeSections struct {
	Latest    []data.Novel
	Popular   []data.Novel
	Completed []data.Novel
}

type Library struct {
	api      NovelAPI
	cache    ChapterCache
	pageSize int
	logger   *slog.Logger
	onError  func(error) bool
	pending  sync.WaitGroup
}

func NewLibrary(api NovelAPI, cache ChapterCache, pageSize int, logger *slog.Logger) *Library {
	if pageSize <= 0 {
		pageSize = listing.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{api: api, cache: cache, pageSize: pageSize, logger: logger}
}

// OnError registers a hook for errors from background calls.
func (l *Library) OnError(fn func(error) bool) {
	l.onError = fn
}

// Home fetches the landing sections concurrently. Nothing is returned until
// all three have resolved.
func (l *Library) Home(ctx context.Context) (*HomeSections, error) {
	var home HomeSections
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		novels, err := l.api.ListNovels(ctx, api.ListOptions{Page: 1, Limit: l.pageSize, Sort: "latest"})
		if err != nil {
			return fmt.Errorf("latest: %w", err)
		}
		home.Latest = novels
		return nil
	})
	g.Go(func() error {
		novels, err := l.api.ListNovels(ctx, api.ListOptions{Page: 1, Limit: l.pageSize, Sort: "popular"})
		if err != nil {
			return fmt.Errorf("popular: %w", err)
		}
		home.Popular = novels
		return nil
	})
	g.Go(func() error {
		novels, err := l.api.ListNovels(ctx, api.ListOptions{Page: 1, Limit: l.pageSize, Status: string(data.NovelCompleted)})
		if err != nil {
			return fmt.Errorf("completed: %w", err)
		}
		home.Completed = novels
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &home, nil
}

// Browse returns a pager over the novel catalogue.
func (l *Library) Browse() *listing.Pager[data.Novel] {
	return listing.NewPager(func(ctx context.Context, q listing.Query) ([]data.Novel, error) {
		return l.api.ListNovels(ctx, listOptions(q))
	}, l.pageSize, l.logger.With(slog.String("pager", "novels")))
}

func listOptions(q listing.Query) api.ListOptions {
	return api.ListOptions{
		Page:     q.Page,
		Limit:    q.Limit,
		Search:   q.Search,
		Status:   q.Status,
		Category: q.Category,
		Sort:     q.Sort,
	}
}

func (l *Library) Novel(ctx context.Context, id string) (*data.Novel, error) {
	novel, err := l.api.GetNovel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get novel: %w", err)
	}
	return novel, nil
}

// Chapters lists one page of a novel's chapters. When the backend is
// unreachable the same page of the cached chapters is returned instead and
// cached is true. Pages past the end of the cache are empty.
func (l *Library) Chapters(ctx context.Context, novelID string, page int) (chapters []data.Chapter, cached bool, err error) {
	chapters, err = l.api.ListChapters(ctx, novelID, page, l.pageSize)
	if err == nil {
		return chapters, false, nil
	}
	if !api.IsNetwork(err) || l.cache == nil {
		return nil, false, fmt.Errorf("failed to list chapters: %w", err)
	}

	stored, cerr := l.cache.ListCachedChapters(novelID)
	if cerr != nil || len(stored) == 0 {
		return nil, false, fmt.Errorf("failed to list chapters: %w", err)
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * l.pageSize
	end := min(start+l.pageSize, len(stored))
	chapters = []data.Chapter{}
	for i := start; i < end; i++ {
		chapters = append(chapters, *stored[i])
	}
	return chapters, true, nil
}

// Chapter reads a chapter, caching it for offline use. When the backend is
// unreachable the cached copy is served and cached is true.
func (l *Library) Chapter(ctx context.Context, novelID string, number int) (chapter *data.Chapter, cached bool, err error) {
	chapter, err = l.api.GetChapter(ctx, novelID, number)
	if err == nil {
		if l.cache != nil {
			if serr := l.cache.SaveChapter(chapter); serr != nil {
				l.logger.Warn("failed to cache chapter",
					slog.String("novel_id", novelID),
					slog.Int("number", number),
					slog.String("error", serr.Error()))
			}
		}
		return chapter, false, nil
	}
	if !api.IsNetwork(err) || l.cache == nil {
		return nil, false, fmt.Errorf("failed to get chapter %d: %w", number, err)
	}

	stored, cerr := l.cache.GetChapter(novelID, number)
	if cerr != nil || stored == nil {
		return nil, false, fmt.Errorf("failed to get chapter %d: %w", number, err)
	}
	return stored, true, nil
}

// AllChapters fetches every chapter of a novel with its content, in order.
func (l *Library) AllChapters(ctx context.Context, novelID string) ([]*data.Chapter, error) {
	var index []data.Chapter
	for page := 1; ; page++ {
		chapters, _, err := l.Chapters(ctx, novelID, page)
		if err != nil {
			return nil, err
		}
		index = append(index, chapters...)
		if len(chapters) < l.pageSize {
			break
		}
	}

	out := make([]*data.Chapter, len(index))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChapters)
	for i, entry := range index {
		g.Go(func() error {
			if entry.Content != "" {
				c := entry
				out[i] = &c
				return nil
			}
			chapter, _, err := l.Chapter(gctx, novelID, entry.Number)
			if err != nil {
				return err
			}
			out[i] = chapter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// EditNovel applies patch to a local copy and returns it straight away. The
// update is sent in the background; a failure is logged and the copy kept.
func (l *Library) EditNovel(ctx context.Context, novel *data.Novel, patch api.NovelPatch) *data.Novel {
	updated := *novel
	applyPatch(&updated, patch)

	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		if _, err := l.api.UpdateNovel(context.WithoutCancel(ctx), novel.ID, patch); err != nil {
			l.logger.Error("novel update failed",
				slog.String("novel_id", novel.ID),
				slog.String("error", err.Error()))
			if l.onError != nil {
				l.onError(err)
			}
		}
	}()
	return &updated
}

// Wait blocks until background updates have finished.
func (l *Library) Wait() {
	l.pending.Wait()
}

func applyPatch(n *data.Novel, p api.NovelPatch) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
	if p.Category != nil {
		n.Category = *p.Category
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), p.Tags...)
	}
}
