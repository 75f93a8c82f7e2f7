package services

import (
	"context"
	"sort"
	"sync"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/data"
)

// Mock implementations for testing

type mockNovelAPI struct {
	listNovelsFunc   func(ctx context.Context, opts api.ListOptions) ([]data.Novel, error)
	getNovelFunc     func(ctx context.Context, id string) (*data.Novel, error)
	listChaptersFunc func(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error)
	getChapterFunc   func(ctx context.Context, novelID string, number int) (*data.Chapter, error)
	updateNovelFunc  func(ctx context.Context, id string, patch api.NovelPatch) (*data.Novel, error)
}

func (m *mockNovelAPI) ListNovels(ctx context.Context, opts api.ListOptions) ([]data.Novel, error) {
	if m.listNovelsFunc != nil {
		return m.listNovelsFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockNovelAPI) GetNovel(ctx context.Context, id string) (*data.Novel, error) {
	if m.getNovelFunc != nil {
		return m.getNovelFunc(ctx, id)
	}
	return &data.Novel{ID: id}, nil
}

func (m *mockNovelAPI) ListChapters(ctx context.Context, novelID string, page, limit int) ([]data.Chapter, error) {
	if m.listChaptersFunc != nil {
		return m.listChaptersFunc(ctx, novelID, page, limit)
	}
	return nil, nil
}

func (m *mockNovelAPI) GetChapter(ctx context.Context, novelID string, number int) (*data.Chapter, error) {
	if m.getChapterFunc != nil {
		return m.getChapterFunc(ctx, novelID, number)
	}
	return nil, nil
}

func (m *mockNovelAPI) UpdateNovel(ctx context.Context, id string, patch api.NovelPatch) (*data.Novel, error) {
	if m.updateNovelFunc != nil {
		return m.updateNovelFunc(ctx, id, patch)
	}
	return &data.Novel{ID: id}, nil
}

type mockCache struct {
	mu       sync.Mutex
	chapters map[string]map[int]*data.Chapter
	saveErr  error
}

func newMockCache() *mockCache {
	return &mockCache{chapters: map[string]map[int]*data.Chapter{}}
}

func (m *mockCache) SaveChapter(chapter *data.Chapter) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chapters[chapter.NovelID] == nil {
		m.chapters[chapter.NovelID] = map[int]*data.Chapter{}
	}
	c := *chapter
	m.chapters[chapter.NovelID][chapter.Number] = &c
	return nil
}

func (m *mockCache) GetChapter(novelID string, number int) (*data.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chapters[novelID][number], nil
}

func (m *mockCache) ListCachedChapters(novelID string) ([]*data.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.Chapter
	for _, c := range m.chapters[novelID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type mockJobBackend struct {
	mu    sync.Mutex
	calls []string

	listJobsFunc       func(ctx context.Context, kind data.JobKind) ([]data.Job, error)
	getJobFunc         func(ctx context.Context, kind data.JobKind, id string) (*data.Job, error)
	actionFunc         func(action string, kind data.JobKind, id string) error
	startTranslateFunc func(ctx context.Context, req api.TranslationRequest) (*data.Job, error)
	startTitlesFunc    func(ctx context.Context, req api.TitleRequest) (*data.Job, error)
	startScrapeFunc    func(ctx context.Context, req api.ScrapeRequest) (*data.Job, error)
}

func (m *mockJobBackend) record(action string, kind data.JobKind, id string) error {
	m.mu.Lock()
	m.calls = append(m.calls, action+":"+string(kind)+":"+id)
	m.mu.Unlock()
	if m.actionFunc != nil {
		return m.actionFunc(action, kind, id)
	}
	return nil
}

func (m *mockJobBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockJobBackend) ListJobs(ctx context.Context, kind data.JobKind) ([]data.Job, error) {
	if m.listJobsFunc != nil {
		return m.listJobsFunc(ctx, kind)
	}
	return nil, nil
}

func (m *mockJobBackend) GetJob(ctx context.Context, kind data.JobKind, id string) (*data.Job, error) {
	if m.getJobFunc != nil {
		return m.getJobFunc(ctx, kind, id)
	}
	return &data.Job{ID: id, Kind: kind, Status: data.JobCompleted}, nil
}

func (m *mockJobBackend) PauseJob(ctx context.Context, kind data.JobKind, id string) error {
	return m.record("pause", kind, id)
}

func (m *mockJobBackend) ResumeJob(ctx context.Context, kind data.JobKind, id string) error {
	return m.record("resume", kind, id)
}

func (m *mockJobBackend) DeleteJob(ctx context.Context, kind data.JobKind, id string) error {
	return m.record("delete", kind, id)
}

func (m *mockJobBackend) StartTranslation(ctx context.Context, req api.TranslationRequest) (*data.Job, error) {
	if m.startTranslateFunc != nil {
		return m.startTranslateFunc(ctx, req)
	}
	return &data.Job{ID: "t1", Kind: data.JobTranslate, Status: data.JobActive}, nil
}

func (m *mockJobBackend) StartTitleExtraction(ctx context.Context, req api.TitleRequest) (*data.Job, error) {
	if m.startTitlesFunc != nil {
		return m.startTitlesFunc(ctx, req)
	}
	return &data.Job{ID: "g1", Kind: data.JobTitles, Status: data.JobActive}, nil
}

func (m *mockJobBackend) StartScrape(ctx context.Context, req api.ScrapeRequest) (*data.Job, error) {
	if m.startScrapeFunc != nil {
		return m.startScrapeFunc(ctx, req)
	}
	kind := data.JobScrape
	if req.Mode == "bulk" {
		kind = data.JobImport
	}
	return &data.Job{ID: "s1", Kind: kind, Status: data.JobActive}, nil
}

type mockScheduler struct {
	entries []data.WatchlistEntry
	added   []api.WatchRequest
	removed []string
	checkFn func(ctx context.Context) (*data.Job, error)
}

func (m *mockScheduler) ListWatchlist(ctx context.Context) ([]data.WatchlistEntry, error) {
	return m.entries, nil
}

func (m *mockScheduler) AddToWatchlist(ctx context.Context, req api.WatchRequest) (*data.WatchlistEntry, error) {
	m.added = append(m.added, req)
	return &data.WatchlistEntry{ID: "w1", NovelID: req.NovelID, SourceURL: req.SourceURL, Enabled: true}, nil
}

func (m *mockScheduler) RemoveFromWatchlist(ctx context.Context, id string) error {
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockScheduler) CheckWatchlist(ctx context.Context) (*data.Job, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx)
	}
	return &data.Job{ID: "check-1", Kind: data.JobWatchlist, Status: data.JobActive}, nil
}

type mockAdminAPI struct {
	listUsersFunc func(ctx context.Context, opts api.ListOptions) ([]data.User, error)
	roles         map[string]data.Role
	terms         []data.GlossaryTerm
	deleted       []string
}

func (m *mockAdminAPI) ListUsers(ctx context.Context, opts api.ListOptions) ([]data.User, error) {
	if m.listUsersFunc != nil {
		return m.listUsersFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockAdminAPI) SetUserRole(ctx context.Context, userID string, role data.Role) (*data.User, error) {
	if m.roles == nil {
		m.roles = map[string]data.Role{}
	}
	m.roles[userID] = role
	return &data.User{ID: userID, Role: role}, nil
}

func (m *mockAdminAPI) ListGlossary(ctx context.Context, novelID string) ([]data.GlossaryTerm, error) {
	return m.terms, nil
}

func (m *mockAdminAPI) UpsertGlossaryTerm(ctx context.Context, term data.GlossaryTerm) (*data.GlossaryTerm, error) {
	term.ID = "term-1"
	m.terms = append(m.terms, term)
	return &term, nil
}

func (m *mockAdminAPI) DeleteGlossaryTerm(ctx context.Context, novelID, termID string) error {
	m.deleted = append(m.deleted, novelID+"/"+termID)
	return nil
}
