package data

import "time"

type NovelStatus string

const (
	NovelOngoing   NovelStatus = "ongoing"
	NovelCompleted NovelStatus = "completed"
	NovelStopped   NovelStatus = "stopped"
)

type Novel struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Author       string      `json:"author,omitempty"`
	Description  string      `json:"description,omitempty"`
	CoverURL     string      `json:"cover,omitempty"`
	Status       NovelStatus `json:"status"`
	Category     string      `json:"category,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	ChapterCount int         `json:"chapterCount"`
	SourceURL    string      `json:"sourceUrl,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt,omitempty"`
}

type Chapter struct {
	ID      string `json:"id"`
	NovelID string `json:"novelId"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"` // HTML as served by the backend
}

type Role string

const (
	RoleUser        Role = "user"
	RoleContributor Role = "contributor"
	RoleAdmin       Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleContributor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type Comment struct {
	ID         string    `json:"id"`
	NovelID    string    `json:"novelId"`
	ChapterID  string    `json:"chapterId,omitempty"`
	ParentID   string    `json:"parentId,omitempty"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Content    string    `json:"content"`
	LikedBy    []string  `json:"likes"`
	DislikedBy []string  `json:"dislikes"`
	CreatedAt  time.Time `json:"createdAt"`
}

type JobKind string

const (
	JobScrape    JobKind = "scrape"
	JobImport    JobKind = "import"
	JobTranslate JobKind = "translate"
	JobTitles    JobKind = "titles"
	JobWatchlist JobKind = "watchlist"
)

type JobStatus string

const (
	JobActive    JobStatus = "active"
	JobPaused    JobStatus = "paused"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the server will never move the job again.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

type JobLog struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// Job is a long-running server-side task. Logs are append-only on the server
// and are always replaced wholesale on the client.
type Job struct {
	ID         string    `json:"id"`
	Kind       JobKind   `json:"kind"`
	Status     JobStatus `json:"status"`
	NovelID    string    `json:"novelId,omitempty"`
	NovelTitle string    `json:"novelTitle,omitempty"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	Total      int       `json:"total"`
	Error      string    `json:"error,omitempty"`
	Logs       []JobLog  `json:"logs,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

func (j *Job) Percent() float64 {
	if j.Total <= 0 {
		return 0
	}
	p := float64(j.Processed) / float64(j.Total) * 100
	if p > 100 {
		return 100
	}
	return p
}

type GlossaryTerm struct {
	ID          string `json:"id"`
	NovelID     string `json:"novelId"`
	Term        string `json:"term"`
	Translation string `json:"translation"`
	Notes       string `json:"notes,omitempty"`
}

// WatchlistEntry is a novel the scheduler re-scrapes for new chapters.
type WatchlistEntry struct {
	ID            string    `json:"id"`
	NovelID       string    `json:"novelId"`
	Title         string    `json:"title"`
	SourceURL     string    `json:"sourceUrl"`
	LastChecked   time.Time `json:"lastChecked,omitempty"`
	LastChapter   int       `json:"lastChapter"`
	Enabled       bool      `json:"enabled"`
	CheckInterval string    `json:"interval,omitempty"`
}
