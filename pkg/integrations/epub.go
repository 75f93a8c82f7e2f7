package integrations

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-shiori/go-epub"
	"github.com/kerbaras/novelshelf/pkg/content"
	"github.com/kerbaras/novelshelf/pkg/data"
)

type EPubBuilder struct {
	outputDir string
	client    *http.Client
	cover     CoverSettings
	logger    *slog.Logger
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	return &EPubBuilder{
		outputDir: outputDir,
		client:    &http.Client{Timeout: 30 * time.Second},
		cover:     DefaultCoverSettings,
		logger:    slog.Default(),
	}
}

func (b *EPubBuilder) WithCoverSettings(s CoverSettings) *EPubBuilder {
	b.cover = s
	return b
}

func (b *EPubBuilder) WithHTTPClient(c *http.Client) *EPubBuilder {
	b.client = c
	return b
}

// CreateEPub compiles the given chapters of a novel into a single EPUB file and
// returns its path. Chapters without content are skipped.
func (b *EPubBuilder) CreateEPub(ctx context.Context, novel *data.Novel, chapters []*data.Chapter) (string, error) {
	if novel == nil {
		return "", fmt.Errorf("novel cannot be nil")
	}
	if len(chapters) == 0 {
		return "", fmt.Errorf("no chapters to compile")
	}

	if err := os.MkdirAll(b.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	sorted := make([]*data.Chapter, len(chapters))
	copy(sorted, chapters)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Number < sorted[j].Number
	})

	e, err := epub.NewEpub(novel.Title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}

	author := novel.Author
	if author == "" {
		author = "Unknown"
	}
	e.SetAuthor(author)
	if novel.Description != "" {
		e.SetDescription(novel.Description)
	}
	e.SetLang("en")

	if novel.CoverURL != "" {
		if err := b.addCover(ctx, e, novel); err != nil {
			// A missing cover does not fail the export.
			b.logger.Warn("skipping cover", slog.String("novel_id", novel.ID), slog.String("error", err.Error()))
		}
	}

	added := 0
	for _, chapter := range sorted {
		if strings.TrimSpace(chapter.Content) == "" {
			continue
		}
		title := ChapterTitle(chapter)
		body := fmt.Sprintf("<h1>%s</h1>\n%s", html.EscapeString(title), content.Sanitize(chapter.Content))
		if _, err := e.AddSection(body, title, fmt.Sprintf("chapter-%04d.xhtml", chapter.Number), ""); err != nil {
			return "", fmt.Errorf("failed to add chapter %d: %w", chapter.Number, err)
		}
		added++
	}
	if added == 0 {
		return "", fmt.Errorf("none of the %d chapters have content", len(chapters))
	}

	outputPath := filepath.Join(b.outputDir, sanitizeFilename(novel.Title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}

	return outputPath, nil
}

func (b *EPubBuilder) addCover(ctx context.Context, e *epub.Epub, novel *data.Novel) error {
	raw, err := FetchCover(ctx, b.client, novel.CoverURL)
	if err != nil {
		return err
	}
	processed, err := ProcessCover(raw, b.cover)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "novelshelf-cover-*.jpg")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(processed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	internal, err := e.AddImage(tmp.Name(), "cover.jpg")
	if err != nil {
		return fmt.Errorf("failed to add cover image: %w", err)
	}
	body := fmt.Sprintf(`<div class="cover"><img src="%s" alt="%s" style="width:100%%;height:auto;"/></div>`,
		internal, html.EscapeString(novel.Title))
	_, err = e.AddSection(body, "Cover", "cover.xhtml", "")
	return err
}

func ChapterTitle(chapter *data.Chapter) string {
	title := fmt.Sprintf("Chapter %d", chapter.Number)
	if chapter.Title != "" {
		title = fmt.Sprintf("%s: %s", title, chapter.Title)
	}
	return title
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		result = "novel"
	}
	return result
}
