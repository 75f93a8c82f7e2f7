package data

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   VARCHAR PRIMARY KEY,
	value VARCHAR NOT NULL
);
CREATE TABLE IF NOT EXISTS chapters (
	id       VARCHAR PRIMARY KEY,
	novel_id VARCHAR NOT NULL,
	number   INTEGER NOT NULL,
	title    VARCHAR,
	content  VARCHAR
);
`

func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Repository is the on-device store: the two session entries and the
// offline chapter cache.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func OpenRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Get returns the stored value and whether the key exists.
func (r *Repository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Repository) Set(key, value string) error {
	_, err := r.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, key, value)
	return err
}

func (r *Repository) Delete(key string) error {
	_, err := r.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (r *Repository) SaveChapter(chapter *Chapter) error {
	if chapter == nil || chapter.ID == "" {
		return fmt.Errorf("chapter must have an id")
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO chapters (id, novel_id, number, title, content) VALUES (?, ?, ?, ?, ?)`,
		chapter.ID, chapter.NovelID, chapter.Number, chapter.Title, chapter.Content,
	)
	return err
}

// GetChapter returns nil when the chapter is not cached.
func (r *Repository) GetChapter(novelID string, number int) (*Chapter, error) {
	ch := &Chapter{}
	var title, content sql.NullString
	err := r.db.QueryRow(
		`SELECT id, novel_id, number, title, content FROM chapters WHERE novel_id = ? AND number = ?`,
		novelID, number,
	).Scan(&ch.ID, &ch.NovelID, &ch.Number, &title, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ch.Title = title.String
	ch.Content = content.String
	return ch, nil
}

func (r *Repository) ListCachedChapters(novelID string) ([]*Chapter, error) {
	rows, err := r.db.Query(
		`SELECT id, novel_id, number, title, content FROM chapters WHERE novel_id = ? ORDER BY number`,
		novelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		ch := &Chapter{}
		var title, content sql.NullString
		if err := rows.Scan(&ch.ID, &ch.NovelID, &ch.Number, &title, &content); err != nil {
			return nil, err
		}
		ch.Title = title.String
		ch.Content = content.String
		chapters = append(chapters, ch)
	}
	return chapters, rows.Err()
}

func (r *Repository) ClearChapters(novelID string) error {
	_, err := r.db.Exec(`DELETE FROM chapters WHERE novel_id = ?`, novelID)
	return err
}
