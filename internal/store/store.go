// Package store provides the data layer for newschat.
//
// The store holds the session transcript: an append-only log of turns plus
// one owned record per article. Articles live in their own table keyed by id
// and turns reference them, so the transcript and the detail view always see
// the same record. There is no second copy of an article to drift.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB serializes access;
// individual operations are atomic, and AppendTurn uses a transaction.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Article is a single retrieved news article. AISummary is empty until the
// detail view fetches one; it is set at most once and never cleared.
type Article struct {
	ID          string
	Title       string
	Description string
	SourceName  string
	URL         string
	PublishedAt time.Time
	AISummary   string
}

// Turn is one exchange unit in the conversation log.
type Turn struct {
	ID        string
	Role      Role
	Text      string
	Intent    string // advisory classification, user turns only
	CreatedAt time.Time
	Articles  []Article
}

// Store persists the session transcript.
type Store struct {
	db *sql.DB
}

// Open creates a store at the given path. Pass ":memory:" (or "") for a
// session-only transcript that vanishes on exit.
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open database: %w", err)
	}

	// An in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		intent TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_seq ON turns(seq);

	CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		source_name TEXT,
		url TEXT,
		published_at DATETIME,
		ai_summary TEXT
	);

	CREATE TABLE IF NOT EXISTS turn_articles (
		turn_id TEXT NOT NULL,
		article_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (turn_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendTurn appends a turn and its articles in a single transaction.
// Articles are upserted by id; an existing ai_summary is never overwritten.
func (s *Store) AppendTurn(t Turn) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	// Rollback is a no-op after commit
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) + 1 FROM turns").Scan(&seq); err != nil {
		return fmt.Errorf("store: failed to allocate sequence: %w", err)
	}

	if _, err := tx.Exec(
		"INSERT INTO turns (id, seq, role, text, intent, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, seq, string(t.Role), t.Text, t.Intent, t.CreatedAt,
	); err != nil {
		return fmt.Errorf("store: failed to insert turn: %w", err)
	}

	for i, a := range t.Articles {
		if _, err := tx.Exec(`
			INSERT INTO articles (id, title, description, source_name, url, published_at, ai_summary)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				source_name = excluded.source_name,
				url = excluded.url,
				published_at = excluded.published_at
		`, a.ID, a.Title, a.Description, a.SourceName, a.URL, a.PublishedAt, a.AISummary); err != nil {
			return fmt.Errorf("store: failed to upsert article %s: %w", a.ID, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO turn_articles (turn_id, article_id, position) VALUES (?, ?, ?)",
			t.ID, a.ID, i,
		); err != nil {
			return fmt.Errorf("store: failed to link article %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit transaction: %w", err)
	}

	return nil
}

// Turns returns the whole transcript, oldest-first.
func (s *Store) Turns() ([]Turn, error) {
	return s.queryTurns("SELECT id, role, text, intent, created_at FROM turns ORDER BY seq ASC")
}

// RecentTurns returns the most recent limit turns, oldest-first. This bounds
// the context sent with a remote query.
func (s *Store) RecentTurns(limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 10
	}
	turns, err := s.queryTurns(
		"SELECT id, role, text, intent, created_at FROM turns ORDER BY seq DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	// Flip newest-first back to oldest-first
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *Store) queryTurns(query string, args ...any) ([]Turn, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var role string
		var intent sql.NullString
		if err := rows.Scan(&t.ID, &role, &t.Text, &intent, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan turn: %w", err)
		}
		t.Role = Role(role)
		t.Intent = intent.String
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating turns: %w", err)
	}

	for i := range turns {
		articles, err := s.turnArticles(turns[i].ID)
		if err != nil {
			return nil, err
		}
		turns[i].Articles = articles
	}

	return turns, nil
}

func (s *Store) turnArticles(turnID string) ([]Article, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.title, a.description, a.source_name, a.url, a.published_at, a.ai_summary
		FROM turn_articles ta
		JOIN articles a ON a.id = ta.article_id
		WHERE ta.turn_id = ?
		ORDER BY ta.position ASC
	`, turnID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var a Article
		var desc, source, url, summary sql.NullString
		var published sql.NullTime
		if err := rows.Scan(&a.ID, &a.Title, &desc, &source, &url, &published, &summary); err != nil {
			return nil, fmt.Errorf("store: failed to scan article: %w", err)
		}
		a.Description = desc.String
		a.SourceName = source.String
		a.URL = url.String
		a.PublishedAt = published.Time
		a.AISummary = summary.String
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating articles: %w", err)
	}
	return articles, nil
}

// GetArticle returns the owned record for an article id.
func (s *Store) GetArticle(id string) (Article, bool, error) {
	var a Article
	var desc, source, url, summary sql.NullString
	var published sql.NullTime
	err := s.db.QueryRow(
		"SELECT id, title, description, source_name, url, published_at, ai_summary FROM articles WHERE id = ?", id,
	).Scan(&a.ID, &a.Title, &desc, &source, &url, &published, &summary)
	if err == sql.ErrNoRows {
		return Article{}, false, nil
	}
	if err != nil {
		return Article{}, false, fmt.Errorf("store: failed to get article: %w", err)
	}
	a.Description = desc.String
	a.SourceName = source.String
	a.URL = url.String
	a.PublishedAt = published.Time
	a.AISummary = summary.String
	return a, true, nil
}

// SetSummary records the AI summary for an article. The summary transitions
// from absent to present exactly once: a second write is a no-op, which makes
// late completions from a dismissed detail view harmless.
func (s *Store) SetSummary(id, summary string) error {
	result, err := s.db.Exec(
		"UPDATE articles SET ai_summary = ? WHERE id = ? AND (ai_summary IS NULL OR ai_summary = '')",
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("store: failed to set summary: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Distinguish "already summarized" from "no such article"
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM articles WHERE id = ?", id).Scan(&exists); err != nil {
			return fmt.Errorf("store: failed to check article: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("store: article not found: %s", id)
		}
	}
	return nil
}

// ArticleCount returns the number of articles seen this session.
func (s *Store) ArticleCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("store: failed to count articles: %w", err)
	}
	return count, nil
}

// TurnCount returns the number of turns in the transcript.
func (s *Store) TurnCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM turns").Scan(&count); err != nil {
		return 0, fmt.Errorf("store: failed to count turns: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
