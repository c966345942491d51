// Package database provides persistence for games and download pages on
// SQLite, PostgreSQL and Redis
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"download-portal/pkg/models"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well, and :memory: databases are per connection
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables. Timestamps are unix milliseconds.
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		pin_code TEXT NOT NULL,
		rar_password TEXT,
		clouds TEXT NOT NULL DEFAULT '[]',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS download_pages (
		id TEXT PRIMARY KEY,
		game_id INTEGER NOT NULL,
		cloud_index INTEGER,
		pin_code TEXT NOT NULL,
		actual_download_links TEXT NOT NULL,
		rar_password TEXT,
		token TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_download_pages_token_game ON download_pages(token, game_id);
	CREATE INDEX IF NOT EXISTS idx_download_pages_expires_at ON download_pages(expires_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// UpsertGame creates or replaces the download configuration of a game
func (db *DB) UpsertGame(ctx context.Context, game *models.Game) error {
	clouds, err := json.Marshal(cloudsOrEmpty(game.Clouds))
	if err != nil {
		return fmt.Errorf("failed to encode clouds: %w", err)
	}

	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	query := `
	INSERT INTO games (id, title, pin_code, rar_password, clouds, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		pin_code = excluded.pin_code,
		rar_password = excluded.rar_password,
		clouds = excluded.clouds,
		updated_at = excluded.updated_at
	`

	_, err = db.conn.ExecContext(ctx, query,
		game.ID, game.Title, game.PinCode, nullString(game.RarPassword),
		string(clouds), game.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID, returning nil when it does not exist
func (db *DB) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT id, title, pin_code, rar_password, clouds, updated_at FROM games WHERE id = ?`

	var (
		game        models.Game
		rarPassword sql.NullString
		clouds      string
		updatedAt   int64
	)
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&game.ID, &game.Title, &game.PinCode, &rarPassword, &clouds, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err := json.Unmarshal([]byte(clouds), &game.Clouds); err != nil {
		return nil, fmt.Errorf("failed to decode clouds for game %d: %w", id, err)
	}
	game.RarPassword = stringPtr(rarPassword)
	game.UpdatedAt = fromMillis(updatedAt)

	return &game, nil
}

// CreateDownloadPage inserts a new download page record
func (db *DB) CreateDownloadPage(ctx context.Context, page *models.DownloadPage) error {
	links, err := json.Marshal(linksOrEmpty(page.ActualDownloadLinks))
	if err != nil {
		return fmt.Errorf("failed to encode download links: %w", err)
	}

	var cloudIndex sql.NullInt64
	if page.CloudIndex != nil {
		cloudIndex = sql.NullInt64{Int64: int64(*page.CloudIndex), Valid: true}
	}

	query := `
	INSERT INTO download_pages (
		id, game_id, cloud_index, pin_code, actual_download_links,
		rar_password, token, created_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.conn.ExecContext(ctx, query,
		page.ID, page.GameID, cloudIndex, page.PinCode, string(links),
		nullString(page.RarPassword), page.Token,
		page.CreatedAt.UnixMilli(), page.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create download page: %w", err)
	}
	return nil
}

const downloadPageColumns = `id, game_id, cloud_index, pin_code, actual_download_links,
		rar_password, token, created_at, expires_at`

// GetDownloadPage retrieves a live download page by its composite id
func (db *DB) GetDownloadPage(ctx context.Context, id string, now time.Time) (*models.DownloadPage, error) {
	query := `SELECT ` + downloadPageColumns + ` FROM download_pages WHERE id = ? AND expires_at > ?`
	return db.scanDownloadPage(db.conn.QueryRowContext(ctx, query, id, now.UnixMilli()))
}

// FindDownloadPageByToken retrieves the newest live download page for a token and game
func (db *DB) FindDownloadPageByToken(ctx context.Context, token string, gameID int64, now time.Time) (*models.DownloadPage, error) {
	query := `SELECT ` + downloadPageColumns + ` FROM download_pages
	WHERE token = ? AND game_id = ? AND expires_at > ?
	ORDER BY created_at DESC
	LIMIT 1`
	return db.scanDownloadPage(db.conn.QueryRowContext(ctx, query, token, gameID, now.UnixMilli()))
}

func (db *DB) scanDownloadPage(row *sql.Row) (*models.DownloadPage, error) {
	var (
		page        models.DownloadPage
		cloudIndex  sql.NullInt64
		links       string
		rarPassword sql.NullString
		createdAt   int64
		expiresAt   int64
	)
	err := row.Scan(
		&page.ID, &page.GameID, &cloudIndex, &page.PinCode, &links,
		&rarPassword, &page.Token, &createdAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get download page: %w", err)
	}

	if err := json.Unmarshal([]byte(links), &page.ActualDownloadLinks); err != nil {
		return nil, fmt.Errorf("failed to decode download links: %w", err)
	}
	if cloudIndex.Valid {
		idx := int(cloudIndex.Int64)
		page.CloudIndex = &idx
	}
	page.RarPassword = stringPtr(rarPassword)
	page.CreatedAt = fromMillis(createdAt)
	page.ExpiresAt = fromMillis(expiresAt)

	return &page, nil
}

// DeleteExpiredDownloadPages removes download pages that expired at or before the cutoff
func (db *DB) DeleteExpiredDownloadPages(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx, "DELETE FROM download_pages WHERE expires_at <= ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired download pages: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		slog.Debug("Deleted expired download pages", "count", rowsAffected, "cutoff", before)
	}
	return rowsAffected, nil
}

// CountDownloadPages returns the number of stored records, live or not
func (db *DB) CountDownloadPages(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM download_pages").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count download pages: %w", err)
	}
	return count, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func cloudsOrEmpty(clouds []models.CloudProvider) []models.CloudProvider {
	if clouds == nil {
		return []models.CloudProvider{}
	}
	return clouds
}

func linksOrEmpty(links []models.DownloadLink) []models.DownloadLink {
	if links == nil {
		return []models.DownloadLink{}
	}
	return links
}
