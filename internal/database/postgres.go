package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"download-portal/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDB stores games and download pages in PostgreSQL
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to PostgreSQL and initializes the schema
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres pool: %w", err)
	}

	db := &PostgresDB{pool: pool}
	if err := db.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the connection pool
func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

func (db *PostgresDB) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id BIGINT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		pin_code TEXT NOT NULL,
		rar_password TEXT,
		clouds JSONB NOT NULL DEFAULT '[]',
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS download_pages (
		id TEXT PRIMARY KEY,
		game_id BIGINT NOT NULL,
		cloud_index INTEGER,
		pin_code TEXT NOT NULL,
		actual_download_links JSONB NOT NULL,
		rar_password TEXT,
		token TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_download_pages_token_game ON download_pages(token, game_id);
	CREATE INDEX IF NOT EXISTS idx_download_pages_expires_at ON download_pages(expires_at);
	`
	_, err := db.pool.Exec(ctx, schema)
	return err
}

// UpsertGame creates or replaces the download configuration of a game
func (db *PostgresDB) UpsertGame(ctx context.Context, game *models.Game) error {
	clouds, err := json.Marshal(cloudsOrEmpty(game.Clouds))
	if err != nil {
		return fmt.Errorf("failed to encode clouds: %w", err)
	}

	if game.UpdatedAt.IsZero() {
		game.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	query := `
	INSERT INTO games (id, title, pin_code, rar_password, clouds, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		pin_code = EXCLUDED.pin_code,
		rar_password = EXCLUDED.rar_password,
		clouds = EXCLUDED.clouds,
		updated_at = EXCLUDED.updated_at`

	_, err = db.pool.Exec(ctx, query, game.ID, game.Title, game.PinCode, game.RarPassword, string(clouds), game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID, returning nil when it does not exist
func (db *PostgresDB) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT id, title, pin_code, rar_password, clouds, updated_at FROM games WHERE id = $1`

	var (
		game   models.Game
		clouds []byte
	)
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&game.ID, &game.Title, &game.PinCode, &game.RarPassword, &clouds, &game.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err := json.Unmarshal(clouds, &game.Clouds); err != nil {
		return nil, fmt.Errorf("failed to decode clouds for game %d: %w", id, err)
	}
	game.UpdatedAt = game.UpdatedAt.UTC()

	return &game, nil
}

// CreateDownloadPage inserts a new download page record
func (db *PostgresDB) CreateDownloadPage(ctx context.Context, page *models.DownloadPage) error {
	links, err := json.Marshal(linksOrEmpty(page.ActualDownloadLinks))
	if err != nil {
		return fmt.Errorf("failed to encode download links: %w", err)
	}

	query := `
	INSERT INTO download_pages (
		id, game_id, cloud_index, pin_code, actual_download_links,
		rar_password, token, created_at, expires_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = db.pool.Exec(ctx, query,
		page.ID, page.GameID, page.CloudIndex, page.PinCode, string(links),
		page.RarPassword, page.Token, page.CreatedAt, page.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create download page: %w", err)
	}
	return nil
}

// GetDownloadPage retrieves a live download page by its composite id
func (db *PostgresDB) GetDownloadPage(ctx context.Context, id string, now time.Time) (*models.DownloadPage, error) {
	query := `SELECT ` + downloadPageColumns + ` FROM download_pages WHERE id = $1 AND expires_at > $2`
	return scanPostgresDownloadPage(db.pool.QueryRow(ctx, query, id, now))
}

// FindDownloadPageByToken retrieves the newest live download page for a token and game
func (db *PostgresDB) FindDownloadPageByToken(ctx context.Context, token string, gameID int64, now time.Time) (*models.DownloadPage, error) {
	query := `SELECT ` + downloadPageColumns + ` FROM download_pages
	WHERE token = $1 AND game_id = $2 AND expires_at > $3
	ORDER BY created_at DESC
	LIMIT 1`
	return scanPostgresDownloadPage(db.pool.QueryRow(ctx, query, token, gameID, now))
}

func scanPostgresDownloadPage(row pgx.Row) (*models.DownloadPage, error) {
	var (
		page  models.DownloadPage
		links []byte
	)
	err := row.Scan(
		&page.ID, &page.GameID, &page.CloudIndex, &page.PinCode, &links,
		&page.RarPassword, &page.Token, &page.CreatedAt, &page.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get download page: %w", err)
	}

	if err := json.Unmarshal(links, &page.ActualDownloadLinks); err != nil {
		return nil, fmt.Errorf("failed to decode download links: %w", err)
	}
	page.CreatedAt = page.CreatedAt.UTC()
	page.ExpiresAt = page.ExpiresAt.UTC()

	return &page, nil
}

// DeleteExpiredDownloadPages removes download pages that expired at or before the cutoff
func (db *PostgresDB) DeleteExpiredDownloadPages(ctx context.Context, before time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM download_pages WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired download pages: %w", err)
	}
	return tag.RowsAffected(), nil
}
