package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"download-portal/internal/config"
	"download-portal/pkg/models"
)

// PageStore persists download page records
type PageStore interface {
	CreateDownloadPage(ctx context.Context, page *models.DownloadPage) error
	GetDownloadPage(ctx context.Context, id string, now time.Time) (*models.DownloadPage, error)
	FindDownloadPageByToken(ctx context.Context, token string, gameID int64, now time.Time) (*models.DownloadPage, error)
	DeleteExpiredDownloadPages(ctx context.Context, before time.Time) (int64, error)
}

// GameStore persists the download configuration of games
type GameStore interface {
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	UpsertGame(ctx context.Context, game *models.Game) error
}

// Stores bundles the backends selected by configuration
type Stores struct {
	Pages   PageStore
	Games   GameStore
	closers []func() error
}

// Close releases every backend connection
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open connects the game and page stores described by cfg
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores := &Stores{}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		stores.Pages, stores.Games = db, db
		stores.closers = append(stores.closers, db.Close)
	default:
		db, err := New(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		stores.Pages, stores.Games = db, db
		stores.closers = append(stores.closers, db.Close)
	}

	if cfg.PageStore == config.PageStoreRedis {
		redisStore, err := NewRedisPageStore(ctx, cfg.RedisURL)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("failed to open redis page store: %w", err)
		}
		stores.Pages = redisStore
		stores.closers = append(stores.closers, redisStore.Close)
	}

	slog.Info("Opened stores", "driver", cfg.DatabaseDriver, "page_store", cfg.PageStore)
	return stores, nil
}
