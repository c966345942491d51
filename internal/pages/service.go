// Package pages manages the lifecycle of time-boxed download pages: creation,
// token resolution, PIN unlocking and expiry cleanup.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"download-portal/internal/token"
	"download-portal/pkg/models"
)

var (
	// ErrNotConfigured means the game has no links for the requested provider
	ErrNotConfigured = errors.New("download links not configured")
	// ErrStorage is the root of every persistence failure
	ErrStorage = errors.New("storage error")
)

// StorageError wraps a repository failure with the operation that caused it
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface for StorageError
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

// Is matches ErrStorage
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// Unwrap returns the underlying repository error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRetention keeps expired records for the given grace window before
// CleanupExpired deletes them. Expired records never resolve either way.
func WithRetention(retention time.Duration) Option {
	return func(s *Service) {
		s.retention = retention
	}
}

// Service is the download page store
type Service struct {
	repo          Repository
	catalog       Catalog
	now           func() time.Time
	retention     time.Duration
	generateToken func() (string, error)
	logger        *slog.Logger
}

// NewService creates a new download page service
func NewService(repo Repository, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		catalog:       catalog,
		now:           time.Now,
		generateToken: token.GenerateToken,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create materializes a new download page for the game and provider. Nothing
// is written when the provider has no links.
func (s *Service) Create(ctx context.Context, gameID int64, cloudIndex *int) (*models.DownloadPage, error) {
	game, err := s.catalog.GetGame(ctx, gameID)
	if err != nil {
		return nil, &StorageError{Op: "get game", Err: err}
	}
	if game == nil {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotConfigured)
	}

	links, ok := game.LinksFor(cloudIndex)
	if !ok {
		return nil, fmt.Errorf("game %d cloud %d: %w", gameID, models.CloudIndexOrDefault(cloudIndex), ErrNotConfigured)
	}

	tok, err := s.generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create download page: %w", err)
	}

	createdAt := s.now().UTC().Truncate(time.Millisecond)
	page := &models.DownloadPage{
		ID:                  models.PageID(gameID, cloudIndex, tok),
		GameID:              gameID,
		CloudIndex:          copyInt(cloudIndex),
		PinCode:             game.PinCode,
		ActualDownloadLinks: append([]models.DownloadLink(nil), links...),
		RarPassword:         copyString(game.RarPassword),
		Token:               tok,
		CreatedAt:           createdAt,
		ExpiresAt:           createdAt.Add(models.PageTTL),
	}

	if err := s.repo.CreateDownloadPage(ctx, page); err != nil {
		return nil, &StorageError{Op: "create download page", Err: err}
	}

	s.logger.Info("Created download page",
		"game_id", gameID,
		"cloud_index", models.CloudIndexOrDefault(cloudIndex),
		"expires_at", page.ExpiresAt)

	return page, nil
}

// Resolve returns the live page for the keys, or nil when there is none.
// Expired and never-created pages are indistinguishable.
func (s *Service) Resolve(ctx context.Context, gameID int64, cloudIndex *int, tok string) (*models.DownloadPage, error) {
	if tok == "" {
		return nil, nil
	}

	now := s.now()

	page, err := s.repo.GetDownloadPage(ctx, models.PageID(gameID, cloudIndex, tok), now)
	if err != nil {
		return nil, &StorageError{Op: "get download page", Err: err}
	}

	// The id format depends on whether a cloud index was present at creation
	if page == nil {
		page, err = s.repo.FindDownloadPageByToken(ctx, tok, gameID, now)
		if err != nil {
			return nil, &StorageError{Op: "find download page", Err: err}
		}
	}

	if page == nil || !page.IsLive(now) {
		return nil, nil
	}
	return page, nil
}

// CleanupExpired deletes expired records older than the retention window and
// returns how many were removed
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	deleted, err := s.repo.DeleteExpiredDownloadPages(ctx, cutoff)
	if err != nil {
		return 0, &StorageError{Op: "delete expired download pages", Err: err}
	}

	if deleted > 0 {
		s.logger.Info("Deleted expired download pages", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
