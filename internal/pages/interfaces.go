package pages

import (
	"context"
	"time"

	"download-portal/pkg/models"
)

// Repository persists download page records
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type Repository interface {
	CreateDownloadPage(ctx context.Context, page *models.DownloadPage) error
	// GetDownloadPage returns the record with id if it expires after now, or nil
	GetDownloadPage(ctx context.Context, id string, now time.Time) (*models.DownloadPage, error)
	// FindDownloadPageByToken returns the newest record for (token, gameID) that
	// expires after now, or nil
	FindDownloadPageByToken(ctx context.Context, token string, gameID int64, now time.Time) (*models.DownloadPage, error)
	// DeleteExpiredDownloadPages removes records with expires_at <= before
	DeleteExpiredDownloadPages(ctx context.Context, before time.Time) (int64, error)
}

// Catalog looks up the download configuration of catalog items
type Catalog interface {
	// GetGame returns nil when the game does not exist
	GetGame(ctx context.Context, id int64) (*models.Game, error)
}
