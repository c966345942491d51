package gate

import (
	"context"

	"download-portal/internal/shortener"
	"download-portal/pkg/models"
)

// PageCreator materializes download pages
//
//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks
type PageCreator interface {
	Create(ctx context.Context, gameID int64, cloudIndex *int) (*models.DownloadPage, error)
}

// Redirector wraps a destination URL in a monetized redirect
type Redirector interface {
	Shorten(ctx context.Context, destination, alias string) (*shortener.Result, error)
}
