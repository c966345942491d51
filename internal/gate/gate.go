// Package gate orchestrates a download request: it creates the download page
// and routes the user through the redirect service, falling back to the page
// itself when the service cannot be reached.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"download-portal/internal/token"
	"download-portal/pkg/models"
)

// Outcome describes where the user should be sent
type Outcome struct {
	Page        *models.DownloadPage
	PageURL     string
	RedirectURL string
	// Surveyed is true when RedirectURL goes through the redirect service
	Surveyed       bool
	Provider       string
	FallbackReason string
}

// Gate creates download pages and wraps them in redirect links
type Gate struct {
	pages         PageCreator
	redirector    Redirector
	origin        string
	generateAlias func(gameID int64, cloudIndex int) (string, error)
	logger        *slog.Logger
}

// New creates a gate that builds page URLs under origin
func New(pages PageCreator, redirector Redirector, origin string) *Gate {
	return &Gate{
		pages:         pages,
		redirector:    redirector,
		origin:        origin,
		generateAlias: token.GenerateAlias,
		logger:        slog.Default(),
	}
}

// InitiateDownload creates a download page for the game and returns the URL
// the user should be sent to. Errors come only from page creation; once a page
// exists the outcome always has a usable RedirectURL.
func (g *Gate) InitiateDownload(ctx context.Context, gameID int64, cloudIndex *int) (*Outcome, error) {
	page, err := g.pages.Create(ctx, gameID, cloudIndex)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Page:    page,
		PageURL: PageURL(g.origin, page),
	}
	outcome.RedirectURL = outcome.PageURL

	alias, err := g.generateAlias(gameID, models.CloudIndexOrDefault(cloudIndex))
	if err != nil {
		outcome.FallbackReason = fmt.Sprintf("failed to generate alias: %v", err)
		g.logFallback(outcome)
		return outcome, nil
	}

	result, err := g.redirector.Shorten(ctx, outcome.PageURL, alias)
	if err != nil {
		outcome.FallbackReason = err.Error()
		g.logFallback(outcome)
		return outcome, nil
	}

	outcome.RedirectURL = result.URL
	outcome.Surveyed = true
	outcome.Provider = result.Provider

	g.logger.Info("Download initiated",
		"game_id", gameID,
		"cloud_index", models.CloudIndexOrDefault(cloudIndex),
		"provider", result.Provider,
		"method", result.Method)

	return outcome, nil
}

func (g *Gate) logFallback(outcome *Outcome) {
	g.logger.Warn("Redirect service unavailable, sending user to download page",
		"game_id", outcome.Page.GameID,
		"page_id", outcome.Page.ID,
		"reason", outcome.FallbackReason)
}

// PageURL builds the public URL of a download page
func PageURL(origin string, page *models.DownloadPage) string {
	query := url.Values{}
	if page.CloudIndex != nil {
		query.Set("cloud", strconv.Itoa(*page.CloudIndex))
	}
	query.Set("token", page.Token)
	return fmt.Sprintf("%s/download/%d?%s", origin, page.GameID, query.Encode())
}
