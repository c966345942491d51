// Package handlers provides HTTP handlers for the API and the download pages
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"download-portal/internal/gate"
	"download-portal/internal/pages"
	"download-portal/pkg/models"

	"github.com/go-chi/chi/v5"
)

// PageService creates, resolves and expires download pages
type PageService interface {
	Create(ctx context.Context, gameID int64, cloudIndex *int) (*models.DownloadPage, error)
	Resolve(ctx context.Context, gameID int64, cloudIndex *int, token string) (*models.DownloadPage, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// Downloader runs the access gate for a download request
type Downloader interface {
	InitiateDownload(ctx context.Context, gameID int64, cloudIndex *int) (*gate.Outcome, error)
}

// GameStore reads and writes game download configuration
type GameStore interface {
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	UpsertGame(ctx context.Context, game *models.Game) error
}

// Handlers contains all HTTP handlers and their dependencies
type Handlers struct {
	pages      PageService
	downloader Downloader
	games      GameStore
	now        func() time.Time
	logger     *slog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(pageService PageService, downloader Downloader, games GameStore) *Handlers {
	return &Handlers{
		pages:      pageService,
		downloader: downloader,
		games:      games,
		now:        time.Now,
		logger:     slog.Default(),
	}
}

// ErrorResponse is the JSON body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

const (
	codeBadRequest    = "bad_request"
	codeNotConfigured = "not_configured"
	codeNotFound      = "not_found"
	codeUnavailable   = "unavailable"
	codeUnauthorized  = "unauthorized"
)

const (
	msgNotConfigured = "Download links are not available for this game yet. Please contact the admin."
	msgNotFound      = "This download link has expired or does not exist. Please request a new one."
	msgUnavailable   = "Something went wrong on our side. Please try again later."
)

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps page and gate errors to a user-facing response
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pages.ErrNotConfigured):
		h.writeError(w, http.StatusNotFound, codeNotConfigured, msgNotConfigured)
	default:
		h.logger.Error("Request failed", "path", r.URL.Path, "error", err)
		h.writeError(w, http.StatusInternalServerError, codeUnavailable, msgUnavailable)
	}
}

// gameIDParam reads the {gameId} route parameter
func gameIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "gameId"), 10, 64)
}

// parseCloudIndex parses an optional provider index. Empty means absent.
func parseCloudIndex(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return nil, errors.New("cloud index must be a non-negative integer")
	}
	return &idx, nil
}
