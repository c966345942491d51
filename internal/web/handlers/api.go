package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// CreatePageRequest is the body of POST /api/download-pages
type CreatePageRequest struct {
	GameID     int64 `json:"gameId"`
	CloudIndex *int  `json:"cloudIndex,omitempty"`
}

// CreatePage materializes a download page without going through the gate
func (h *Handlers) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body.")
		return
	}
	if req.CloudIndex != nil && *req.CloudIndex < 0 {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "cloudIndex must be a non-negative integer.")
		return
	}

	page, err := h.pages.Create(r.Context(), req.GameID, req.CloudIndex)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, page)
}

// ResolvePage returns the live page for gameId, cloudIndex and token
func (h *Handlers) ResolvePage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	gameID, err := strconv.ParseInt(query.Get("gameId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "gameId is required.")
		return
	}
	cloudIndex, err := parseCloudIndex(query.Get("cloudIndex"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	page, err := h.pages.Resolve(r.Context(), gameID, cloudIndex, query.Get("token"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if page == nil {
		h.writeError(w, http.StatusNotFound, codeNotFound, msgNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, page)
}

// CleanupPages deletes expired pages
func (h *Handlers) CleanupPages(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.pages.CleanupExpired(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// DownloadRequest is the body of POST /api/games/{gameId}/download
type DownloadRequest struct {
	CloudIndex *int `json:"cloudIndex,omitempty"`
}

// DownloadResponse tells the client where to send the user
type DownloadResponse struct {
	RedirectURL string    `json:"redirectUrl"`
	PageURL     string    `json:"pageUrl"`
	Surveyed    bool      `json:"surveyed"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// InitiateDownload runs the access gate and returns the redirect target
func (h *Handlers) InitiateDownload(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid game id.")
		return
	}

	var req DownloadRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body.")
			return
		}
	}
	if req.CloudIndex != nil && *req.CloudIndex < 0 {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "cloudIndex must be a non-negative integer.")
		return
	}

	outcome, err := h.downloader.InitiateDownload(r.Context(), gameID, req.CloudIndex)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, DownloadResponse{
		RedirectURL: outcome.RedirectURL,
		PageURL:     outcome.PageURL,
		Surveyed:    outcome.Surveyed,
		ExpiresAt:   outcome.Page.ExpiresAt,
	})
}

// RedirectDownload runs the access gate for a submitted form and redirects the
// browser. It is POST only since every call writes a page record.
func (h *Handlers) RedirectDownload(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	cloudIndex, err := parseCloudIndex(r.FormValue("cloud"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.downloader.InitiateDownload(r.Context(), gameID, cloudIndex)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, outcome.RedirectURL, http.StatusSeeOther)
}

// CloudSummary describes one provider without exposing its links
type CloudSummary struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	LinkCount int    `json:"linkCount"`
}

// ListClouds returns the providers configured for a game
func (h *Handlers) ListClouds(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid game id.")
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if game == nil {
		h.writeError(w, http.StatusNotFound, codeNotConfigured, msgNotConfigured)
		return
	}

	clouds := make([]CloudSummary, 0, len(game.Clouds))
	for i, c := range game.Clouds {
		clouds = append(clouds, CloudSummary{Index: i, Name: c.Name, LinkCount: len(c.Links)})
	}
	h.writeJSON(w, http.StatusOK, clouds)
}
