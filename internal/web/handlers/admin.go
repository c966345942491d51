package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"download-portal/pkg/models"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the admin key on admin routes
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey rejects requests whose X-Admin-Key does not match the bcrypt
// hash. With an empty hash every admin request is rejected.
func RequireAdminKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(AdminKeyHeader)
			if hash == "" || key == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(ErrorResponse{Error: codeUnauthorized, Message: "Admin key required."})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GameRequest is the body of PUT /api/admin/games/{gameId}
type GameRequest struct {
	Title       string                 `json:"title"`
	PinCode     string                 `json:"pinCode"`
	RarPassword *string                `json:"rarPassword,omitempty"`
	Clouds      []models.CloudProvider `json:"clouds"`
}

// UpsertGame replaces the download configuration of a game. Existing pages
// keep their snapshot.
func (h *Handlers) UpsertGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid game id.")
		return
	}

	var req GameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body.")
		return
	}

	game := &models.Game{
		ID:          gameID,
		Title:       req.Title,
		PinCode:     req.PinCode,
		RarPassword: req.RarPassword,
		Clouds:      req.Clouds,
		UpdatedAt:   h.now().UTC().Truncate(time.Millisecond),
	}
	if err := game.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	if err := h.games.UpsertGame(r.Context(), game); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("Updated game download configuration", "game_id", gameID, "clouds", len(game.Clouds))
	h.writeJSON(w, http.StatusOK, game)
}
