package handlers

import (
	"errors"
	"net/http"

	"download-portal/internal/pages"
	"download-portal/internal/web/templates"
)

// DownloadPage renders the PIN gate for a resolved page. Missing and expired
// pages render the same neutral view.
func (h *Handlers) DownloadPage(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}
	cloudIndex, err := parseCloudIndex(r.URL.Query().Get("cloud"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := templates.DownloadView{
		State:      templates.StateUnavailable,
		GameID:     gameID,
		CloudIndex: cloudIndex,
		Token:      r.URL.Query().Get("token"),
	}

	page, err := h.pages.Resolve(r.Context(), gameID, cloudIndex, view.Token)
	if err != nil {
		h.logger.Error("Failed to resolve download page", "game_id", gameID, "error", err)
		http.Error(w, msgUnavailable, http.StatusInternalServerError)
		return
	}
	if page == nil {
		h.render(w, r, http.StatusNotFound, view)
		return
	}

	visit := pages.NewVisit(page, h.now())
	h.render(w, r, http.StatusOK, viewFor(visit, view, ""))
}

// UnlockPage checks the submitted PIN and shows the links on a match
func (h *Handlers) UnlockPage(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		http.Error(w, "Invalid game id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}
	cloudIndex, err := parseCloudIndex(r.FormValue("cloud"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := templates.DownloadView{
		State:      templates.StateUnavailable,
		GameID:     gameID,
		CloudIndex: cloudIndex,
		Token:      r.FormValue("token"),
	}

	page, err := h.pages.Resolve(r.Context(), gameID, cloudIndex, view.Token)
	if err != nil {
		h.logger.Error("Failed to resolve download page", "game_id", gameID, "error", err)
		http.Error(w, msgUnavailable, http.StatusInternalServerError)
		return
	}
	if page == nil {
		h.render(w, r, http.StatusNotFound, view)
		return
	}

	now := h.now()
	visit := pages.NewVisit(page, now)

	message := ""
	switch err := visit.EnterPIN(r.FormValue("pin"), now); {
	case errors.Is(err, pages.ErrInvalidPIN):
		message = "Incorrect PIN. Please try again."
	case errors.Is(err, pages.ErrPageExpired):
		h.render(w, r, http.StatusNotFound, view)
		return
	case err == nil:
		h.logger.Info("Download page unlocked", "game_id", gameID, "page_id", page.ID)
	}

	h.render(w, r, http.StatusOK, viewFor(visit, view, message))
}

func viewFor(visit *pages.Visit, view templates.DownloadView, message string) templates.DownloadView {
	page := visit.Page()
	view.ExpiresAt = page.ExpiresAt
	view.TimeLeft = visit.TimeLeft()
	view.Message = message

	switch visit.State() {
	case pages.VisitUnlocked:
		view.State = templates.StateUnlocked
		view.Links = visit.Links()
		view.RarPassword = visit.RarPassword()
	case pages.VisitLocked:
		view.State = templates.StateLocked
	default:
		view.State = templates.StateUnavailable
	}
	return view
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, view templates.DownloadView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	component := templates.Base("Download", templates.Download(view))
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.Error("Failed to render download page", "error", err)
	}
}

var _ PageService = (*pages.Service)(nil)
