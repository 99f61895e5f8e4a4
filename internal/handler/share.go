package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"engagement/internal/httputil"
	"engagement/internal/model"
	"engagement/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// Create handles POST /shares/post/{postId}
// Body (optional): {"shareCaption": "...", "audience": "Public|Friends|Private"}
// Returns 201 for a new share and 200 when an existing one was updated.
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateShareRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	outcome, keys, err := h.shareService.Create(r.Context(), userID, chi.URLParam(r, "postId"), req)
	if err != nil {
		writeError(w, err, "CreateShare", "Failed to share post")
		return
	}

	status := http.StatusOK
	if outcome.Created {
		status = http.StatusCreated
	}
	httputil.SetInvalidateKeys(w, keys)
	httputil.WriteData(w, status, outcome.Share)
}

// Delete handles DELETE /shares/{shareId} (owner only).
func (h *ShareHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	keys, err := h.shareService.Delete(r.Context(), userID, chi.URLParam(r, "shareId"))
	if err != nil {
		writeError(w, err, "DeleteShare", "Failed to delete share")
		return
	}

	httputil.SetInvalidateKeys(w, keys)
	httputil.WriteData(w, http.StatusOK, map[string]string{
		"message": "Share deleted successfully",
	})
}

// Get handles GET /shares/{shareId}
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	share, err := h.shareService.Get(r.Context(), chi.URLParam(r, "shareId"))
	if err != nil {
		writeError(w, err, "GetShare", "Failed to get share")
		return
	}
	httputil.WriteData(w, http.StatusOK, share)
}

// ListForPost handles GET /shares/post/{postId}?page&limit
func (h *ShareHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.shareService.ListForPost(r.Context(), chi.URLParam(r, "postId"), page)
	if err != nil {
		writeError(w, err, "ListPostShares", "Failed to list shares")
		return
	}
	httputil.WritePage(w, result)
}

// ListForUser handles GET /shares/user/{userId}?page&limit
func (h *ShareHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.shareService.ListForUser(r.Context(), chi.URLParam(r, "userId"), page)
	if err != nil {
		writeError(w, err, "ListUserShares", "Failed to list shares")
		return
	}
	httputil.WritePage(w, result)
}

// decodeOptional treats an empty body as an empty request.
func decodeOptional(body io.Reader, dest any) error {
	err := jsonDecode(body, dest)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
