package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"engagement/internal/httputil"
	"engagement/internal/service"
)

type LikeHandler struct {
	likeService *service.LikeService
}

func NewLikeHandler(likeService *service.LikeService) *LikeHandler {
	return &LikeHandler{
		likeService: likeService,
	}
}

// Toggle handles POST /likes/posts/{postId}
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, keys, err := h.likeService.Toggle(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err, "ToggleLike", "Failed to toggle like")
		return
	}

	httputil.SetInvalidateKeys(w, keys)
	httputil.WriteData(w, http.StatusOK, result)
}

// GetPostLikes handles GET /likes/posts/{postId}?page&limit
func (h *LikeHandler) GetPostLikes(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.likeService.GetPostLikes(r.Context(), chi.URLParam(r, "postId"), page)
	if err != nil {
		writeError(w, err, "GetPostLikes", "Failed to get likes")
		return
	}
	httputil.WritePage(w, result)
}

// CheckUserLiked handles GET /likes/posts/{postId}/check
func (h *LikeHandler) CheckUserLiked(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.likeService.CheckUserLiked(r.Context(), userID, chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err, "CheckUserLiked", "Failed to check like")
		return
	}
	httputil.WriteData(w, http.StatusOK, status)
}

// GetUserLikedPosts handles GET /likes/users/{userId}?page&limit
func (h *LikeHandler) GetUserLikedPosts(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.likeService.GetUserLikedPosts(r.Context(), chi.URLParam(r, "userId"), page)
	if err != nil {
		writeError(w, err, "GetUserLikedPosts", "Failed to get liked posts")
		return
	}
	httputil.WritePage(w, result)
}
