package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"engagement/internal/httputil"
	"engagement/internal/model"
	"engagement/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Add handles POST /comments/posts/{postId} and
// POST /share-comments/{shareId}/comments
// Body: {"content": "..."}
func (h *CommentHandler) Add(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req model.CommentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		comment, keys, err := h.commentService.Add(r.Context(), userID, t.id(r), t.Kind, req.Content)
		if err != nil {
			writeError(w, err, "AddComment", "Failed to add comment")
			return
		}

		httputil.SetInvalidateKeys(w, keys)
		httputil.WriteData(w, http.StatusCreated, comment)
	}
}

// List handles GET on the same paths with ?page&limit, oldest first.
func (h *CommentHandler) List(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}

		result, err := h.commentService.List(r.Context(), t.id(r), t.Kind, page)
		if err != nil {
			writeError(w, err, "ListComments", "Failed to list comments")
			return
		}
		httputil.WritePage(w, result)
	}
}

// Update handles PUT /comments/{commentId} (author only).
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req model.CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, keys, err := h.commentService.Update(r.Context(), userID, chi.URLParam(r, "commentId"), req.Content)
	if err != nil {
		writeError(w, err, "UpdateComment", "Failed to update comment")
		return
	}

	httputil.SetInvalidateKeys(w, keys)
	httputil.WriteData(w, http.StatusOK, comment)
}

// Delete handles DELETE /comments/{commentId} (author only).
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	keys, err := h.commentService.Delete(r.Context(), userID, chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, err, "DeleteComment", "Failed to delete comment")
		return
	}

	httputil.SetInvalidateKeys(w, keys)
	httputil.WriteData(w, http.StatusOK, map[string]string{
		"message": "Comment deleted successfully",
	})
}
