package handler

import (
	"net/http"

	"engagement/internal/httputil"
	"engagement/internal/model"
	"engagement/internal/service"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
}

func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{
		reactionService: reactionService,
	}
}

// Set handles POST /reactions/{postId} and POST /shares/{shareId}/reactions
// Body: {"reactionType": "Heart"} (any casing)
func (h *ReactionHandler) Set(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req model.SetReactionRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, keys, err := h.reactionService.Set(r.Context(), userID, t.id(r), t.Kind, req.ReactionType)
		if err != nil {
			writeError(w, err, "SetReaction", "Failed to set reaction")
			return
		}

		httputil.SetInvalidateKeys(w, keys)
		httputil.WriteData(w, http.StatusOK, result)
	}
}

// Remove handles DELETE on the same paths. Removing a reaction that does
// not exist succeeds.
func (h *ReactionHandler) Remove(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		result, keys, err := h.reactionService.Remove(r.Context(), userID, t.id(r), t.Kind)
		if err != nil {
			writeError(w, err, "RemoveReaction", "Failed to remove reaction")
			return
		}

		httputil.SetInvalidateKeys(w, keys)
		httputil.WriteData(w, http.StatusOK, result)
	}
}

// List handles GET with ?page&limit&reactionType.
func (h *ReactionHandler) List(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := parsePage(w, r)
		if !ok {
			return
		}

		result, err := h.reactionService.List(r.Context(), t.id(r), t.Kind, page, r.URL.Query().Get("reactionType"))
		if err != nil {
			writeError(w, err, "ListReactions", "Failed to list reactions")
			return
		}
		httputil.WritePage(w, result)
	}
}

// Counts handles GET .../counts
func (h *ReactionHandler) Counts(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := h.reactionService.GetCounts(r.Context(), t.id(r), t.Kind)
		if err != nil {
			writeError(w, err, "ReactionCounts", "Failed to get reaction counts")
			return
		}
		httputil.WriteData(w, http.StatusOK, summary)
	}
}

// Mine handles GET .../me. data is null when the caller has not reacted.
func (h *ReactionHandler) Mine(t Target) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		reaction, err := h.reactionService.GetActorReaction(r.Context(), userID, t.id(r), t.Kind)
		if err != nil {
			writeError(w, err, "MyReaction", "Failed to get reaction")
			return
		}
		httputil.WriteData(w, http.StatusOK, map[string]any{"reaction": reaction})
	}
}
