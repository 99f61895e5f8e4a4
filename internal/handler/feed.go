package handler

import (
	"net/http"
	"strconv"

	"engagement/internal/httputil"
	"engagement/internal/service"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed
// Returns the global feed of public shares, newest first.
//
// Query params:
//   - cursor: optional, from the previous page's nextCursor (format: "shareId:unixMicros")
//   - limit: optional, number of shares per page (default 10, max 50)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit := service.FeedDefaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	feed, err := h.feedService.GetFeed(r.Context(), cursor, limit)
	if err != nil {
		writeError(w, err, "GetFeed", "Failed to get feed")
		return
	}

	httputil.WriteData(w, http.StatusOK, feed)
}
