package handler

import (
	"net/http"

	"engagement/internal/cache"
	"engagement/internal/httputil"
)

// CacheRules handles GET /cache/rules: the mutation to stale-key table
// clients use to drop their own copies.
func CacheRules(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, cache.PublishedRules())
}
