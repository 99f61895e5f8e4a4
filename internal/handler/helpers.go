package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"engagement/internal/httputil"
	"engagement/internal/model"
	"engagement/internal/transport/http/middleware"
)

// Target locates a reaction or comment target in the route.
type Target struct {
	Kind  model.TargetKind
	Param string // chi URL parameter holding the target ID
}

var (
	PostTarget  = Target{Kind: model.TargetPost, Param: "postId"}
	ShareTarget = Target{Kind: model.TargetShare, Param: "shareId"}
)

func (t Target) id(r *http.Request) string {
	return chi.URLParam(r, t.Param)
}

// requireUser writes 401 when the request is anonymous.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return "", false
	}
	return userID, true
}

// parsePage reads page and limit. Non-numeric or non-positive values are
// rejected; limits above the maximum are clamped.
func parsePage(w http.ResponseWriter, r *http.Request) (model.Page, bool) {
	page, ok := positiveQueryInt(w, r, "page", 1)
	if !ok {
		return model.Page{}, false
	}
	limit, ok := positiveQueryInt(w, r, "limit", model.DefaultPageLimit)
	if !ok {
		return model.Page{}, false
	}
	return model.NewPage(page, limit), true
}

func positiveQueryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}

func jsonDecode(body io.Reader, dest any) error {
	return json.NewDecoder(body).Decode(dest)
}

// decodeBody decodes a JSON body, writing 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := jsonDecode(r.Body, dest); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}
	return true
}

// writeError maps domain errors to their status and logs everything else
// as a 500.
func writeError(w http.ResponseWriter, err error, op string, message string) {
	if httputil.WriteKnownError(w, err) {
		return
	}
	log.Printf("[ERROR] %s handler: err=%v", op, err)
	httputil.WriteInternalError(w, message)
}
