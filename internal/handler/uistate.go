package handler

import (
	"net/http"

	"engagement/internal/httputil"
	"engagement/internal/uistate"
)

type UIStateHandler struct {
	states *uistate.Container
}

func NewUIStateHandler(states *uistate.Container) *UIStateHandler {
	return &UIStateHandler{states: states}
}

// Get handles GET /me/ui-state
func (h *UIStateHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := h.states.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err, "GetUIState", "Failed to load UI state")
		return
	}
	httputil.WriteData(w, http.StatusOK, state)
}

// Update handles PUT /me/ui-state with a partial body:
// {"theme": "dark", "modals": {"share": true}}
func (h *UIStateHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var patch uistate.Patch
	if !decodeBody(w, r, &patch) {
		return
	}

	state, err := h.states.Update(r.Context(), userID, patch)
	if err != nil {
		writeError(w, err, "UpdateUIState", "Failed to save UI state")
		return
	}
	httputil.WriteData(w, http.StatusOK, state)
}
