package httputil

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"engagement/internal/model"
)

// Error codes returned in the envelope's code field
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = string(model.KindValidation)
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = string(model.KindAuthorization)
	ErrCodeNotFound     = string(model.KindNotFound)
	ErrCodeConflict     = string(model.KindConflict)
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = string(model.KindUnexpected)
)

// InvalidateKeysHeader lists the cache keys a mutation made stale.
const InvalidateKeysHeader = "X-Invalidate-Keys"

// Envelope wraps every response body.
type Envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Pagination *model.Pagination `json:"pagination,omitempty"`
	Error      string            `json:"error,omitempty"`
	Code       string            `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent
			log.Printf("[HTTP] Encode response failed: %v", err)
		}
	}
}

// WriteData writes {"success": true, "data": data}.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WritePage writes a list with its pagination block beside data.
func WritePage[T any](w http.ResponseWriter, result *model.PageResult[T]) {
	p := result.Pagination
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: result.Items, Pagination: &p})
}

// WriteError writes {"success": false, "error": message, "code": code}.
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: message, Code: code})
}

// SetInvalidateKeys advertises the stale cache keys of a mutation.
func SetInvalidateKeys(w http.ResponseWriter, keys []string) {
	if len(keys) == 0 {
		return
	}
	w.Header().Set(InvalidateKeysHeader, strings.Join(keys, ","))
}

// WriteKnownError writes the status for a domain error and reports whether
// err was one. Unknown errors are left to the caller.
func WriteKnownError(w http.ResponseWriter, err error) bool {
	kind := model.KindOf(err)
	var status int
	switch kind {
	case model.KindValidation:
		status = http.StatusBadRequest
	case model.KindNotFound:
		status = http.StatusNotFound
	case model.KindAuthorization:
		status = http.StatusForbidden
	case model.KindConflict:
		status = http.StatusConflict
	default:
		return false
	}
	WriteError(w, status, string(kind), err.Error())
	return true
}

// Common error response helpers

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// WriteUnauthorized writes a 401 Unauthorized error
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// WriteUnauthorizedWithCode writes a 401 Unauthorized error with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

// WriteForbidden writes a 403 Forbidden error
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// WriteNotFound writes a 404 Not Found error
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// WriteTooManyRequests writes a 429 error
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, ErrCodeRateLimited, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}
