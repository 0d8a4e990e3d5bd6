package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"taskflow/backend/authz"
	"taskflow/backend/logging"
	"taskflow/backend/middleware"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError is the single place core outcomes become HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, authz.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, authz.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, authz.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, authz.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// identity pulls the authenticated caller out of the request context. The
// auth middleware guarantees it is present on protected routes.
func identity(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
	}
	return id, ok
}
