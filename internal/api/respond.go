package api

import (
	"context"
	"encoding/json"
	"net/http"

	"statflow/domain/core"
	"statflow/internal/errors"
)

type ctxKey string

const ownerKey ctxKey = "owner"

// requireOwner extracts the authenticated caller's identity. Authentication
// itself happens upstream; this layer only consumes the established owner.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get("X-Owner-ID")
		if owner == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "missing caller identity",
			})
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey, core.OwnerID(owner))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFrom(r *http.Request) core.OwnerID {
	owner, _ := r.Context().Value(ownerKey).(core.OwnerID)
	return owner
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the application error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeMalformedInput, errors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeServiceUnavailable:
		status = http.StatusServiceUnavailable
	case errors.CodeTimeout:
		status = http.StatusGatewayTimeout
	}
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
		"code":    errors.GetCode(err),
	})
}
