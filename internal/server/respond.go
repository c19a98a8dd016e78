package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"blockvault/internal/auth"
	"blockvault/internal/domain"
	"blockvault/internal/services/legal"
	"blockvault/internal/services/vault"
	"blockvault/internal/summarize"
	"blockvault/internal/wallet"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrShareExpired):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrBlobMissing):
		respondError(w, http.StatusGone, err.Error())
	case errors.Is(err, auth.ErrBadToken),
		errors.Is(err, auth.ErrNoNonce),
		errors.Is(err, auth.ErrNonceExpired),
		errors.Is(err, auth.ErrSignatureMismatch):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrBadKey),
		errors.Is(err, domain.ErrNoSharingKey),
		errors.Is(err, domain.ErrSelfShare),
		errors.Is(err, vault.ErrNoteTooLong),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, wallet.ErrInvalidSignature),
		errors.Is(err, legal.ErrBadStatus),
		errors.Is(err, legal.ErrEmptyContent),
		errors.Is(err, summarize.ErrEmptyInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 10<<20))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
