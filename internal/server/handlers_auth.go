package server

import (
	"net/http"

	"blockvault/internal/crypto"
)

func (s *Server) handleGetNonce(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	addr, nonce, message, err := s.auth.Challenge(r.Context(), req.Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"address": addr.String(),
		"nonce":   nonce,
		"message": message,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address   string `json:"address"`
		Signature string `json:"signature"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	token, user, err := s.auth.Login(r.Context(), req.Address, req.Signature)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"address": user.Address,
		"role":    user.Role.String(),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r)
	respondJSON(w, http.StatusOK, map[string]any{
		"address":    u.Address,
		"role":       u.Role.String(),
		"role_value": int(u.Role),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, userFrom(r))
}

// handlePutProfile registers the caller's RSA sharing public key.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SharingKey string `json:"sharing_pubkey"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := crypto.ParsePublicKeyPEM([]byte(req.SharingKey)); err != nil {
		respondError(w, http.StatusBadRequest, "sharing_pubkey must be a PEM RSA public key")
		return
	}
	u := userFrom(r)
	if err := s.auth.SetSharingKey(r.Context(), u.Address, req.SharingKey); err != nil {
		respondServiceError(w, err)
		return
	}
	u.SharingKey = req.SharingKey
	respondJSON(w, http.StatusOK, u)
}
