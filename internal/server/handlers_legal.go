package server

import (
	"net/http"

	"blockvault/internal/domain"
)

func (s *Server) handleNotarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		FileID  string `json:"file_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := s.legal.Notarize(r.Context(), userFrom(r).Address, req.Title, []byte(req.Content), req.FileID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.legal.List(r.Context(), userFrom(r).Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if docs == nil {
		docs = []domain.LegalDocument{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.legal.Get(r.Context(), userFrom(r), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.legal.Verify(r.Context(), userFrom(r), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"document_id": doc.ID,
		"digest":      doc.Digest,
		"valid":       true,
	})
}

func (s *Server) handleRequestSignature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Signer string `json:"signer"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := s.legal.RequestSignature(r.Context(), userFrom(r).Address, r.PathValue("id"), req.Signer)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCancelSignature(w http.ResponseWriter, r *http.Request) {
	doc, err := s.legal.CancelSignature(r.Context(), userFrom(r).Address, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	rev, removed, err := s.legal.RevokeAccess(r.Context(), userFrom(r).Address, r.PathValue("id"), req.Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"revocation":     rev,
		"shares_removed": removed,
	})
}

func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "missing content")
		return
	}
	respondJSON(w, http.StatusOK, s.legal.Redact(req.Content))
}
