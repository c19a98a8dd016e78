package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"blockvault/internal/domain"
)

const maxUploadBytes = 64 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	key := r.FormValue("key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "missing key")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer part.Close()
	content, err := io.ReadAll(part)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable file")
		return
	}
	if len(content) == 0 {
		respondError(w, http.StatusBadRequest, "empty file content")
		return
	}

	f, err := s.vault.Upload(r.Context(), userFrom(r).Address, header.Filename, content, key, r.FormValue("aad"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, f)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	after, _ := strconv.ParseInt(q.Get("after"), 10, 64)

	page, err := s.vault.List(r.Context(), userFrom(r).Address, after, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if page.Items == nil {
		page.Items = []domain.File{}
	}
	respondJSON(w, http.StatusOK, page)
}

// fileKey pulls the decryption passphrase from the query or header.
func fileKey(r *http.Request) string {
	if k := r.URL.Query().Get("key"); k != "" {
		return k
	}
	return r.Header.Get("X-File-Key")
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	key := fileKey(r)
	if key == "" {
		respondError(w, http.StatusBadRequest, "missing key (use ?key= or X-File-Key)")
		return
	}
	f, content, err := s.vault.Download(r.Context(), userFrom(r).Address, r.PathValue("id"), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": f.DisplayName()}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.Header().Set("X-File-Sha256", f.SHA256)
	_, _ = w.Write(content)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.Delete(r.Context(), userFrom(r).Address, r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleVerifyFile(w http.ResponseWriter, r *http.Request) {
	st, err := s.vault.Verify(r.Context(), userFrom(r).Address, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string `json:"recipient"`
		Key       string `json:"passphrase"`
		Note      string `json:"note"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "missing passphrase")
		return
	}
	sh, err := s.vault.Share(r.Context(), userFrom(r).Address, r.PathValue("id"),
		req.Recipient, req.Key, req.Note, req.ExpiresAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleIncomingShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.vault.Incoming(r.Context(), userFrom(r).Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if shares == nil {
		shares = []domain.Share{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": shares})
}

func (s *Server) handleOutgoingShares(w http.ResponseWriter, r *http.Request) {
	shares, err := s.vault.Outgoing(r.Context(), userFrom(r).Address)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if shares == nil {
		shares = []domain.Share{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": shares})
}

func (s *Server) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.RevokeShare(r.Context(), userFrom(r), r.PathValue("id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key       string `json:"key"`
		MaxLength int    `json:"max_length"`
		MinLength int    `json:"min_length"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		respondError(w, http.StatusBadRequest, "missing key")
		return
	}
	res, err := s.zkml.SummarizeFile(r.Context(), userFrom(r).Address, r.PathValue("id"),
		req.Key, req.MaxLength, req.MinLength)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
