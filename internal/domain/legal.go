package domain

// DocumentStatus tracks a legal document through the notarization and
// e-signature workflow.
type DocumentStatus string

const (
	StatusNotarized          DocumentStatus = "notarized"
	StatusSignatureRequested DocumentStatus = "signature_requested"
	StatusSigned             DocumentStatus = "signed"
)

// LegalDocument is a notarized document record. Digest is the SHA-256 of the
// document content; Proof attests knowledge of the content behind it.
type LegalDocument struct {
	ID        string         `json:"document_id"`
	Owner     Address        `json:"owner"`
	FileID    string         `json:"file_id,omitempty"` // backing vault file, if any
	Title     string         `json:"title"`
	Digest    string         `json:"digest"` // hex SHA-256
	Status    DocumentStatus `json:"status"`
	Proof     *Proof         `json:"proof,omitempty"`
	CreatedAt int64          `json:"created_at"` // unix milliseconds

	// E-signature request state.
	Signer      Address `json:"signer,omitempty"`
	RequestedAt int64   `json:"requested_at,omitempty"`
	SignedAt    int64   `json:"signed_at,omitempty"`
}

// Revocation records access removal from a document or its backing file.
type Revocation struct {
	DocumentID string  `json:"document_id"`
	Address    Address `json:"address"`
	RevokedAt  int64   `json:"revoked_at"` // unix milliseconds
}

// AuditEntry is an append-only trace of a sensitive operation.
type AuditEntry struct {
	ID      int64   `json:"id,omitempty"`
	Actor   Address `json:"actor"`
	Action  string  `json:"action"`
	Details string  `json:"details,omitempty"`
	At      int64   `json:"at"` // unix milliseconds
}
