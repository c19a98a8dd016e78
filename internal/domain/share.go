package domain

// Share grants a recipient access to a file. The file passphrase is wrapped
// with the recipient's RSA public key; the server never sees it in clear.
type Share struct {
	ID           string  `json:"share_id"`
	FileID       string  `json:"file_id"`
	Owner        Address `json:"owner"`
	Recipient    Address `json:"recipient"`
	EncryptedKey string  `json:"encrypted_key,omitempty"` // base64 RSA-OAEP ciphertext
	Note         string  `json:"note,omitempty"`
	CreatedAt    int64   `json:"created_at"`           // unix milliseconds
	UpdatedAt    int64   `json:"updated_at,omitempty"` // unix milliseconds
	ExpiresAt    int64   `json:"expires_at,omitempty"` // unix milliseconds, 0 = never

	// Snapshot of the file at share time, so listings do not need a join.
	FileName string `json:"file_name,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
	CID      string `json:"cid,omitempty"`
}

// Expired reports whether the share has lapsed at the given time.
func (s Share) Expired(nowMillis int64) bool {
	return s.ExpiresAt != 0 && nowMillis > s.ExpiresAt
}

// MaxShareNoteLength bounds the free-text note attached to a share.
const MaxShareNoteLength = 280
