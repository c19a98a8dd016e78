package store

import (
	"encoding/json"

	"github.com/uptrace/bun"

	"blockvault/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`
	Address       string `bun:"address,pk"`
	Role          int    `bun:"role,notnull"`
	SharingKey    string `bun:"sharing_key"`
	CreatedAt     int64  `bun:"created_at,notnull"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		Address:    domain.Address(r.Address),
		Role:       domain.Role(r.Role),
		SharingKey: r.SharingKey,
		CreatedAt:  r.CreatedAt,
	}
}

type nonceRow struct {
	bun.BaseModel `bun:"table:nonces"`
	Address       string `bun:"address,pk"`
	Value         string `bun:"value,notnull"`
	CreatedAt     int64  `bun:"created_at,notnull"`
}

type fileRow struct {
	bun.BaseModel `bun:"table:files"`
	ID            string `bun:"id,pk"`
	Owner         string `bun:"owner,notnull"`
	Name          string `bun:"name"`
	EncName       string `bun:"enc_name,notnull"`
	Size          int64  `bun:"size,notnull"`
	CreatedAt     int64  `bun:"created_at,notnull"`
	AAD           string `bun:"aad"`
	SHA256        string `bun:"sha256"`
	CID           string `bun:"cid"`
}

func fileToRow(f domain.File) fileRow {
	return fileRow{
		ID:        f.ID,
		Owner:     f.Owner.String(),
		Name:      f.Name,
		EncName:   f.EncName,
		Size:      f.Size,
		CreatedAt: f.CreatedAt,
		AAD:       f.AAD,
		SHA256:    f.SHA256,
		CID:       f.CID,
	}
}

func (r fileRow) toDomain() domain.File {
	return domain.File{
		ID:        r.ID,
		Owner:     domain.Address(r.Owner),
		Name:      r.Name,
		EncName:   r.EncName,
		Size:      r.Size,
		CreatedAt: r.CreatedAt,
		AAD:       r.AAD,
		SHA256:    r.SHA256,
		CID:       r.CID,
	}
}

type shareRow struct {
	bun.BaseModel `bun:"table:shares"`
	ID            string `bun:"id,pk"`
	FileID        string `bun:"file_id,notnull"`
	Owner         string `bun:"owner,notnull"`
	Recipient     string `bun:"recipient,notnull"`
	EncryptedKey  string `bun:"encrypted_key"`
	Note          string `bun:"note"`
	CreatedAt     int64  `bun:"created_at,notnull"`
	UpdatedAt     int64  `bun:"updated_at"`
	ExpiresAt     int64  `bun:"expires_at"`
	FileName      string `bun:"file_name"`
	FileSize      int64  `bun:"file_size"`
	SHA256        string `bun:"sha256"`
	CID           string `bun:"cid"`
}

func shareToRow(s domain.Share) shareRow {
	return shareRow{
		ID:           s.ID,
		FileID:       s.FileID,
		Owner:        s.Owner.String(),
		Recipient:    s.Recipient.String(),
		EncryptedKey: s.EncryptedKey,
		Note:         s.Note,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		ExpiresAt:    s.ExpiresAt,
		FileName:     s.FileName,
		FileSize:     s.FileSize,
		SHA256:       s.SHA256,
		CID:          s.CID,
	}
}

func (r shareRow) toDomain() domain.Share {
	return domain.Share{
		ID:           r.ID,
		FileID:       r.FileID,
		Owner:        domain.Address(r.Owner),
		Recipient:    domain.Address(r.Recipient),
		EncryptedKey: r.EncryptedKey,
		Note:         r.Note,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ExpiresAt:    r.ExpiresAt,
		FileName:     r.FileName,
		FileSize:     r.FileSize,
		SHA256:       r.SHA256,
		CID:          r.CID,
	}
}

type documentRow struct {
	bun.BaseModel `bun:"table:documents"`
	ID            string `bun:"id,pk"`
	Owner         string `bun:"owner,notnull"`
	FileID        string `bun:"file_id"`
	Title         string `bun:"title"`
	Digest        string `bun:"digest,notnull"`
	Status        string `bun:"status,notnull"`
	ProofJSON     []byte `bun:"proof_json"`
	CreatedAt     int64  `bun:"created_at,notnull"`
	Signer        string `bun:"signer"`
	RequestedAt   int64  `bun:"requested_at"`
	SignedAt      int64  `bun:"signed_at"`
}

func documentToRow(d domain.LegalDocument) (documentRow, error) {
	r := documentRow{
		ID:          d.ID,
		Owner:       d.Owner.String(),
		FileID:      d.FileID,
		Title:       d.Title,
		Digest:      d.Digest,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
		Signer:      d.Signer.String(),
		RequestedAt: d.RequestedAt,
		SignedAt:    d.SignedAt,
	}
	if d.Proof != nil {
		raw, err := json.Marshal(d.Proof)
		if err != nil {
			return documentRow{}, err
		}
		r.ProofJSON = raw
	}
	return r, nil
}

func (r documentRow) toDomain() (domain.LegalDocument, error) {
	d := domain.LegalDocument{
		ID:          r.ID,
		Owner:       domain.Address(r.Owner),
		FileID:      r.FileID,
		Title:       r.Title,
		Digest:      r.Digest,
		Status:      domain.DocumentStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		Signer:      domain.Address(r.Signer),
		RequestedAt: r.RequestedAt,
		SignedAt:    r.SignedAt,
	}
	if len(r.ProofJSON) > 0 {
		var p domain.Proof
		if err := json.Unmarshal(r.ProofJSON, &p); err != nil {
			return domain.LegalDocument{}, err
		}
		d.Proof = &p
	}
	return d, nil
}

type auditRow struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Actor         string `bun:"actor,notnull"`
	Action        string `bun:"action,notnull"`
	Details       string `bun:"details"`
	At            int64  `bun:"at,notnull"`
}
