package domain

import "context"

// UserStore persists wallet accounts and their sharing keys.
type UserStore interface {
	// UpsertUser creates the account on first login and returns it.
	UpsertUser(ctx context.Context, addr Address) (User, error)
	GetUser(ctx context.Context, addr Address) (User, bool, error)
	SetSharingKey(ctx context.Context, addr Address, pemKey string) error
	SetRole(ctx context.Context, addr Address, role Role) error
}

// NonceStore holds single-use login challenges.
type NonceStore interface {
	PutNonce(ctx context.Context, n Nonce) error
	GetNonce(ctx context.Context, addr Address) (Nonce, bool, error)
	DeleteNonce(ctx context.Context, addr Address) error
}

// FileStore persists file metadata records.
type FileStore interface {
	InsertFile(ctx context.Context, f File) error
	GetFile(ctx context.Context, id string) (File, bool, error)
	// ListFiles returns up to limit records for owner with CreatedAt
	// strictly greater than after, ordered by CreatedAt ascending.
	ListFiles(ctx context.Context, owner Address, after int64, limit int) ([]File, error)
	DeleteFile(ctx context.Context, id string, owner Address) (bool, error)
}

// ShareStore persists share grants.
type ShareStore interface {
	// UpsertShare replaces any existing grant for the same
	// (file, owner, recipient) triple and returns the stored row.
	UpsertShare(ctx context.Context, s Share) (Share, error)
	GetShare(ctx context.Context, id string) (Share, bool, error)
	ListIncoming(ctx context.Context, recipient Address) ([]Share, error)
	ListOutgoing(ctx context.Context, owner Address) ([]Share, error)
	FindShare(ctx context.Context, fileID string, recipient Address) (Share, bool, error)
	DeleteShare(ctx context.Context, id string) error
	// DeleteSharesFor removes grants on a file. An empty recipient removes
	// every grant; otherwise only that recipient's. Returns rows removed.
	DeleteSharesFor(ctx context.Context, fileID string, recipient Address) (int, error)
}

// DocumentStore persists legal document records.
type DocumentStore interface {
	InsertDocument(ctx context.Context, d LegalDocument) error
	GetDocument(ctx context.Context, id string) (LegalDocument, bool, error)
	ListDocuments(ctx context.Context, owner Address) ([]LegalDocument, error)
	UpdateDocument(ctx context.Context, d LegalDocument) error
}

// AuditStore records sensitive operations append-only.
type AuditStore interface {
	AppendAudit(ctx context.Context, e AuditEntry) error
}

// BlobStore holds encrypted file content addressed by blob name.
type BlobStore interface {
	WriteBlob(name string, data []byte) error
	ReadBlob(name string) ([]byte, error)
	DeleteBlob(name string) error
	HasBlob(name string) bool
}

// Pinner is the optional content-addressed replica (IPFS). Implementations
// must be safe to call when pinning is disabled.
type Pinner interface {
	// Add pins data and returns its CID, or "" when pinning is disabled.
	Add(ctx context.Context, name string, data []byte) (string, error)
	Cat(ctx context.Context, cid string) ([]byte, error)
	Unpin(ctx context.Context, cid string) error
	GatewayURL(cid string) string
}

// Notary produces and checks digest-bound proofs for legal documents.
type Notary interface {
	ProveDigest(digest []byte) (Proof, error)
	VerifyDigest(p *Proof, digest []byte) error
}
