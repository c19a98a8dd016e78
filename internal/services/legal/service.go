package legal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockvault/internal/domain"
	"blockvault/internal/redact"
	"blockvault/internal/wallet"
)

var (
	// ErrBadStatus is returned when a workflow transition does not apply
	// to the document's current status.
	ErrBadStatus = errors.New("operation not valid for document status")
	// ErrEmptyContent is returned when there is nothing to notarize.
	ErrEmptyContent = errors.New("empty document content")
)

// Service owns legal document records and their workflow transitions.
type Service struct {
	docs   domain.DocumentStore
	files  domain.FileStore
	shares domain.ShareStore
	audit  domain.AuditStore
	notary domain.Notary
	log    *zap.Logger
	now    func() time.Time
}

func NewService(docs domain.DocumentStore, files domain.FileStore, shares domain.ShareStore,
	audit domain.AuditStore, notary domain.Notary, log *zap.Logger) *Service {
	return &Service{
		docs:   docs,
		files:  files,
		shares: shares,
		audit:  audit,
		notary: notary,
		log:    log,
		now:    time.Now,
	}
}

// Notarize records a document with its SHA-256 digest and a proof bound to
// it. fileID optionally links the document to a vault file of the owner.
func (s *Service) Notarize(ctx context.Context, owner domain.Address, title string, content []byte, fileID string) (domain.LegalDocument, error) {
	if len(content) == 0 {
		return domain.LegalDocument{}, ErrEmptyContent
	}
	if fileID != "" {
		f, ok, err := s.files.GetFile(ctx, fileID)
		if err != nil {
			return domain.LegalDocument{}, err
		}
		if !ok || !f.Owner.Equal(owner) {
			return domain.LegalDocument{}, domain.ErrNotFound
		}
	}

	digest := sha256.Sum256(content)
	proof, err := s.notary.ProveDigest(digest[:])
	if err != nil {
		return domain.LegalDocument{}, fmt.Errorf("notarize: %w", err)
	}

	doc := domain.LegalDocument{
		ID:        uuid.NewString(),
		Owner:     owner,
		FileID:    fileID,
		Title:     title,
		Digest:    hex.EncodeToString(digest[:]),
		Status:    domain.StatusNotarized,
		Proof:     &proof,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.docs.InsertDocument(ctx, doc); err != nil {
		return domain.LegalDocument{}, err
	}
	s.auditLog(ctx, owner, "notarize_document", "document: "+doc.ID)
	return doc, nil
}

// Get returns a document visible to the caller: its owner, its designated
// signer, or an admin.
func (s *Service) Get(ctx context.Context, caller domain.User, id string) (domain.LegalDocument, error) {
	doc, ok, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.LegalDocument{}, err
	}
	if !ok {
		return domain.LegalDocument{}, domain.ErrNotFound
	}
	visible := doc.Owner.Equal(caller.Address) ||
		(doc.Signer != "" && doc.Signer.Equal(caller.Address)) ||
		caller.Role == domain.RoleAdmin
	if !visible {
		return domain.LegalDocument{}, domain.ErrNotFound
	}
	return doc, nil
}

// List returns the owner's documents, newest first.
func (s *Service) List(ctx context.Context, owner domain.Address) ([]domain.LegalDocument, error) {
	return s.docs.ListDocuments(ctx, owner)
}

// Verify re-checks the stored proof against the recorded digest.
func (s *Service) Verify(ctx context.Context, caller domain.User, id string) (domain.LegalDocument, error) {
	doc, err := s.Get(ctx, caller, id)
	if err != nil {
		return domain.LegalDocument{}, err
	}
	digest, err := hex.DecodeString(doc.Digest)
	if err != nil {
		return domain.LegalDocument{}, fmt.Errorf("stored digest corrupt: %w", err)
	}
	if err := s.notary.VerifyDigest(doc.Proof, digest); err != nil {
		return domain.LegalDocument{}, err
	}
	return doc, nil
}

// RequestSignature moves the document into signature_requested for the
// given signer. Owner only; a signed document cannot be re-requested.
func (s *Service) RequestSignature(ctx context.Context, owner domain.Address, id, signerRaw string) (domain.LegalDocument, error) {
	doc, err := s.ownedDocument(ctx, owner, id)
	if err != nil {
		return domain.LegalDocument{}, err
	}
	if doc.Status == domain.StatusSigned {
		return domain.LegalDocument{}, ErrBadStatus
	}
	signer, err := wallet.ChecksumAddress(signerRaw)
	if err != nil {
		return domain.LegalDocument{}, err
	}

	doc.Status = domain.StatusSignatureRequested
	doc.Signer = signer
	doc.RequestedAt = s.now().UnixMilli()
	if err := s.docs.UpdateDocument(ctx, doc); err != nil {
		return domain.LegalDocument{}, err
	}
	s.auditLog(ctx, owner, "esign_request", fmt.Sprintf("document: %s signer: %s", doc.ID, signer))
	return doc, nil
}

// CancelSignature withdraws a pending signature request.
func (s *Service) CancelSignature(ctx context.Context, owner domain.Address, id string) (domain.LegalDocument, error) {
	doc, err := s.ownedDocument(ctx, owner, id)
	if err != nil {
		return domain.LegalDocument{}, err
	}
	if doc.Status != domain.StatusSignatureRequested {
		return domain.LegalDocument{}, ErrBadStatus
	}

	doc.Status = domain.StatusNotarized
	doc.Signer = ""
	doc.RequestedAt = 0
	if err := s.docs.UpdateDocument(ctx, doc); err != nil {
		return domain.LegalDocument{}, err
	}
	s.auditLog(ctx, owner, "esign_cancel", "document: "+doc.ID)
	return doc, nil
}

// RevokeAccess drops any shares of the document's backing file granted to
// the address and records the revocation. Returns the revocation and the
// number of shares removed.
func (s *Service) RevokeAccess(ctx context.Context, owner domain.Address, id, addressRaw string) (domain.Revocation, int, error) {
	doc, err := s.ownedDocument(ctx, owner, id)
	if err != nil {
		return domain.Revocation{}, 0, err
	}
	addr, err := wallet.ChecksumAddress(addressRaw)
	if err != nil {
		return domain.Revocation{}, 0, err
	}

	removed := 0
	if doc.FileID != "" {
		if removed, err = s.shares.DeleteSharesFor(ctx, doc.FileID, addr); err != nil {
			return domain.Revocation{}, 0, err
		}
	}
	rev := domain.Revocation{
		DocumentID: doc.ID,
		Address:    addr,
		RevokedAt:  s.now().UnixMilli(),
	}
	s.auditLog(ctx, owner, "revoke_access",
		fmt.Sprintf("document: %s address: %s shares_removed: %d", doc.ID, addr, removed))
	return rev, removed, nil
}

// Redact scans content for PII and returns the redacted text with the
// replaced spans. Nothing is stored.
func (s *Service) Redact(content string) domain.RedactionResult {
	return redact.Apply(content)
}

func (s *Service) ownedDocument(ctx context.Context, owner domain.Address, id string) (domain.LegalDocument, error) {
	doc, ok, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return domain.LegalDocument{}, err
	}
	if !ok || !doc.Owner.Equal(owner) {
		return domain.LegalDocument{}, domain.ErrNotFound
	}
	return doc, nil
}

// auditLog is best-effort; losing a trail entry never fails the operation.
func (s *Service) auditLog(ctx context.Context, actor domain.Address, action, details string) {
	e := domain.AuditEntry{Actor: actor, Action: action, Details: details, At: s.now().UnixMilli()}
	if err := s.audit.AppendAudit(ctx, e); err != nil {
		s.log.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}
