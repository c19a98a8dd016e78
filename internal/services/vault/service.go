package vault

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blockvault/internal/crypto"
	"blockvault/internal/domain"
	"blockvault/internal/wallet"
)

// Listing page bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// ErrNoteTooLong is returned when a share note exceeds the allowed length.
var ErrNoteTooLong = errors.New("share note too long")

// Service coordinates metadata, blobs, and the optional IPFS replica.
type Service struct {
	files  domain.FileStore
	shares domain.ShareStore
	users  domain.UserStore
	blobs  domain.BlobStore
	pinner domain.Pinner
	log    *zap.Logger
	now    func() time.Time
}

func NewService(files domain.FileStore, shares domain.ShareStore, users domain.UserStore,
	blobs domain.BlobStore, pinner domain.Pinner, log *zap.Logger) *Service {
	return &Service{
		files:  files,
		shares: shares,
		users:  users,
		blobs:  blobs,
		pinner: pinner,
		log:    log,
		now:    time.Now,
	}
}

// Upload seals content under the caller's passphrase and records the file.
// Pinning to IPFS is best-effort; a pin failure only costs the replica.
func (s *Service) Upload(ctx context.Context, owner domain.Address, name string, content []byte, key, aad string) (domain.File, error) {
	sum := sha256.Sum256(content)
	ct, err := crypto.Seal(key, content, aad)
	if err != nil {
		return domain.File{}, err
	}

	encName := uuid.NewString() + ".enc"
	if err := s.blobs.WriteBlob(encName, ct); err != nil {
		return domain.File{}, err
	}

	cid, err := s.pinner.Add(ctx, encName, ct)
	if err != nil {
		s.log.Warn("ipfs pin failed", zap.String("file", name), zap.Error(err))
		cid = ""
	}

	f := domain.File{
		ID:        uuid.NewString(),
		Owner:     owner,
		Name:      name,
		EncName:   encName,
		Size:      int64(len(content)),
		CreatedAt: s.now().UnixMilli(),
		AAD:       aad,
		SHA256:    hex.EncodeToString(sum[:]),
		CID:       cid,
	}
	if err := s.files.InsertFile(ctx, f); err != nil {
		_ = s.blobs.DeleteBlob(encName)
		return domain.File{}, err
	}
	return f, nil
}

// List returns one page of the owner's files. limit is clamped to
// [1, MaxPageSize]; zero means DefaultPageSize.
func (s *Service) List(ctx context.Context, owner domain.Address, after int64, limit int) (domain.FilePage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	// Fetch one extra record to learn whether another page exists.
	items, err := s.files.ListFiles(ctx, owner, after, limit+1)
	if err != nil {
		return domain.FilePage{}, err
	}
	page := domain.FilePage{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		page.HasMore = true
	}
	// The cursor points past the last returned item even on the final
	// page, so clients can poll for later uploads.
	if n := len(page.Items); n > 0 {
		page.NextAfter = page.Items[n-1].CreatedAt
	}
	return page, nil
}

// Download returns the file record and decrypted content. Owners always
// qualify; anyone else needs an unexpired share. A missing blob is
// re-fetched from IPFS when the record has a CID.
func (s *Service) Download(ctx context.Context, caller domain.Address, fileID, key string) (domain.File, []byte, error) {
	f, err := s.authorize(ctx, caller, fileID)
	if err != nil {
		return domain.File{}, nil, err
	}

	ct, err := s.blobs.ReadBlob(f.EncName)
	if errors.Is(err, domain.ErrBlobMissing) && f.CID != "" {
		ct, err = s.recoverFromIPFS(ctx, f)
	}
	if err != nil {
		return domain.File{}, nil, err
	}

	pt, err := crypto.Open(key, ct, f.AAD)
	if err != nil {
		return domain.File{}, nil, domain.ErrBadKey
	}
	return f, pt, nil
}

// Status reports blob presence and replica location without touching keys.
type Status struct {
	FileID     string `json:"file_id"`
	BlobExists bool   `json:"blob_exists"`
	SHA256     string `json:"sha256"`
	CID        string `json:"cid,omitempty"`
	GatewayURL string `json:"gateway_url,omitempty"`
}

// Verify reports the integrity anchors of a file the caller may access.
func (s *Service) Verify(ctx context.Context, caller domain.Address, fileID string) (Status, error) {
	f, err := s.authorize(ctx, caller, fileID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		FileID:     f.ID,
		BlobExists: s.blobs.HasBlob(f.EncName),
		SHA256:     f.SHA256,
		CID:        f.CID,
		GatewayURL: s.pinner.GatewayURL(f.CID),
	}, nil
}

// Delete removes the record, its blob, its shares, and best-effort the pin.
func (s *Service) Delete(ctx context.Context, owner domain.Address, fileID string) error {
	f, ok, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return err
	}
	if !ok || !f.Owner.Equal(owner) {
		return domain.ErrNotFound
	}

	deleted, err := s.files.DeleteFile(ctx, fileID, f.Owner)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	if _, err := s.shares.DeleteSharesFor(ctx, fileID, ""); err != nil {
		return err
	}
	if err := s.blobs.DeleteBlob(f.EncName); err != nil {
		s.log.Warn("blob delete failed", zap.String("blob", f.EncName), zap.Error(err))
	}
	if f.CID != "" {
		if err := s.pinner.Unpin(ctx, f.CID); err != nil {
			s.log.Warn("ipfs unpin failed", zap.String("cid", f.CID), zap.Error(err))
		}
	}
	return nil
}

// Share wraps the file passphrase for the recipient and upserts the grant.
func (s *Service) Share(ctx context.Context, owner domain.Address, fileID, recipientRaw, key, note string, expiresAt int64) (domain.Share, error) {
	f, ok, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return domain.Share{}, err
	}
	if !ok || !f.Owner.Equal(owner) {
		return domain.Share{}, domain.ErrNotFound
	}
	if len(note) > domain.MaxShareNoteLength {
		return domain.Share{}, ErrNoteTooLong
	}
	recipient, err := wallet.ChecksumAddress(recipientRaw)
	if err != nil {
		return domain.Share{}, err
	}
	if recipient.Equal(owner) {
		return domain.Share{}, domain.ErrSelfShare
	}

	u, ok, err := s.users.GetUser(ctx, recipient)
	if err != nil {
		return domain.Share{}, err
	}
	if !ok || u.SharingKey == "" {
		return domain.Share{}, domain.ErrNoSharingKey
	}
	pub, err := crypto.ParsePublicKeyPEM([]byte(u.SharingKey))
	if err != nil {
		return domain.Share{}, err
	}
	wrapped, err := crypto.WrapKey(pub, []byte(key))
	if err != nil {
		return domain.Share{}, err
	}

	nowMs := s.now().UnixMilli()
	return s.shares.UpsertShare(ctx, domain.Share{
		ID:           uuid.NewString(),
		FileID:       f.ID,
		Owner:        owner,
		Recipient:    recipient,
		EncryptedKey: base64.StdEncoding.EncodeToString(wrapped),
		Note:         note,
		CreatedAt:    nowMs,
		UpdatedAt:    nowMs,
		ExpiresAt:    expiresAt,
		FileName:     f.Name,
		FileSize:     f.Size,
		SHA256:       f.SHA256,
		CID:          f.CID,
	})
}

// Incoming lists unexpired shares granted to the caller.
func (s *Service) Incoming(ctx context.Context, recipient domain.Address) ([]domain.Share, error) {
	all, err := s.shares.ListIncoming(ctx, recipient)
	if err != nil {
		return nil, err
	}
	nowMs := s.now().UnixMilli()
	live := all[:0]
	for _, sh := range all {
		if !sh.Expired(nowMs) {
			live = append(live, sh)
		}
	}
	return live, nil
}

// Outgoing lists the owner's grants with the wrapped key withheld.
func (s *Service) Outgoing(ctx context.Context, owner domain.Address) ([]domain.Share, error) {
	out, err := s.shares.ListOutgoing(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].EncryptedKey = ""
	}
	return out, nil
}

// RevokeShare deletes a grant. The file owner and the recipient may revoke
// their own; admins may revoke any.
func (s *Service) RevokeShare(ctx context.Context, caller domain.User, shareID string) error {
	sh, ok, err := s.shares.GetShare(ctx, shareID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	allowed := sh.Owner.Equal(caller.Address) ||
		sh.Recipient.Equal(caller.Address) ||
		caller.Role == domain.RoleAdmin
	if !allowed {
		return domain.ErrForbidden
	}
	return s.shares.DeleteShare(ctx, shareID)
}

// authorize resolves fileID for caller: the owner, or a recipient holding
// an unexpired share. Files the caller may not see read as absent.
func (s *Service) authorize(ctx context.Context, caller domain.Address, fileID string) (domain.File, error) {
	f, ok, err := s.files.GetFile(ctx, fileID)
	if err != nil {
		return domain.File{}, err
	}
	if !ok {
		return domain.File{}, domain.ErrNotFound
	}
	if f.Owner.Equal(caller) {
		return f, nil
	}
	sh, ok, err := s.shares.FindShare(ctx, fileID, caller)
	if err != nil {
		return domain.File{}, err
	}
	if !ok {
		return domain.File{}, domain.ErrNotFound
	}
	if sh.Expired(s.now().UnixMilli()) {
		return domain.File{}, domain.ErrShareExpired
	}
	return f, nil
}

// recoverFromIPFS pulls the encrypted blob back from the replica and
// re-materializes it locally.
func (s *Service) recoverFromIPFS(ctx context.Context, f domain.File) ([]byte, error) {
	ct, err := s.pinner.Cat(ctx, f.CID)
	if err != nil {
		s.log.Warn("ipfs recovery failed", zap.String("cid", f.CID), zap.Error(err))
		return nil, domain.ErrBlobMissing
	}
	if err := s.blobs.WriteBlob(f.EncName, ct); err != nil {
		s.log.Warn("blob rewrite failed", zap.String("blob", f.EncName), zap.Error(err))
	}
	return ct, nil
}
