package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"blockvault/internal/domain"
)

// UpsertShare inserts the grant, replacing the key material, note, expiry
// and snapshot of any existing grant for the same (file, owner, recipient).
// The stored row keeps its original id and created_at on replace.
func (s *Store) UpsertShare(ctx context.Context, sh domain.Share) (domain.Share, error) {
	row := shareToRow(sh)
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (file_id, owner, recipient) DO UPDATE").
		Set("encrypted_key = EXCLUDED.encrypted_key").
		Set("note = EXCLUDED.note").
		Set("updated_at = EXCLUDED.updated_at").
		Set("expires_at = EXCLUDED.expires_at").
		Set("file_name = EXCLUDED.file_name").
		Set("file_size = EXCLUDED.file_size").
		Set("sha256 = EXCLUDED.sha256").
		Set("cid = EXCLUDED.cid").
		Exec(ctx)
	if err != nil {
		return domain.Share{}, err
	}
	stored, ok, err := s.FindShare(ctx, sh.FileID, sh.Recipient)
	if err != nil {
		return domain.Share{}, err
	}
	if !ok {
		return domain.Share{}, domain.ErrNotFound
	}
	return stored, nil
}

func (s *Store) GetShare(ctx context.Context, id string) (domain.Share, bool, error) {
	var row shareRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Share{}, false, nil
	}
	if err != nil {
		return domain.Share{}, false, err
	}
	return row.toDomain(), true, nil
}

func (s *Store) ListIncoming(ctx context.Context, recipient domain.Address) ([]domain.Share, error) {
	return s.listShares(ctx, "recipient", recipient)
}

func (s *Store) ListOutgoing(ctx context.Context, owner domain.Address) ([]domain.Share, error) {
	return s.listShares(ctx, "owner", owner)
}

func (s *Store) listShares(ctx context.Context, column string, addr domain.Address) ([]domain.Share, error) {
	var rows []shareRow
	err := s.db.NewSelect().Model(&rows).
		Where("? = ?", bun.Ident(column), addr.String()).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Share, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (s *Store) FindShare(ctx context.Context, fileID string, recipient domain.Address) (domain.Share, bool, error) {
	var row shareRow
	err := s.db.NewSelect().Model(&row).
		Where("file_id = ?", fileID).
		Where("recipient = ?", recipient.String()).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Share{}, false, nil
	}
	if err != nil {
		return domain.Share{}, false, err
	}
	return row.toDomain(), true, nil
}

func (s *Store) DeleteShare(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*shareRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteSharesFor removes grants on a file, all of them when recipient is
// empty. Returns the number of rows removed.
func (s *Store) DeleteSharesFor(ctx context.Context, fileID string, recipient domain.Address) (int, error) {
	q := s.db.NewDelete().Model((*shareRow)(nil)).Where("file_id = ?", fileID)
	if recipient != "" {
		q = q.Where("recipient = ?", recipient.String())
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
