package store

import (
	"context"
	"database/sql"
	"errors"

	"blockvault/internal/domain"
)

// PutNonce stores the challenge, replacing any pending one for the address.
func (s *Store) PutNonce(ctx context.Context, n domain.Nonce) error {
	row := nonceRow{Address: n.Address.String(), Value: n.Value, CreatedAt: n.CreatedAt}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (address) DO UPDATE").
		Set("value = EXCLUDED.value, created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

func (s *Store) GetNonce(ctx context.Context, addr domain.Address) (domain.Nonce, bool, error) {
	var row nonceRow
	err := s.db.NewSelect().Model(&row).Where("address = ?", addr.String()).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Nonce{}, false, nil
	}
	if err != nil {
		return domain.Nonce{}, false, err
	}
	n := domain.Nonce{Address: domain.Address(row.Address), Value: row.Value, CreatedAt: row.CreatedAt}
	return n, true, nil
}

func (s *Store) DeleteNonce(ctx context.Context, addr domain.Address) error {
	_, err := s.db.NewDelete().Model((*nonceRow)(nil)).
		Where("address = ?", addr.String()).
		Exec(ctx)
	return err
}
