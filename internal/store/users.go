package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"blockvault/internal/domain"
)

// UpsertUser returns the existing account or creates one with the default
// owner role.
func (s *Store) UpsertUser(ctx context.Context, addr domain.Address) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("address = ?", addr.String()).Scan(ctx)
	if err == nil {
		return row.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, err
	}

	row = userRow{
		Address:   addr.String(),
		Role:      int(domain.RoleOwner),
		CreatedAt: time.Now().Unix(),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.User{}, err
	}
	return row.toDomain(), nil
}

func (s *Store) GetUser(ctx context.Context, addr domain.Address) (domain.User, bool, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("address = ?", addr.String()).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return row.toDomain(), true, nil
}

func (s *Store) SetSharingKey(ctx context.Context, addr domain.Address, pemKey string) error {
	res, err := s.db.NewUpdate().Model((*userRow)(nil)).
		Set("sharing_key = ?", pemKey).
		Where("address = ?", addr.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetRole(ctx context.Context, addr domain.Address, role domain.Role) error {
	res, err := s.db.NewUpdate().Model((*userRow)(nil)).
		Set("role = ?", int(role)).
		Where("address = ?", addr.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
