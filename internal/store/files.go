package store

import (
	"context"
	"database/sql"
	"errors"

	"blockvault/internal/domain"
)

func (s *Store) InsertFile(ctx context.Context, f domain.File) error {
	row := fileToRow(f)
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	return err
}

func (s *Store) GetFile(ctx context.Context, id string) (domain.File, bool, error) {
	var row fileRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.File{}, false, nil
	}
	if err != nil {
		return domain.File{}, false, err
	}
	return row.toDomain(), true, nil
}

// ListFiles returns up to limit of the owner's files with created_at after
// the cursor, oldest first.
func (s *Store) ListFiles(ctx context.Context, owner domain.Address, after int64, limit int) ([]domain.File, error) {
	var rows []fileRow
	err := s.db.NewSelect().Model(&rows).
		Where("owner = ?", owner.String()).
		Where("created_at > ?", after).
		OrderExpr("created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.File, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// DeleteFile removes the record if owner holds it. Returns whether a row
// was deleted.
func (s *Store) DeleteFile(ctx context.Context, id string, owner domain.Address) (bool, error) {
	res, err := s.db.NewDelete().Model((*fileRow)(nil)).
		Where("id = ?", id).
		Where("owner = ?", owner.String()).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
