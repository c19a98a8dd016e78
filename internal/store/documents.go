package store

import (
	"context"
	"database/sql"
	"errors"

	"blockvault/internal/domain"
)

func (s *Store) InsertDocument(ctx context.Context, d domain.LegalDocument) error {
	row, err := documentToRow(d)
	if err != nil {
		return err
	}
	_, err = s.db.NewInsert().Model(&row).Exec(ctx)
	return err
}

func (s *Store) GetDocument(ctx context.Context, id string) (domain.LegalDocument, bool, error) {
	var row documentRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LegalDocument{}, false, nil
	}
	if err != nil {
		return domain.LegalDocument{}, false, err
	}
	d, err := row.toDomain()
	return d, err == nil, err
}

func (s *Store) ListDocuments(ctx context.Context, owner domain.Address) ([]domain.LegalDocument, error) {
	var rows []documentRow
	err := s.db.NewSelect().Model(&rows).
		Where("owner = ?", owner.String()).
		OrderExpr("created_at DESC, id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.LegalDocument, len(rows))
	for i, r := range rows {
		if out[i], err = r.toDomain(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) UpdateDocument(ctx context.Context, d domain.LegalDocument) error {
	row, err := documentToRow(d)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AppendAudit records an audit trail entry.
func (s *Store) AppendAudit(ctx context.Context, e domain.AuditEntry) error {
	row := auditRow{Actor: e.Actor.String(), Action: e.Action, Details: e.Details, At: e.At}
	_, err := s.db.NewInsert().Model(&row).Exec(ctx)
	return err
}
