package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/woofi-pets/donation-server/pkg/data/donation"
	"github.com/woofi-pets/donation-server/pkg/database/query"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres donation.Store
func New(db *sql.DB) donation.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements donation.Store.Save
func (s *store) Save(ctx context.Context, record *donation.Record) error {
	obj, err := toModel(record)
	if err != nil {
		return err
	}

	if err := obj.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(obj)
	res.CopyTo(record)

	return nil
}

// Get implements donation.Store.Get
func (s *store) Get(ctx context.Context, subjectID string) (*donation.Record, error) {
	obj, err := dbGet(ctx, s.db, subjectID)
	if err != nil {
		return nil, err
	}
	return fromModel(obj), nil
}

// GetTopBySubject implements donation.Store.GetTopBySubject
func (s *store) GetTopBySubject(ctx context.Context, limit uint64) ([]*donation.Record, error) {
	models, err := dbGetTopBySubject(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*donation.Record, len(models))
	for i, obj := range models {
		res[i] = fromModel(obj)
	}
	return res, nil
}

// GetAllByMint implements donation.Store.GetAllByMint
func (s *store) GetAllByMint(ctx context.Context, mint string, opts ...query.Option) ([]*donation.Record, error) {
	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	models, err := dbGetAllByMint(ctx, s.db, mint, req.Cursor, req.Limit, req.SortBy)
	if err != nil {
		return nil, err
	}

	res := make([]*donation.Record, len(models))
	for i, obj := range models {
		res[i] = fromModel(obj)
	}
	return res, nil
}

// GetAllByLastUpdated implements donation.Store.GetAllByLastUpdated
func (s *store) GetAllByLastUpdated(ctx context.Context, ordering query.Ordering, limit uint64) ([]*donation.Record, error) {
	models, err := dbGetAllByLastUpdated(ctx, s.db, ordering, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*donation.Record, len(models))
	for i, obj := range models {
		res[i] = fromModel(obj)
	}
	return res, nil
}
