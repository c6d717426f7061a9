package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/woofi-pets/donation-server/pkg/data/donation"
	pgutil "github.com/woofi-pets/donation-server/pkg/database/postgres"
	q "github.com/woofi-pets/donation-server/pkg/database/query"
)

const (
	tableName = "woofipets__core_donationrecord"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	SubjectID string `db:"subject_id"`
	Address   string `db:"address"`

	LastDonor        string `db:"last_donor"`
	CumulativeAmount uint64 `db:"cumulative_amount"`
	DonationCount    uint64 `db:"donation_count"`

	Mint string `db:"mint"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func toModel(obj *donation.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		SubjectID: obj.SubjectID,
		Address:   obj.Address,

		LastDonor:        obj.LastDonor,
		CumulativeAmount: obj.CumulativeAmount,
		DonationCount:    obj.DonationCount,

		Mint: obj.Mint,

		LastUpdatedAt: obj.LastUpdatedAt,
		CreatedAt:     obj.CreatedAt,
	}, nil
}

func fromModel(obj *model) *donation.Record {
	return &donation.Record{
		Id: uint64(obj.Id.Int64),

		SubjectID: obj.SubjectID,
		Address:   obj.Address,

		LastDonor:        obj.LastDonor,
		CumulativeAmount: obj.CumulativeAmount,
		DonationCount:    obj.DonationCount,

		Mint: obj.Mint,

		LastUpdatedAt: obj.LastUpdatedAt,
		CreatedAt:     obj.CreatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)

			ON CONFLICT (subject_id)
			DO UPDATE
				SET last_donor = $3, cumulative_amount = $4, donation_count = $5, mint = $6, last_updated_at = $7
				WHERE ` + tableName + `.subject_id = $1 AND ` + tableName + `.donation_count <= $5

			RETURNING
				id, subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at`

		m.LastUpdatedAt = time.Now()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}

		err := tx.QueryRowxContext(
			ctx,
			query,
			m.SubjectID,
			m.Address,
			m.LastDonor,
			m.CumulativeAmount,
			m.DonationCount,
			m.Mint,
			m.LastUpdatedAt,
			m.CreatedAt,
		).StructScan(m)

		// A stale save loses the conflict and returns no row; that is
		// not an error.
		if err == sql.ErrNoRows {
			return nil
		}
		return err
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, subjectID string) (*model, error) {
	res := &model{}

	query := `SELECT id, subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at FROM ` + tableName + `
		WHERE subject_id = $1
	`

	err := db.QueryRowxContext(
		ctx,
		query,
		subjectID,
	).StructScan(res)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, donation.ErrRecordNotFound)
	}
	return res, nil
}

func dbGetTopBySubject(ctx context.Context, db *sqlx.DB, limit uint64) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at FROM ` + tableName + `
		ORDER BY cumulative_amount DESC
		LIMIT $1
	`

	err := db.SelectContext(
		ctx,
		&res,
		query,
		limit,
	)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, donation.ErrRecordNotFound)
	}
	return res, nil
}

func dbGetAllByMint(ctx context.Context, db *sqlx.DB, mint string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at FROM ` + tableName + `
		WHERE (mint = $1)
	`

	opts := []interface{}{mint}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, donation.ErrRecordNotFound)
	}

	if len(res) == 0 {
		return nil, donation.ErrRecordNotFound
	}

	return res, nil
}

func dbGetAllByLastUpdated(ctx context.Context, db *sqlx.DB, ordering q.Ordering, limit uint64) ([]*model, error) {
	res := []*model{}

	query := `SELECT id, subject_id, address, last_donor, cumulative_amount, donation_count, mint, last_updated_at, created_at FROM ` + tableName + `
		ORDER BY last_updated_at ` + q.FromOrderingWithFallback(ordering, "desc") + `
		LIMIT $1
	`

	err := db.SelectContext(
		ctx,
		&res,
		query,
		limit,
	)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, donation.ErrRecordNotFound)
	}
	return res, nil
}
