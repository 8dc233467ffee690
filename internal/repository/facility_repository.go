package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers

	"github.com/clubrosario/booking-bot/internal/model"
)

// FacilityRepo encapsulates all database queries related to facilities.  It
// depends on a sql.DB connection which should be configured elsewhere.
type FacilityRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewFacilityRepo constructs a FacilityRepo with the provided DB handle.
// This function allows dependency injection of the database in tests and
// at startup.
func NewFacilityRepo(db *sql.DB) *FacilityRepo {
	return &FacilityRepo{db: db}
}

// ListAll returns every facility ordered by name.  The registry consumes
// the full list to build its cache snapshot; ordering by name keeps
// repeated refreshes order-stable.
func (r *FacilityRepo) ListAll(ctx context.Context) ([]model.Facility, error) {
	const q = `SELECT id, name FROM facilities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Facility
	for rows.Next() {
		var f model.Facility
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
