package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danuarta/field-booking/internal/model"
)

// ErrFieldNotFound is returned when a referenced field does not exist.
var ErrFieldNotFound = errors.New("field not found")

// FieldRepo encapsulates persistence for bookable fields.
type FieldRepo struct {
	db *sql.DB
}

// NewFieldRepo returns a FieldRepo bound to the given database.
func NewFieldRepo(db *sql.DB) *FieldRepo { return &FieldRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *FieldRepo) DB() *sql.DB { return r.db }

const fieldColumns = `id, name, price_per_hour, is_active, created_at, updated_at`

func scanField(row interface{ Scan(...any) error }) (model.Field, error) {
	var f model.Field
	err := row.Scan(&f.ID, &f.Name, &f.PricePerHour, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// Create inserts a new field and returns it with generated values
// populated.
func (r *FieldRepo) Create(ctx context.Context, name string, pricePerHour int64) (model.Field, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO fields (name, price_per_hour, is_active) VALUES (?, ?, 1)`,
		name, pricePerHour)
	if err != nil {
		return model.Field{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Field{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one field. It returns ErrFieldNotFound when the id
// is unknown.
func (r *FieldRepo) GetByID(ctx context.Context, id uint64) (model.Field, error) {
	f, err := scanField(r.db.QueryRowContext(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Field{}, ErrFieldNotFound
	}
	return f, err
}

// GetByIDTx is GetByID inside an existing transaction; used when a
// booking must read the price and the active flag atomically with the
// insert that follows.
func (r *FieldRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Field, error) {
	f, err := scanField(tx.QueryRowContext(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Field{}, ErrFieldNotFound
	}
	return f, err
}

// List returns all fields, optionally restricted to active ones.
func (r *FieldRepo) List(ctx context.Context, activeOnly bool) ([]model.Field, error) {
	q := `SELECT ` + fieldColumns + ` FROM fields`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Field, 0)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update changes a field's name, hourly price and active flag.
// Deactivation never cascades to existing reservations.
func (r *FieldRepo) Update(ctx context.Context, id uint64, name string, pricePerHour int64, isActive bool) (model.Field, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fields SET name = ?, price_per_hour = ?, is_active = ? WHERE id = ?`,
		name, pricePerHour, isActive, id)
	if err != nil {
		return model.Field{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish a no-op update from a missing row
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Field{}, err
		}
	}
	return r.GetByID(ctx, id)
}
