package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/danuarta/field-booking/internal/model"
)

// ErrMemberScheduleNotFound is returned when a schedule id is unknown.
var ErrMemberScheduleNotFound = errors.New("member schedule not found")

// MemberScheduleRepo persists recurring weekly member schedules.
// Rows are rules, never materialized bookings: the availability engine
// evaluates them per requested date.
type MemberScheduleRepo struct {
	db *sql.DB
}

// NewMemberScheduleRepo returns a MemberScheduleRepo bound to the
// given database.
func NewMemberScheduleRepo(db *sql.DB) *MemberScheduleRepo { return &MemberScheduleRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *MemberScheduleRepo) DB() *sql.DB { return r.db }

const memberScheduleColumns = `id, member_name, contact_name, field_id, day_of_week,
  start_hour, end_hour, package_type, start_date, end_date, is_active, created_at, updated_at`

func scanMemberSchedule(row interface{ Scan(...any) error }) (model.MemberSchedule, error) {
	var m model.MemberSchedule
	err := row.Scan(&m.ID, &m.MemberName, &m.ContactName, &m.FieldID, &m.DayOfWeek,
		&m.StartHour, &m.EndHour, &m.PackageType, &m.StartDate, &m.EndDate,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// CreateTx inserts a schedule within an existing transaction.  The
// caller runs the conflict check in the same transaction so no
// overlapping rule or reservation can slip in between.
func (r *MemberScheduleRepo) CreateTx(ctx context.Context, tx *sql.Tx, m *model.MemberSchedule) error {
	const q = `INSERT INTO member_schedules
	  (member_name, contact_name, field_id, day_of_week, start_hour, end_hour,
	   package_type, start_date, end_date, is_active)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		m.MemberName, m.ContactName, m.FieldID, m.DayOfWeek, m.StartHour, m.EndHour,
		m.PackageType, dateArg(m.StartDate), dateArg(m.EndDate), m.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	got, err := scanMemberSchedule(tx.QueryRowContext(ctx,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE id = ?`, m.ID))
	if err != nil {
		return err
	}
	*m = got
	return nil
}

// UpdateTx rewrites a schedule's rule columns inside a transaction,
// after the caller re-ran the conflict check against the new rule.
func (r *MemberScheduleRepo) UpdateTx(ctx context.Context, tx *sql.Tx, m *model.MemberSchedule) error {
	const q = `UPDATE member_schedules SET
	  member_name = ?, contact_name = ?, field_id = ?, day_of_week = ?,
	  start_hour = ?, end_hour = ?, package_type = ?, start_date = ?, end_date = ?, is_active = ?
	  WHERE id = ?`
	result, err := tx.ExecContext(ctx, q,
		m.MemberName, m.ContactName, m.FieldID, m.DayOfWeek,
		m.StartHour, m.EndHour, m.PackageType, dateArg(m.StartDate), dateArg(m.EndDate), m.IsActive,
		m.ID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// the row may simply be unchanged; confirm it exists
		if _, err := r.getByIDTx(ctx, tx, m.ID); err != nil {
			return err
		}
	}
	got, err := r.getByIDTx(ctx, tx, m.ID)
	if err != nil {
		return err
	}
	*m = got
	return nil
}

// GetByID fetches one schedule.
func (r *MemberScheduleRepo) GetByID(ctx context.Context, id uint64) (model.MemberSchedule, error) {
	m, err := scanMemberSchedule(r.db.QueryRowContext(ctx,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemberSchedule{}, ErrMemberScheduleNotFound
	}
	return m, err
}

func (r *MemberScheduleRepo) getByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.MemberSchedule, error) {
	m, err := scanMemberSchedule(tx.QueryRowContext(ctx,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemberSchedule{}, ErrMemberScheduleNotFound
	}
	return m, err
}

// GetByIDForUpdateTx locks one schedule row for an edit.
func (r *MemberScheduleRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.MemberSchedule, error) {
	m, err := scanMemberSchedule(tx.QueryRowContext(ctx,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemberSchedule{}, ErrMemberScheduleNotFound
	}
	return m, err
}

// Delete removes a schedule row.  Past occupancy needs no cleanup
// because occurrences were never materialized.
func (r *MemberScheduleRepo) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM member_schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrMemberScheduleNotFound
	}
	return nil
}

// ListByField returns every schedule attached to a field.  The
// availability engine filters by weekday, window and active flag.
func (r *MemberScheduleRepo) ListByField(ctx context.Context, fieldID uint64) ([]model.MemberSchedule, error) {
	return r.list(ctx, r.db.QueryContext,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE field_id = ? ORDER BY day_of_week, start_hour`,
		fieldID)
}

// ListByFieldTx is ListByField inside a transaction, for conflict
// checks that must be atomic with an insert or update.
func (r *MemberScheduleRepo) ListByFieldTx(ctx context.Context, tx *sql.Tx, fieldID uint64) ([]model.MemberSchedule, error) {
	return r.list(ctx, tx.QueryContext,
		`SELECT `+memberScheduleColumns+` FROM member_schedules WHERE field_id = ? ORDER BY day_of_week, start_hour`,
		fieldID)
}

// ListAll returns every schedule, for the admin overview grouped by
// member in the handler.  The ordering keys match the grouping key
// (member_name, contact_name, field_id) so each logical member's rows
// arrive contiguous; two members sharing a name stay separate groups.
func (r *MemberScheduleRepo) ListAll(ctx context.Context) ([]model.MemberSchedule, error) {
	return r.list(ctx, r.db.QueryContext,
		`SELECT `+memberScheduleColumns+` FROM member_schedules
		 ORDER BY member_name, contact_name, field_id, day_of_week, start_hour`)
}

func (r *MemberScheduleRepo) list(ctx context.Context, query queryFn, q string, args ...any) ([]model.MemberSchedule, error) {
	rows, err := query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MemberSchedule, 0)
	for rows.Next() {
		m, err := scanMemberSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
