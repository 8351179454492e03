package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

// ErrReservationNotFound is returned when a reservation id is unknown.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides persistence for reservations and their
// exploded slot rows.  Every reservation owns one row in
// `reservation_slots` per occupied hour; the unique key on
// (field_id, play_date, slot_hour) is what makes the availability
// check and the insert one atomic unit under concurrent bookings.
// Slot rows are deleted when the reservation becomes terminal so the
// hours are immediately bookable again.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, user_id, field_id, play_date, start_hour, end_hour,
  payment_type, total_price, payment_amount, reservation_status, payment_status,
  full_proof, dp_proof, final_proof, full_sender_name, dp_sender_name, final_sender_name,
  notes, payment_notes, dp_validator_id, dp_validated_at, final_validator_id, final_validated_at,
  handled_by, handled_at, created_at, updated_at`

// scanReservation reads one reservation row including all nullable
// columns.  It works for both *sql.Row and *sql.Rows.
func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res                                        model.Reservation
		fullProof, dpProof, finalProof             sql.NullString
		fullSender, dpSender, finalSender          sql.NullString
		notes, paymentNotes                        sql.NullString
		dpValidator, finalValidator, handledBy     sql.NullInt64
		dpValidatedAt, finalValidatedAt, handledAt sql.NullTime
	)
	err := row.Scan(
		&res.ID, &res.UserID, &res.FieldID, &res.PlayDate, &res.StartHour, &res.EndHour,
		&res.PaymentType, &res.TotalPrice, &res.PaymentAmount, &res.ReservationStatus, &res.PaymentStatus,
		&fullProof, &dpProof, &finalProof, &fullSender, &dpSender, &finalSender,
		&notes, &paymentNotes, &dpValidator, &dpValidatedAt, &finalValidator, &finalValidatedAt,
		&handledBy, &handledAt, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	res.FullProof = strPtr(fullProof)
	res.DPProof = strPtr(dpProof)
	res.FinalProof = strPtr(finalProof)
	res.FullSenderName = strPtr(fullSender)
	res.DPSenderName = strPtr(dpSender)
	res.FinalSenderName = strPtr(finalSender)
	res.Notes = notes.String
	res.PaymentNotes = paymentNotes.String
	res.DPValidatorID = uintPtr(dpValidator)
	res.FinalValidatorID = uintPtr(finalValidator)
	res.HandledBy = uintPtr(handledBy)
	res.DPValidatedAt = timePtr(dpValidatedAt)
	res.FinalValidatedAt = timePtr(finalValidatedAt)
	res.HandledAt = timePtr(handledAt)
	return res, nil
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func uintPtr(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	u := uint64(n.Int64)
	return &u
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func nullStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullUint(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// dateArg formats a calendar date for a DATE column comparison.
func dateArg(d time.Time) string { return d.Format("2006-01-02") }

// CreateTx inserts a new reservation together with its exploded slot
// rows within the scope of an existing transaction.  The generated ID
// and DB-defaulted timestamps are populated on the passed record.  A
// duplicate-key failure on the slot rows means a concurrent booking
// won the race for at least one hour; it is surfaced as ErrSlotTaken
// and the caller must roll back.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	  (user_id, field_id, play_date, start_hour, end_hour, payment_type,
	   total_price, payment_amount, reservation_status, payment_status, notes, payment_notes)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.UserID, res.FieldID, dateArg(res.PlayDate), res.StartHour, res.EndHour,
		res.PaymentType, res.TotalPrice, res.PaymentAmount,
		res.ReservationStatus, res.PaymentStatus, res.Notes, res.PaymentNotes)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	if err := r.insertSlotsTx(ctx, tx, res); err != nil {
		return err
	}
	// Query back the full row to populate timestamps and defaults.
	got, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, res.ID))
	if err != nil {
		return err
	}
	*res = got
	return nil
}

// insertSlotsTx writes one reservation_slots row per occupied hour.
func (r *ReservationRepo) insertSlotsTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	query := `INSERT INTO reservation_slots (reservation_id, field_id, play_date, slot_hour) VALUES `
	args := make([]any, 0, (res.EndHour-res.StartHour)*4)
	for h := res.StartHour; h < res.EndHour; h++ {
		if h > res.StartHour {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, res.ID, res.FieldID, dateArg(res.PlayDate), h)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

// FreeSlotsTx removes a reservation's slot rows, releasing its hours.
// Called when a transition makes the reservation terminal.
func (r *ReservationRepo) FreeSlotsTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM reservation_slots WHERE reservation_id = ?`, reservationID)
	return err
}

// MoveSlotsTx replaces a reservation's slot rows with rows for its new
// date and hour range during a reschedule.  Like CreateTx it reports
// ErrSlotTaken when a concurrent booking holds one of the new hours.
func (r *ReservationRepo) MoveSlotsTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	if err := r.FreeSlotsTx(ctx, tx, res.ID); err != nil {
		return err
	}
	return r.insertSlotsTx(ctx, tx, res)
}

// isDuplicateKey detects MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// GetByID fetches one reservation.  Unknown ids map to
// ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// GetByIDForUpdateTx fetches one reservation inside a transaction,
// taking a row lock so concurrent payment transitions on the same
// reservation serialize on the database.
func (r *ReservationRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ? FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// UpdateStateTx persists the mutable payment-flow columns of res,
// guarded by the statuses the caller read before applying the
// transition.  When the guard matches no row, another request already
// moved the reservation on and ErrStaleState is returned; nothing is
// written in that case.
func (r *ReservationRepo) UpdateStateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, prevReservation model.ReservationStatus, prevPayment model.PaymentStatus) error {
	const q = `UPDATE reservations SET
	  payment_amount = ?, reservation_status = ?, payment_status = ?,
	  full_proof = ?, dp_proof = ?, final_proof = ?,
	  full_sender_name = ?, dp_sender_name = ?, final_sender_name = ?,
	  payment_notes = ?,
	  dp_validator_id = ?, dp_validated_at = ?,
	  final_validator_id = ?, final_validated_at = ?,
	  handled_by = ?, handled_at = ?
	  WHERE id = ? AND reservation_status = ? AND payment_status = ?`
	result, err := tx.ExecContext(ctx, q,
		res.PaymentAmount, res.ReservationStatus, res.PaymentStatus,
		nullStr(res.FullProof), nullStr(res.DPProof), nullStr(res.FinalProof),
		nullStr(res.FullSenderName), nullStr(res.DPSenderName), nullStr(res.FinalSenderName),
		res.PaymentNotes,
		nullUint(res.DPValidatorID), nullTime(res.DPValidatedAt),
		nullUint(res.FinalValidatorID), nullTime(res.FinalValidatedAt),
		nullUint(res.HandledBy), nullTime(res.HandledAt),
		res.ID, prevReservation, prevPayment)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}

// UpdateScheduleTx moves a reservation to a new date and hour range.
// Payment columns are deliberately untouched.
func (r *ReservationRepo) UpdateScheduleTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reservations SET play_date = ?, start_hour = ?, end_hour = ? WHERE id = ?`,
		dateArg(res.PlayDate), res.StartHour, res.EndHour, res.ID)
	return err
}

// ListByFieldAndDate returns every reservation on a field and date,
// terminal ones included; the availability engine decides which of
// them still claim slots.
func (r *ReservationRepo) ListByFieldAndDate(ctx context.Context, fieldID uint64, date time.Time) ([]model.Reservation, error) {
	return r.listWhere(ctx, r.db.QueryContext,
		`SELECT `+reservationColumns+` FROM reservations WHERE field_id = ? AND play_date = ? ORDER BY start_hour`,
		fieldID, dateArg(date))
}

// ListByFieldAndDateTx is ListByFieldAndDate inside a transaction, for
// the conflict re-check that must be atomic with the insert.
func (r *ReservationRepo) ListByFieldAndDateTx(ctx context.Context, tx *sql.Tx, fieldID uint64, date time.Time) ([]model.Reservation, error) {
	return r.listWhere(ctx, tx.QueryContext,
		`SELECT `+reservationColumns+` FROM reservations WHERE field_id = ? AND play_date = ? ORDER BY start_hour`,
		fieldID, dateArg(date))
}

// ListByFieldBetweenTx returns the non-terminal reservations on a
// field whose play date lies inside the inclusive window; used to
// validate a recurring member schedule against existing bookings.
func (r *ReservationRepo) ListByFieldBetweenTx(ctx context.Context, tx *sql.Tx, fieldID uint64, from, to time.Time) ([]model.Reservation, error) {
	return r.listWhere(ctx, tx.QueryContext,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE field_id = ? AND play_date BETWEEN ? AND ?
		   AND reservation_status NOT IN (?, ?)
		 ORDER BY play_date, start_hour`,
		fieldID, dateArg(from), dateArg(to), model.ReservationRejected, model.ReservationCancelled)
}

// ListByUser returns a customer's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.listWhere(ctx, r.db.QueryContext,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = ? ORDER BY id DESC`,
		userID)
}

// AdminFilter narrows the admin reservation listing.  Zero values mean
// "no filter on this column".
type AdminFilter struct {
	FieldID           uint64
	Date              *time.Time
	ReservationStatus model.ReservationStatus
	PaymentStatus     model.PaymentStatus
}

// ListForAdmin returns reservations matching the filter, newest first.
func (r *ReservationRepo) ListForAdmin(ctx context.Context, f AdminFilter) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := make([]any, 0, 4)
	if f.FieldID != 0 {
		q += ` AND field_id = ?`
		args = append(args, f.FieldID)
	}
	if f.Date != nil {
		q += ` AND play_date = ?`
		args = append(args, dateArg(*f.Date))
	}
	if f.ReservationStatus != "" {
		q += ` AND reservation_status = ?`
		args = append(args, f.ReservationStatus)
	}
	if f.PaymentStatus != "" {
		q += ` AND payment_status = ?`
		args = append(args, f.PaymentStatus)
	}
	q += ` ORDER BY id DESC`
	return r.listWhere(ctx, r.db.QueryContext, q, args...)
}

type queryFn func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *ReservationRepo) listWhere(ctx context.Context, query queryFn, q string, args ...any) ([]model.Reservation, error) {
	rows, err := query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
