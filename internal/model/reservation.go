package model

import "time"

// PaymentType distinguishes how a customer chose to pay for a
// reservation.  It is fixed at creation time and never changes.
type PaymentType string

const (
	PaymentTypeFull PaymentType = "FULL" // pay the whole price in one transfer
	PaymentTypeDP   PaymentType = "DP"   // pay a 50% down payment first, the balance later
)

// ReservationStatus tracks the lifecycle of a reservation as a whole.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"   // created, waiting for payment and verification
	ReservationDPPaid    ReservationStatus = "DP_PAID"   // down payment verified, balance outstanding
	ReservationRejected  ReservationStatus = "REJECTED"  // payment proof rejected; terminal
	ReservationCancelled ReservationStatus = "CANCELLED" // refunded/cancelled; terminal
	ReservationCompleted ReservationStatus = "COMPLETED" // fully paid and verified
)

// IsTerminal reports whether the reservation can no longer accept any
// payment transition.  REJECTED and CANCELLED reservations keep their
// history but are dead ends; the customer must book again.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationRejected || s == ReservationCancelled
}

// PaymentStatus tracks the fine-grained state of the payment flow.
// DP_* and PELUNASAN_* values are only valid for PaymentTypeDP;
// FULL_* values only for PaymentTypeFull.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "PENDING"
	PaymentFullSent          PaymentStatus = "FULL_SENT"
	PaymentFullRejected      PaymentStatus = "FULL_REJECTED"
	PaymentDPSent            PaymentStatus = "DP_SENT"
	PaymentDPPaid            PaymentStatus = "DP_PAID"
	PaymentDPRejected        PaymentStatus = "DP_REJECTED"
	PaymentPelunasanSent     PaymentStatus = "PELUNASAN_SENT"
	PaymentPelunasanRejected PaymentStatus = "PELUNASAN_REJECTED"
	PaymentPelunasanPaid     PaymentStatus = "PELUNASAN_PAID"
	PaymentPaid              PaymentStatus = "PAID"
	PaymentRefunded          PaymentStatus = "REFUNDED"
)

// Label returns the status string shown to clients.  FULL_REJECTED is
// stored distinctly so a rejected full payment is never conflated with
// a rejected down payment, but legacy clients expect both to render as
// DP_REJECTED, so the label folds them together.
func (s PaymentStatus) Label() string {
	if s == PaymentFullRejected {
		return string(PaymentDPRejected)
	}
	return string(s)
}

// Reservation is a one-off booking of a field for a contiguous range
// of hourly slots on a single date.  It corresponds to a row in the
// `reservations` table.  The hour columns are whole hours in the
// venue's local day: StartHour=8, EndHour=10 means 08:00–10:00.
//
// Proof columns hold opaque references supplied by the upload
// collaborator; this service never touches the files themselves.
// FullProof doubles as the legacy alias slot for the DP proof so that
// down-payment evidence stays visible after a pelunasan rejection.
type Reservation struct {
	ID                uint64            // reservations.id
	UserID            uint64            // reservations.user_id
	FieldID           uint64            // reservations.field_id
	PlayDate          time.Time         // reservations.play_date (date only, UTC midnight)
	StartHour         int               // reservations.start_hour
	EndHour           int               // reservations.end_hour (exclusive)
	PaymentType       PaymentType       // reservations.payment_type (immutable)
	TotalPrice        int64             // reservations.total_price (rupiah)
	PaymentAmount     int64             // reservations.payment_amount (rupiah)
	ReservationStatus ReservationStatus // reservations.reservation_status
	PaymentStatus     PaymentStatus     // reservations.payment_status
	FullProof         *string           // reservations.full_proof (nullable)
	DPProof           *string           // reservations.dp_proof (nullable)
	FinalProof        *string           // reservations.final_proof (nullable)
	FullSenderName    *string           // reservations.full_sender_name (nullable)
	DPSenderName      *string           // reservations.dp_sender_name (nullable)
	FinalSenderName   *string           // reservations.final_sender_name (nullable)
	Notes             string            // reservations.notes (free text from the customer)
	PaymentNotes      string            // reservations.payment_notes (append-only audit log)
	DPValidatorID     *uint64           // reservations.dp_validator_id (nullable)
	DPValidatedAt     *time.Time        // reservations.dp_validated_at (nullable)
	FinalValidatorID  *uint64           // reservations.final_validator_id (nullable)
	FinalValidatedAt  *time.Time        // reservations.final_validated_at (nullable)
	HandledBy         *uint64           // reservations.handled_by (last admin to touch this row)
	HandledAt         *time.Time        // reservations.handled_at
	CreatedAt         time.Time         // reservations.created_at
	UpdatedAt         time.Time         // reservations.updated_at
}

// Hours returns the booked duration in whole hours.
func (r *Reservation) Hours() int { return r.EndHour - r.StartHour }

// CoversHour reports whether the reservation occupies the slot
// starting at hour h.
func (r *Reservation) CoversHour(h int) bool { return h >= r.StartHour && h < r.EndHour }
