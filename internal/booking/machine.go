package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

// Payment phases a customer can submit a transfer proof for.
const (
	PhaseDP    = "dp"    // down payment proof (PaymentTypeDP only)
	PhaseFinal = "final" // pelunasan / balance proof (PaymentTypeDP only)
	PhaseFull  = "full"  // single full payment proof (PaymentTypeFull only)
)

// Admin actions driving the verification workflow.
const (
	ActionVerifyDP    = "VERIFY_DP"
	ActionRejectDP    = "REJECT_DP"
	ActionVerifyFinal = "VERIFY_FINAL"
	ActionRejectFinal = "REJECT_FINAL"
	ActionRefund      = "REFUND"
)

// TotalPrice computes the price of booking [startHour, endHour) at the
// given hourly rate.
func TotalPrice(pricePerHour int64, startHour, endHour int) int64 {
	return pricePerHour * int64(endHour-startHour)
}

// DownPayment returns the fixed 50% down payment for a total price.
func DownPayment(total int64) int64 { return total / 2 }

// InitialPaymentAmount returns the amount a fresh reservation expects
// from the customer: the full price for FULL bookings, half for DP.
func InitialPaymentAmount(paymentType model.PaymentType, total int64) int64 {
	if paymentType == model.PaymentTypeDP {
		return DownPayment(total)
	}
	return total
}

// SubmitProof records a customer-submitted transfer proof reference for
// the given phase.  The upload itself happened elsewhere; only the
// resulting reference and the sender's bank account name are stored,
// so no timestamp is taken here (the database's updated_at tracks the
// write).  Every precondition failure leaves the reservation untouched.
func SubmitProof(r *model.Reservation, phase, proofRef, senderName string) error {
	if strings.TrimSpace(proofRef) == "" {
		return &ValidationError{Field: "proof", Reason: "proof reference is required"}
	}
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: "submit proof", Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	switch phase {
	case PhaseDP:
		if r.PaymentType != model.PaymentTypeDP {
			return &PreconditionError{Action: "submit dp proof", Reason: "reservation is not a down-payment booking"}
		}
		if r.PaymentStatus != model.PaymentPending && r.PaymentStatus != model.PaymentDPRejected {
			return &PreconditionError{Action: "submit dp proof", Reason: fmt.Sprintf("payment status is %s", r.PaymentStatus)}
		}
		r.PaymentStatus = model.PaymentDPSent
		r.DPProof = &proofRef
		r.FullProof = &proofRef // legacy alias slot mirrors the DP proof
		r.DPSenderName = &senderName
	case PhaseFinal:
		if r.PaymentType != model.PaymentTypeDP {
			return &PreconditionError{Action: "submit final proof", Reason: "reservation is not a down-payment booking"}
		}
		if r.ReservationStatus != model.ReservationDPPaid {
			return &PreconditionError{Action: "submit final proof", Reason: "down payment has not been verified yet"}
		}
		if r.PaymentStatus == model.PaymentPelunasanSent {
			return &PreconditionError{Action: "submit final proof", Reason: "a final proof is already awaiting verification"}
		}
		r.PaymentStatus = model.PaymentPelunasanSent
		r.FinalProof = &proofRef
		r.FinalSenderName = &senderName
	case PhaseFull:
		if r.PaymentType != model.PaymentTypeFull {
			return &PreconditionError{Action: "submit full proof", Reason: "reservation is not a full-payment booking"}
		}
		if r.PaymentStatus != model.PaymentPending {
			return &PreconditionError{Action: "submit full proof", Reason: fmt.Sprintf("payment status is %s", r.PaymentStatus)}
		}
		r.PaymentStatus = model.PaymentFullSent
		r.FullProof = &proofRef
		r.FullSenderName = &senderName
	default:
		return &ValidationError{Field: "phase", Reason: "must be dp, final or full"}
	}
	return nil
}

// ApplyAdminAction runs one admin command against the reservation.
// The acting admin is always an explicit parameter; nothing here is
// inferred from ambient session state.  On success the generic
// handled-by/handled-at pair is stamped in addition to any
// phase-specific attribution.  On failure nothing is mutated.
func ApplyAdminAction(r *model.Reservation, action string, adminID uint64, note string, now time.Time) error {
	var err error
	switch action {
	case ActionVerifyDP:
		err = verifyDP(r, adminID, note, now)
	case ActionRejectDP:
		err = rejectDP(r, adminID, note, now)
	case ActionVerifyFinal:
		err = verifyFinal(r, adminID, note, now)
	case ActionRejectFinal:
		err = rejectFinal(r, adminID, note, now)
	case ActionRefund:
		err = refund(r, adminID, note, now)
	default:
		return &ValidationError{Field: "action", Reason: "unknown admin action"}
	}
	if err != nil {
		return err
	}
	r.HandledBy = &adminID
	r.HandledAt = &now
	return nil
}

// verifyDP approves a submitted down payment.  The reservation moves
// to DP_PAID on both axes and the DP validator pair records who
// approved it.  Any stale final-phase attribution is wiped because the
// final phase starts over from here.
func verifyDP(r *model.Reservation, adminID uint64, note string, now time.Time) error {
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: ActionVerifyDP, Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	if r.PaymentType != model.PaymentTypeDP {
		return &PreconditionError{Action: ActionVerifyDP, Reason: "reservation is not a down-payment booking"}
	}
	if r.PaymentStatus != model.PaymentPending && r.PaymentStatus != model.PaymentDPSent {
		return &PreconditionError{Action: ActionVerifyDP, Reason: fmt.Sprintf("payment status is %s", r.PaymentStatus)}
	}
	r.PaymentStatus = model.PaymentDPPaid
	r.ReservationStatus = model.ReservationDPPaid
	r.DPValidatorID = &adminID
	r.DPValidatedAt = &now
	r.FinalValidatorID = nil
	r.FinalValidatedAt = nil
	appendPaymentNote(r, now, adminID, ActionVerifyDP, note)
	return nil
}

// rejectDP declines the down payment proof.  This is terminal: the
// customer must create a fresh reservation, the slot is released.  The
// rejected proof is cleared from both the DP slot and the legacy
// alias, and the final-validator id records who closed the booking
// out; its timestamp stays empty because nothing was validated.
func rejectDP(r *model.Reservation, adminID uint64, note string, now time.Time) error {
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: ActionRejectDP, Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	if r.PaymentType != model.PaymentTypeDP {
		return &PreconditionError{Action: ActionRejectDP, Reason: "reservation is not a down-payment booking"}
	}
	if !hasRef(r.DPProof) && !hasRef(r.FullProof) {
		return &PreconditionError{Action: ActionRejectDP, Reason: "no down payment proof to reject"}
	}
	r.DPProof = nil
	r.FullProof = nil
	r.PaymentStatus = model.PaymentDPRejected
	r.ReservationStatus = model.ReservationRejected
	r.DPValidatorID = nil
	r.DPValidatedAt = nil
	r.FinalValidatorID = &adminID
	r.FinalValidatedAt = nil
	appendPaymentNote(r, now, adminID, ActionRejectDP, note)
	return nil
}

// verifyFinal approves the closing payment: the pelunasan transfer for
// DP bookings, or the single full transfer for FULL bookings.  The
// reservation completes and, for DP bookings, the recorded payment
// amount rises from the 50% down payment to the full price.  A DP
// booking whose DP phase was never explicitly verified gets its DP
// attribution backfilled so historical rows stay consistent.
func verifyFinal(r *model.Reservation, adminID uint64, note string, now time.Time) error {
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: ActionVerifyFinal, Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	if r.PaymentStatus == model.PaymentPaid || r.PaymentStatus == model.PaymentPelunasanPaid {
		return &PreconditionError{Action: ActionVerifyFinal, Reason: "payment is already verified"}
	}
	if r.PaymentType == model.PaymentTypeDP {
		if !hasRef(r.FinalProof) {
			return &PreconditionError{Action: ActionVerifyFinal, Reason: "no final payment proof to verify"}
		}
	} else if !hasRef(r.FullProof) {
		return &PreconditionError{Action: ActionVerifyFinal, Reason: "no payment proof to verify"}
	}
	r.PaymentStatus = model.PaymentPaid
	r.ReservationStatus = model.ReservationCompleted
	r.FinalValidatorID = &adminID
	r.FinalValidatedAt = &now
	if r.PaymentType == model.PaymentTypeDP {
		if r.DPValidatorID == nil {
			r.DPValidatorID = &adminID
			r.DPValidatedAt = &now
		}
		r.PaymentAmount = r.TotalPrice
	}
	appendPaymentNote(r, now, adminID, ActionVerifyFinal, note)
	return nil
}

// rejectFinal declines the closing payment proof.  The outcome differs
// by payment type: a rejected pelunasan reopens the reservation at
// DP_PAID so the customer can resubmit without losing the slot or the
// verified down payment, while a rejected full payment is terminal.
func rejectFinal(r *model.Reservation, adminID uint64, note string, now time.Time) error {
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: ActionRejectFinal, Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	if r.PaymentType == model.PaymentTypeDP {
		if !hasRef(r.FinalProof) {
			return &PreconditionError{Action: ActionRejectFinal, Reason: "no final payment proof to reject"}
		}
		r.FinalProof = nil
		r.FinalSenderName = nil
		r.FullProof = r.DPProof // keep the down payment evidence visible
		r.PaymentStatus = model.PaymentPelunasanRejected
		r.ReservationStatus = model.ReservationDPPaid
		r.FinalValidatorID = &adminID
		r.FinalValidatedAt = nil
		appendPaymentNote(r, now, adminID, ActionRejectFinal, note)
		return nil
	}
	if !hasRef(r.FullProof) {
		return &PreconditionError{Action: ActionRejectFinal, Reason: "no payment proof to reject"}
	}
	r.FullProof = nil
	r.FullSenderName = nil
	r.PaymentStatus = model.PaymentFullRejected
	r.ReservationStatus = model.ReservationRejected
	r.FinalValidatorID = &adminID
	r.FinalValidatedAt = nil
	appendPaymentNote(r, now, adminID, ActionRejectFinal, note)
	return nil
}

// refund cancels the reservation and marks all money as returned.
// Terminal reservations cannot be refunded again.
func refund(r *model.Reservation, adminID uint64, note string, now time.Time) error {
	if r.ReservationStatus.IsTerminal() {
		return &PreconditionError{Action: ActionRefund, Reason: fmt.Sprintf("reservation is %s", r.ReservationStatus)}
	}
	r.PaymentStatus = model.PaymentRefunded
	r.ReservationStatus = model.ReservationCancelled
	r.FinalValidatorID = nil
	r.FinalValidatedAt = nil
	appendPaymentNote(r, now, adminID, ActionRefund, note)
	return nil
}

// appendPaymentNote adds one structured line to the append-only audit
// log.  Existing content is never rewritten.
func appendPaymentNote(r *model.Reservation, now time.Time, adminID uint64, action, note string) {
	line := fmt.Sprintf("[%s] admin %d %s", now.UTC().Format("2006-01-02 15:04:05"), adminID, action)
	if strings.TrimSpace(note) != "" {
		line += ": " + strings.TrimSpace(note)
	}
	if r.PaymentNotes == "" {
		r.PaymentNotes = line
		return
	}
	r.PaymentNotes += "\n" + line
}

// hasRef reports whether a nullable proof reference is present and
// non-blank.
func hasRef(p *string) bool { return p != nil && strings.TrimSpace(*p) != "" }
