package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/danuarta/field-booking/internal/model"
)

var t0 = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

// newDPReservation returns a fresh two-hour DP booking on a field
// priced 100000/hour, the way the create-reservation flow builds one.
func newDPReservation() *model.Reservation {
	total := TotalPrice(100000, 8, 10)
	return &model.Reservation{
		ID:                1,
		UserID:            10,
		FieldID:           1,
		PlayDate:          date(2026, time.September, 7),
		StartHour:         8,
		EndHour:           10,
		PaymentType:       model.PaymentTypeDP,
		TotalPrice:        total,
		PaymentAmount:     InitialPaymentAmount(model.PaymentTypeDP, total),
		ReservationStatus: model.ReservationPending,
		PaymentStatus:     model.PaymentPending,
	}
}

func newFullReservation() *model.Reservation {
	r := newDPReservation()
	r.PaymentType = model.PaymentTypeFull
	r.PaymentAmount = InitialPaymentAmount(model.PaymentTypeFull, r.TotalPrice)
	return r
}

func mustSubmit(t *testing.T, r *model.Reservation, phase, ref string) {
	t.Helper()
	if err := SubmitProof(r, phase, ref, "BUDI SANTOSO"); err != nil {
		t.Fatalf("SubmitProof(%s) = %v", phase, err)
	}
}

func mustApply(t *testing.T, r *model.Reservation, action string, adminID uint64) {
	t.Helper()
	if err := ApplyAdminAction(r, action, adminID, "", t0); err != nil {
		t.Fatalf("ApplyAdminAction(%s) = %v", action, err)
	}
}

func TestPriceAndInitialAmount(t *testing.T) {
	// Scenario A: 100000/hr, 08:00-10:00 → total 200000, DP 100000.
	if got := TotalPrice(100000, 8, 10); got != 200000 {
		t.Fatalf("TotalPrice = %d, want 200000", got)
	}
	if got := InitialPaymentAmount(model.PaymentTypeDP, 200000); got != 100000 {
		t.Fatalf("DP initial amount = %d, want 100000", got)
	}
	if got := InitialPaymentAmount(model.PaymentTypeFull, 200000); got != 200000 {
		t.Fatalf("FULL initial amount = %d, want 200000", got)
	}
}

func TestVerifyDPHappyPath(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "transfer-123.jpg")
	if r.PaymentStatus != model.PaymentDPSent {
		t.Fatalf("after submit: payment status = %s", r.PaymentStatus)
	}
	if r.FullProof == nil || *r.FullProof != "transfer-123.jpg" {
		t.Fatal("legacy alias slot not mirrored from dp proof")
	}

	mustApply(t, r, ActionVerifyDP, 3)
	if r.ReservationStatus != model.ReservationDPPaid || r.PaymentStatus != model.PaymentDPPaid {
		t.Fatalf("after VERIFY_DP: %s / %s", r.ReservationStatus, r.PaymentStatus)
	}
	if r.DPValidatorID == nil || *r.DPValidatorID != 3 || r.DPValidatedAt == nil {
		t.Fatal("DP validator pair not recorded")
	}
	if r.TotalPrice != 200000 || r.PaymentAmount != 100000 {
		t.Fatalf("VERIFY_DP touched amounts: total=%d amount=%d", r.TotalPrice, r.PaymentAmount)
	}
	if r.HandledBy == nil || *r.HandledBy != 3 || r.HandledAt == nil {
		t.Fatal("generic handled-by pair not stamped")
	}
}

func TestVerifyDPIsNotIdempotent(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "transfer-123.jpg")
	mustApply(t, r, ActionVerifyDP, 3)

	before := *r
	err := ApplyAdminAction(r, ActionVerifyDP, 4, "", t0.Add(time.Minute))
	var pre *PreconditionError
	if !errors.As(err, &pre) {
		t.Fatalf("second VERIFY_DP = %v, want PreconditionError", err)
	}
	if *r != before {
		t.Fatal("failed VERIFY_DP mutated the reservation")
	}
}

func TestDPFullLifecycle(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionVerifyDP, 3)
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	if r.PaymentStatus != model.PaymentPelunasanSent {
		t.Fatalf("after final submit: %s", r.PaymentStatus)
	}
	mustApply(t, r, ActionVerifyFinal, 5)

	if r.ReservationStatus != model.ReservationCompleted || r.PaymentStatus != model.PaymentPaid {
		t.Fatalf("after VERIFY_FINAL: %s / %s", r.ReservationStatus, r.PaymentStatus)
	}
	if r.PaymentAmount != r.TotalPrice {
		t.Fatalf("amount = %d, want raised to total %d", r.PaymentAmount, r.TotalPrice)
	}
	if r.FinalValidatorID == nil || *r.FinalValidatorID != 5 || r.FinalValidatedAt == nil {
		t.Fatal("final validator pair not recorded")
	}
	// DP attribution from the earlier explicit verification survives.
	if r.DPValidatorID == nil || *r.DPValidatorID != 3 {
		t.Fatal("DP validator pair lost")
	}
}

func TestAmountStaysHalfUntilFinalVerified(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionVerifyDP, 3)
	if r.PaymentAmount != r.TotalPrice/2 {
		t.Fatalf("after DP verification amount = %d, want %d", r.PaymentAmount, r.TotalPrice/2)
	}
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	if r.PaymentAmount != r.TotalPrice/2 {
		t.Fatalf("after final submit amount = %d, want still %d", r.PaymentAmount, r.TotalPrice/2)
	}
	mustApply(t, r, ActionVerifyFinal, 3)
	if r.PaymentAmount != r.TotalPrice {
		t.Fatalf("after final verification amount = %d, want %d", r.PaymentAmount, r.TotalPrice)
	}
}

func TestVerifyFinalBackfillsMissingDPAttribution(t *testing.T) {
	// Data that skipped explicit DP verification: status was already
	// DP_PAID but no validator recorded.
	r := newDPReservation()
	r.ReservationStatus = model.ReservationDPPaid
	r.PaymentStatus = model.PaymentDPPaid
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	mustApply(t, r, ActionVerifyFinal, 8)
	if r.DPValidatorID == nil || *r.DPValidatorID != 8 || r.DPValidatedAt == nil {
		t.Fatal("missing DP attribution was not backfilled")
	}
}

func TestRejectFinalReopensDPReservation(t *testing.T) {
	// Scenario C: submit DP → verify → submit final → reject final.
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionVerifyDP, 3)
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	mustApply(t, r, ActionRejectFinal, 5)

	if r.PaymentStatus != model.PaymentPelunasanRejected {
		t.Fatalf("payment status = %s, want PELUNASAN_REJECTED", r.PaymentStatus)
	}
	if r.ReservationStatus != model.ReservationDPPaid {
		t.Fatalf("reservation status = %s, want DP_PAID (reopened)", r.ReservationStatus)
	}
	if r.FinalProof != nil {
		t.Fatal("rejected final proof not cleared")
	}
	if r.FullProof == nil || *r.FullProof != "dp.jpg" {
		t.Fatal("dp evidence not restored into the legacy alias slot")
	}
	if r.FinalValidatorID == nil || *r.FinalValidatorID != 5 {
		t.Fatal("rejection attribution missing")
	}
	if r.FinalValidatedAt != nil {
		t.Fatal("rejection must not count as validated")
	}

	// Reopened reservation accepts a corrected resubmission.
	mustSubmit(t, r, PhaseFinal, "pelunasan-v2.jpg")
	if r.PaymentStatus != model.PaymentPelunasanSent {
		t.Fatalf("resubmission: payment status = %s", r.PaymentStatus)
	}
}

func TestRejectDPIsTerminal(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionRejectDP, 3)

	if r.ReservationStatus != model.ReservationRejected || r.PaymentStatus != model.PaymentDPRejected {
		t.Fatalf("after REJECT_DP: %s / %s", r.ReservationStatus, r.PaymentStatus)
	}
	if r.DPProof != nil || r.FullProof != nil {
		t.Fatal("rejected proof and alias not cleared")
	}
	if r.DPValidatorID != nil || r.DPValidatedAt != nil {
		t.Fatal("DP attribution implying success survived the rejection")
	}
	var pre *PreconditionError
	if err := SubmitProof(r, PhaseDP, "retry.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("terminal reservation accepted a proof: %v", err)
	}
}

func TestRejectFullIsTerminal(t *testing.T) {
	// Scenario D: FULL reservation, proof rejected, no resubmission.
	r := newFullReservation()
	mustSubmit(t, r, PhaseFull, "lunas.jpg")
	mustApply(t, r, ActionRejectFinal, 3)

	if r.ReservationStatus != model.ReservationRejected {
		t.Fatalf("reservation status = %s, want REJECTED", r.ReservationStatus)
	}
	if r.PaymentStatus != model.PaymentFullRejected {
		t.Fatalf("payment status = %s, want FULL_REJECTED", r.PaymentStatus)
	}
	// Distinct stored value, legacy label on the wire.
	if r.PaymentStatus.Label() != "DP_REJECTED" {
		t.Fatalf("label = %q, want DP_REJECTED", r.PaymentStatus.Label())
	}
	var pre *PreconditionError
	if err := SubmitProof(r, PhaseFull, "retry.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("terminal reservation accepted a proof: %v", err)
	}
}

func TestFullPaymentLifecycle(t *testing.T) {
	r := newFullReservation()
	mustSubmit(t, r, PhaseFull, "lunas.jpg")
	if r.PaymentStatus != model.PaymentFullSent {
		t.Fatalf("after submit: %s", r.PaymentStatus)
	}
	mustApply(t, r, ActionVerifyFinal, 3)
	if r.ReservationStatus != model.ReservationCompleted || r.PaymentStatus != model.PaymentPaid {
		t.Fatalf("after VERIFY_FINAL: %s / %s", r.ReservationStatus, r.PaymentStatus)
	}
	if r.PaymentAmount != r.TotalPrice {
		t.Fatalf("amount = %d, want %d", r.PaymentAmount, r.TotalPrice)
	}
}

func TestRefundCancels(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionVerifyDP, 3)
	mustApply(t, r, ActionRefund, 7)

	if r.ReservationStatus != model.ReservationCancelled || r.PaymentStatus != model.PaymentRefunded {
		t.Fatalf("after REFUND: %s / %s", r.ReservationStatus, r.PaymentStatus)
	}
	if r.FinalValidatorID != nil || r.FinalValidatedAt != nil {
		t.Fatal("final validator pair should be cleared on refund")
	}
	var pre *PreconditionError
	if err := ApplyAdminAction(r, ActionRefund, 7, "", t0); !errors.As(err, &pre) {
		t.Fatalf("second refund = %v, want PreconditionError", err)
	}
}

func TestRejectionsRequireAProof(t *testing.T) {
	var pre *PreconditionError

	r := newDPReservation()
	if err := ApplyAdminAction(r, ActionRejectDP, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("REJECT_DP without proof = %v, want PreconditionError", err)
	}

	r = newDPReservation()
	r.ReservationStatus = model.ReservationDPPaid
	r.PaymentStatus = model.PaymentDPPaid
	if err := ApplyAdminAction(r, ActionRejectFinal, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("REJECT_FINAL without final proof = %v, want PreconditionError", err)
	}

	full := newFullReservation()
	if err := ApplyAdminAction(full, ActionRejectFinal, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("REJECT_FINAL without full proof = %v, want PreconditionError", err)
	}
	if err := ApplyAdminAction(full, ActionVerifyFinal, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("VERIFY_FINAL without full proof = %v, want PreconditionError", err)
	}
}

func TestActionsRejectWrongPaymentType(t *testing.T) {
	var pre *PreconditionError

	full := newFullReservation()
	if err := ApplyAdminAction(full, ActionVerifyDP, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("VERIFY_DP on FULL booking = %v, want PreconditionError", err)
	}
	if err := ApplyAdminAction(full, ActionRejectDP, 3, "", t0); !errors.As(err, &pre) {
		t.Fatalf("REJECT_DP on FULL booking = %v, want PreconditionError", err)
	}
	if err := SubmitProof(full, PhaseDP, "x.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("dp proof on FULL booking = %v, want PreconditionError", err)
	}

	dp := newDPReservation()
	if err := SubmitProof(dp, PhaseFull, "x.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("full proof on DP booking = %v, want PreconditionError", err)
	}
}

func TestSubmitFinalRequiresVerifiedDP(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	var pre *PreconditionError
	if err := SubmitProof(r, PhaseFinal, "pelunasan.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("final proof before VERIFY_DP = %v, want PreconditionError", err)
	}
}

func TestSubmitFinalRefusesDoubleSubmission(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	mustApply(t, r, ActionVerifyDP, 3)
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	var pre *PreconditionError
	if err := SubmitProof(r, PhaseFinal, "again.jpg", "BUDI"); !errors.As(err, &pre) {
		t.Fatalf("second pending final proof = %v, want PreconditionError", err)
	}
}

func TestUnknownActionAndPhase(t *testing.T) {
	r := newDPReservation()
	var vErr *ValidationError
	if err := ApplyAdminAction(r, "APPROVE", 3, "", t0); !errors.As(err, &vErr) {
		t.Fatalf("unknown action = %v, want ValidationError", err)
	}
	if err := SubmitProof(r, "deposit", "x.jpg", "BUDI"); !errors.As(err, &vErr) {
		t.Fatalf("unknown phase = %v, want ValidationError", err)
	}
	if err := SubmitProof(r, PhaseDP, "   ", "BUDI"); !errors.As(err, &vErr) {
		t.Fatalf("blank proof = %v, want ValidationError", err)
	}
}

func TestPaymentNotesAppendOnly(t *testing.T) {
	r := newDPReservation()
	mustSubmit(t, r, PhaseDP, "dp.jpg")
	if err := ApplyAdminAction(r, ActionVerifyDP, 3, "ok, amount matches", t0); err != nil {
		t.Fatalf("VERIFY_DP = %v", err)
	}
	first := r.PaymentNotes
	if !strings.Contains(first, "VERIFY_DP") || !strings.Contains(first, "ok, amount matches") {
		t.Fatalf("note line = %q", first)
	}
	mustSubmit(t, r, PhaseFinal, "pelunasan.jpg")
	if err := ApplyAdminAction(r, ActionRejectFinal, 4, "wrong amount", t0.Add(time.Hour)); err != nil {
		t.Fatalf("REJECT_FINAL = %v", err)
	}
	if !strings.HasPrefix(r.PaymentNotes, first) {
		t.Fatal("earlier audit lines were rewritten")
	}
	if len(strings.Split(r.PaymentNotes, "\n")) != 2 {
		t.Fatalf("audit log = %q, want two lines", r.PaymentNotes)
	}
}
