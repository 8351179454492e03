package handler

import (
	"errors"   // for errors.Is / errors.As comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // working with dates and timestamps

	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/booking"
	"github.com/danuarta/field-booking/internal/model"
	"github.com/danuarta/field-booking/internal/queue"
	"github.com/danuarta/field-booking/internal/repository"
	queuepublisher "github.com/danuarta/field-booking/internal/service"
)

// BookingHandler serves the customer-facing reservation flow: creating
// a booking, listing and inspecting one's own bookings, rescheduling,
// and submitting payment proofs.  JWT authentication and role checks
// run in middleware; every state-changing method executes its critical
// reads and writes inside one transaction so a concurrent request on
// the same field or reservation cannot observe a half-applied change.
type BookingHandler struct {
	FieldRepo       *repository.FieldRepo          // field lookup and pricing
	ReservationRepo *repository.ReservationRepo    // reservations and their slot rows
	ScheduleRepo    *repository.MemberScheduleRepo // recurring member rules feeding the availability engine
}

// NewBookingHandler constructs a BookingHandler.  All dependencies
// must be non-nil.
func NewBookingHandler(fieldRepo *repository.FieldRepo, resRepo *repository.ReservationRepo, schedRepo *repository.MemberScheduleRepo) *BookingHandler {
	if fieldRepo == nil || resRepo == nil || schedRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{FieldRepo: fieldRepo, ReservationRepo: resRepo, ScheduleRepo: schedRepo}
}

// ----- DTOs -----

type createReservationReq struct {
	FieldID     uint64 `json:"field_id" validate:"required"`
	Date        string `json:"date" validate:"required"` // YYYY-MM-DD
	StartHour   int    `json:"start_hour" validate:"min=0,max=23"`
	EndHour     int    `json:"end_hour" validate:"min=0,max=24"`
	PaymentType string `json:"payment_type" validate:"required,oneof=FULL DP"`
	Notes       string `json:"notes"`
}

type rescheduleReq struct {
	Date      string `json:"date" validate:"required"`
	StartHour int    `json:"start_hour" validate:"min=0,max=23"`
	EndHour   int    `json:"end_hour" validate:"min=0,max=24"`
}

type submitProofReq struct {
	Phase             string `json:"phase" validate:"required,oneof=dp final full"`
	ProofRef          string `json:"proof_ref" validate:"required"`
	SenderAccountName string `json:"sender_account_name" validate:"required"`
}

// reservationView is the JSON shape returned for a reservation.  The
// payment status goes through Label() so the legacy rejected-payment
// vocabulary stays stable for clients.
type reservationView struct {
	ID                uint64     `json:"id"`
	UserID            uint64     `json:"user_id"`
	FieldID           uint64     `json:"field_id"`
	Date              string     `json:"date"`
	StartHour         int        `json:"start_hour"`
	EndHour           int        `json:"end_hour"`
	PaymentType       string     `json:"payment_type"`
	TotalPrice        int64      `json:"total_price"`
	PaymentAmount     int64      `json:"payment_amount"`
	ReservationStatus string     `json:"reservation_status"`
	PaymentStatus     string     `json:"payment_status"`
	FullProof         *string    `json:"full_proof"`
	DPProof           *string    `json:"dp_proof"`
	FinalProof        *string    `json:"final_proof"`
	Notes             string     `json:"notes,omitempty"`
	PaymentNotes      string     `json:"payment_notes,omitempty"`
	DPValidatorID     *uint64    `json:"dp_validator_id,omitempty"`
	DPValidatedAt     *time.Time `json:"dp_validated_at,omitempty"`
	FinalValidatorID  *uint64    `json:"final_validator_id,omitempty"`
	FinalValidatedAt  *time.Time `json:"final_validated_at,omitempty"`
	HandledBy         *uint64    `json:"handled_by,omitempty"`
	HandledAt         *time.Time `json:"handled_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toReservationView(r *model.Reservation) reservationView {
	return reservationView{
		ID:                r.ID,
		UserID:            r.UserID,
		FieldID:           r.FieldID,
		Date:              r.PlayDate.Format("2006-01-02"),
		StartHour:         r.StartHour,
		EndHour:           r.EndHour,
		PaymentType:       string(r.PaymentType),
		TotalPrice:        r.TotalPrice,
		PaymentAmount:     r.PaymentAmount,
		ReservationStatus: string(r.ReservationStatus),
		PaymentStatus:     r.PaymentStatus.Label(),
		FullProof:         r.FullProof,
		DPProof:           r.DPProof,
		FinalProof:        r.FinalProof,
		Notes:             r.Notes,
		PaymentNotes:      r.PaymentNotes,
		DPValidatorID:     r.DPValidatorID,
		DPValidatedAt:     r.DPValidatedAt,
		FinalValidatorID:  r.FinalValidatorID,
		FinalValidatedAt:  r.FinalValidatedAt,
		HandledBy:         r.HandledBy,
		HandledAt:         r.HandledAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// writeDomainError maps domain and repository errors onto HTTP
// responses.  Conflicts and precondition failures are routine
// outcomes, not server failures, so they are answered directly and
// never logged as errors.
func writeDomainError(c echo.Context, err error) error {
	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Error()})
	}
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":          "slot conflict",
			"hour":           conflict.Hour,
			"with":           conflict.With,
			"reservation_id": conflict.ReservationID,
			"member_name":    conflict.MemberName,
			"contact_name":   conflict.ContactName,
		})
	}
	var pre *booking.PreconditionError
	if errors.As(err, &pre) {
		return c.JSON(http.StatusConflict, echo.Map{"error": pre.Error()})
	}
	var nf *booking.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": nf.Error()})
	}
	switch {
	case errors.Is(err, repository.ErrFieldNotFound),
		errors.Is(err, repository.ErrReservationNotFound),
		errors.Is(err, repository.ErrMemberScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
	case errors.Is(err, repository.ErrStaleState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation state changed, please refresh"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// CreateReservation handles POST /v1/reservations.  The requested hour
// range is validated, then re-checked for conflicts inside the same
// transaction that inserts the reservation and its slot rows; the
// unique slot key backstops any race the in-transaction check misses.
// Price and initial payment amount are computed server-side from the
// field's hourly rate.
func (h *BookingHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	playDate, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if err := booking.ValidateHourRange(req.StartHour, req.EndHour); err != nil {
		return writeDomainError(c, err)
	}
	now := time.Now().UTC()
	if !booking.SlotStart(playDate, req.StartHour).After(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot book a slot in the past"})
	}

	ctx := c.Request().Context()
	tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	field, err := h.FieldRepo.GetByIDTx(ctx, tx, req.FieldID)
	if err != nil {
		return writeDomainError(c, err)
	}
	if !field.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "field is not accepting bookings"})
	}

	// conflict check, atomic with the insert below
	sameDay, err := h.ReservationRepo.ListByFieldAndDateTx(ctx, tx, field.ID, playDate)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	schedules, err := h.ScheduleRepo.ListByFieldTx(ctx, tx, field.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	slots := booking.BuildDaySlots(playDate, sameDay, schedules, now)
	if err := booking.CheckRange(slots, req.StartHour, req.EndHour, 0); err != nil {
		return writeDomainError(c, err)
	}

	paymentType := model.PaymentType(req.PaymentType)
	total := booking.TotalPrice(field.PricePerHour, req.StartHour, req.EndHour)
	res := &model.Reservation{
		UserID:            userID,
		FieldID:           field.ID,
		PlayDate:          playDate,
		StartHour:         req.StartHour,
		EndHour:           req.EndHour,
		PaymentType:       paymentType,
		TotalPrice:        total,
		PaymentAmount:     booking.InitialPaymentAmount(paymentType, total),
		ReservationStatus: model.ReservationPending,
		PaymentStatus:     model.PaymentPending,
		Notes:             req.Notes,
	}
	if err := h.ReservationRepo.CreateTx(ctx, tx, res); err != nil {
		return writeDomainError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// best-effort domain event; failures are logged inside the publisher
	_ = queuepublisher.PublishReservationEvent(ctx, queue.NewReservationEvent(queue.EventReservationCreated, res))

	return c.JSON(http.StatusCreated, echo.Map{"item": toReservationView(res)})
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *BookingHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.ReservationRepo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	views := make([]reservationView, 0, len(items))
	for i := range items {
		views = append(views, toReservationView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views, "count": len(views)})
}

// GetReservation handles GET /v1/reservations/:id.  Customers can only
// read their own reservations; admins can read any.
func (h *BookingHandler) GetReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.ReservationRepo.GetByID(c.Request().Context(), resID)
	if err != nil {
		return writeDomainError(c, err)
	}
	if res.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationView(&res)})
}

// Reschedule handles PUT /v1/reservations/:id/schedule.  It moves a
// reservation to a new date/time after re-running the conflict check
// against the new slots, ignoring the reservation's own current
// occupancy.  The duration must stay the same so the agreed price
// holds, and payment state is never touched.
func (h *BookingHandler) Reschedule(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req rescheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	newDate, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if err := booking.ValidateHourRange(req.StartHour, req.EndHour); err != nil {
		return writeDomainError(c, err)
	}
	now := time.Now().UTC()
	if !booking.SlotStart(newDate, req.StartHour).After(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot reschedule into the past"})
	}

	ctx := c.Request().Context()
	tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservationRepo.GetByIDForUpdateTx(ctx, tx, resID)
	if err != nil {
		return writeDomainError(c, err)
	}
	if res.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if res.ReservationStatus.IsTerminal() {
		return writeDomainError(c, &booking.PreconditionError{
			Action: "reschedule", Reason: "reservation is " + string(res.ReservationStatus)})
	}
	if req.EndHour-req.StartHour != res.Hours() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reschedule must keep the booked duration"})
	}

	sameDay, err := h.ReservationRepo.ListByFieldAndDateTx(ctx, tx, res.FieldID, newDate)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	schedules, err := h.ScheduleRepo.ListByFieldTx(ctx, tx, res.FieldID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	slots := booking.BuildDaySlots(newDate, sameDay, schedules, now)
	if err := booking.CheckRange(slots, req.StartHour, req.EndHour, res.ID); err != nil {
		return writeDomainError(c, err)
	}

	res.PlayDate = newDate
	res.StartHour = req.StartHour
	res.EndHour = req.EndHour
	if err := h.ReservationRepo.UpdateScheduleTx(ctx, tx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update reservation"})
	}
	if err := h.ReservationRepo.MoveSlotsTx(ctx, tx, &res); err != nil {
		return writeDomainError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationView(&res)})
}

// SubmitProof handles POST /v1/reservations/:id/proof.  The customer
// records a transfer proof reference for one payment phase.  The state
// machine validates the phase against the current payment state; the
// status-guarded update turns any lost race into a stale-state
// conflict instead of a silent overwrite.
func (h *BookingHandler) SubmitProof(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req submitProofReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservationRepo.GetByIDForUpdateTx(ctx, tx, resID)
	if err != nil {
		return writeDomainError(c, err)
	}
	if res.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	prevRes, prevPay := res.ReservationStatus, res.PaymentStatus
	if err := booking.SubmitProof(&res, req.Phase, req.ProofRef, req.SenderAccountName); err != nil {
		return writeDomainError(c, err)
	}
	if err := h.ReservationRepo.UpdateStateTx(ctx, tx, &res, prevRes, prevPay); err != nil {
		return writeDomainError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"item": toReservationView(&res)})
}
