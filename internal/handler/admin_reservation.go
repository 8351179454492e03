package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path and query parameters
	"time"     // action timestamps

	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/booking"
	"github.com/danuarta/field-booking/internal/model"
	"github.com/danuarta/field-booking/internal/queue"
	"github.com/danuarta/field-booking/internal/repository"
	queuepublisher "github.com/danuarta/field-booking/internal/service"
)

// AdminReservationHandler serves the back-office payment desk: the
// filtered reservation listing and the verification actions. Routes
// using it sit behind RequireRole("ADMIN").
type AdminReservationHandler struct {
	ReservationRepo *repository.ReservationRepo
}

// NewAdminReservationHandler constructs an AdminReservationHandler.
func NewAdminReservationHandler(resRepo *repository.ReservationRepo) *AdminReservationHandler {
	if resRepo == nil {
		panic("nil repository passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{ReservationRepo: resRepo}
}

type adminActionReq struct {
	Action string `json:"action" validate:"required,oneof=VERIFY_DP REJECT_DP VERIFY_FINAL REJECT_FINAL REFUND"`
	Note   string `json:"note"`
}

// ListReservations handles GET /v1/admin/reservations. Optional query
// filters: field_id, date (YYYY-MM-DD), reservation_status,
// payment_status. Unknown filter values simply match nothing; the
// database does the filtering.
func (h *AdminReservationHandler) ListReservations(c echo.Context) error {
	var filter repository.AdminFilter
	if raw := c.QueryParam("field_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field_id"})
		}
		filter.FieldID = id
	}
	if raw := c.QueryParam("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
		}
		filter.Date = &d
	}
	filter.ReservationStatus = model.ReservationStatus(c.QueryParam("reservation_status"))
	filter.PaymentStatus = model.PaymentStatus(c.QueryParam("payment_status"))

	items, err := h.ReservationRepo.ListForAdmin(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	views := make([]reservationView, 0, len(items))
	for i := range items {
		views = append(views, toReservationView(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views, "count": len(views)})
}

// HandleAction handles POST /v1/admin/reservations/:id/action. The
// reservation row is locked, the state machine applies the action, and
// the write is guarded by the statuses read under the lock, so two
// admins acting on the same reservation cannot both win: the second
// one gets a conflict. Slot rows are freed in the same transaction
// whenever the action lands the reservation in a terminal status, so
// the hours reopen atomically with the decision.
func (h *AdminReservationHandler) HandleAction(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req adminActionReq
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
	prevRes, prevPay := res.ReservationStatus, res.PaymentStatus
	if err := booking.ApplyAdminAction(&res, req.Action, adminID, req.Note, time.Now().UTC()); err != nil {
		return writeDomainError(c, err)
	}
	if err := h.ReservationRepo.UpdateStateTx(ctx, tx, &res, prevRes, prevPay); err != nil {
		return writeDomainError(c, err)
	}
	if !prevRes.IsTerminal() && res.ReservationStatus.IsTerminal() {
		if err := h.ReservationRepo.FreeSlotsTx(ctx, tx, res.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release slots"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	// best-effort domain event; failures are logged inside the publisher
	_ = queuepublisher.PublishReservationEvent(ctx, queue.NewReservationEvent(eventTypeForAction(req.Action), &res))

	return c.JSON(http.StatusOK, echo.Map{"item": toReservationView(&res)})
}

// eventTypeForAction maps an admin action onto the event published for it.
func eventTypeForAction(action string) string {
	switch action {
	case booking.ActionVerifyDP, booking.ActionVerifyFinal:
		return queue.EventPaymentVerified
	case booking.ActionRejectDP, booking.ActionRejectFinal:
		return queue.EventPaymentRejected
	case booking.ActionRefund:
		return queue.EventReservationRefunded
	}
	return queue.EventPaymentRejected
}
