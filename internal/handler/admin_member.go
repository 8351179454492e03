package handler

import (
	"context"      // request-scoped cancellation for the conflict check
	"database/sql" // transaction handle threaded through the conflict check
	"net/http"     // HTTP status codes
	"strconv"      // parsing path parameters

	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/booking"
	"github.com/danuarta/field-booking/internal/model"
	"github.com/danuarta/field-booking/internal/repository"
)

// AdminMemberHandler manages recurring weekly member schedules.  A
// schedule is a rule, not a block of bookings: creating one claims a
// weekday hour range on a field for the membership window, and the
// availability engine applies it on demand.  Every create and update
// therefore validates the rule against the field's other rules and its
// existing one-off reservations inside one transaction.
type AdminMemberHandler struct {
	FieldRepo       *repository.FieldRepo
	ReservationRepo *repository.ReservationRepo
	ScheduleRepo    *repository.MemberScheduleRepo
}

// NewAdminMemberHandler constructs an AdminMemberHandler.
func NewAdminMemberHandler(fieldRepo *repository.FieldRepo, resRepo *repository.ReservationRepo, schedRepo *repository.MemberScheduleRepo) *AdminMemberHandler {
	if fieldRepo == nil || resRepo == nil || schedRepo == nil {
		panic("nil repository passed to NewAdminMemberHandler")
	}
	return &AdminMemberHandler{FieldRepo: fieldRepo, ReservationRepo: resRepo, ScheduleRepo: schedRepo}
}

type memberScheduleReq struct {
	MemberName  string `json:"member_name" validate:"required"`
	ContactName string `json:"contact_name" validate:"required"`
	FieldID     uint64 `json:"field_id" validate:"required"`
	DayOfWeek   string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartHour   int    `json:"start_hour" validate:"min=0,max=23"`
	EndHour     int    `json:"end_hour" validate:"min=0,max=24"`
	PackageType string `json:"package_type" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"` // YYYY-MM-DD
	EndDate     string `json:"end_date" validate:"required"`   // YYYY-MM-DD
	IsActive    *bool  `json:"is_active"`
}

type memberScheduleView struct {
	ID          uint64 `json:"id"`
	FieldID     uint64 `json:"field_id"`
	DayOfWeek   string `json:"day_of_week"`
	StartHour   int    `json:"start_hour"`
	EndHour     int    `json:"end_hour"`
	PackageType string `json:"package_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsActive    bool   `json:"is_active"`
}

// memberGroupView is one logical member: every schedule row sharing
// the same member name, contact and field.
type memberGroupView struct {
	MemberName  string               `json:"member_name"`
	ContactName string               `json:"contact_name"`
	FieldID     uint64               `json:"field_id"`
	Schedules   []memberScheduleView `json:"schedules"`
}

func toMemberScheduleView(m *model.MemberSchedule) memberScheduleView {
	return memberScheduleView{
		ID:          m.ID,
		FieldID:     m.FieldID,
		DayOfWeek:   m.DayOfWeek,
		StartHour:   m.StartHour,
		EndHour:     m.EndHour,
		PackageType: m.PackageType,
		StartDate:   m.StartDate.Format("2006-01-02"),
		EndDate:     m.EndDate.Format("2006-01-02"),
		IsActive:    m.IsActive,
	}
}

// scheduleFromReq builds the candidate rule from a request body.  Date
// parsing errors surface as 400s in the caller.
func scheduleFromReq(req *memberScheduleReq) (model.MemberSchedule, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return model.MemberSchedule{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return model.MemberSchedule{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return model.MemberSchedule{
		MemberName:  req.MemberName,
		ContactName: req.ContactName,
		FieldID:     req.FieldID,
		DayOfWeek:   req.DayOfWeek,
		StartHour:   req.StartHour,
		EndHour:     req.EndHour,
		PackageType: req.PackageType,
		StartDate:   start,
		EndDate:     end,
		IsActive:    active,
	}, nil
}

// CreateSchedule handles POST /v1/admin/member-schedules.
func (h *AdminMemberHandler) CreateSchedule(c echo.Context) error {
	var req memberScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cand, err := scheduleFromReq(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if cand.EndDate.Before(cand.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not precede start_date"})
	}

	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.FieldRepo.GetByIDTx(ctx, tx, cand.FieldID); err != nil {
		return writeDomainError(c, err)
	}
	if err := h.checkCandidateTx(ctx, tx, &cand, 0); err != nil {
		return writeDomainError(c, err)
	}
	if err := h.ScheduleRepo.CreateTx(ctx, tx, &cand); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create member schedule"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusCreated, echo.Map{"item": toMemberScheduleView(&cand)})
}

// UpdateSchedule handles PUT /v1/admin/member-schedules/:id.  The
// existing row is locked, then the new rule re-validated from scratch,
// ignoring the row's own current claim.
func (h *AdminMemberHandler) UpdateSchedule(c echo.Context) error {
	schedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || schedID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req memberScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	cand, err := scheduleFromReq(&req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}
	if cand.EndDate.Before(cand.StartDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must not precede start_date"})
	}

	ctx := c.Request().Context()
	tx, err := h.ScheduleRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := h.ScheduleRepo.GetByIDForUpdateTx(ctx, tx, schedID)
	if err != nil {
		return writeDomainError(c, err)
	}
	if _, err := h.FieldRepo.GetByIDTx(ctx, tx, cand.FieldID); err != nil {
		return writeDomainError(c, err)
	}
	cand.ID = existing.ID
	if err := h.checkCandidateTx(ctx, tx, &cand, existing.ID); err != nil {
		return writeDomainError(c, err)
	}
	if err := h.ScheduleRepo.UpdateTx(ctx, tx, &cand); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update member schedule"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"item": toMemberScheduleView(&cand)})
}

// checkCandidateTx runs the rule validation for cand inside tx: the
// field's other rules and its non-terminal reservations in the
// candidate's window are loaded under the same transaction, so nothing
// overlapping can land between the check and the insert.  The returned
// error is a domain error for the caller to map onto a response.
func (h *AdminMemberHandler) checkCandidateTx(ctx context.Context, tx *sql.Tx, cand *model.MemberSchedule, excludeID uint64) error {
	others, err := h.ScheduleRepo.ListByFieldTx(ctx, tx, cand.FieldID)
	if err != nil {
		return err
	}
	reservations, err := h.ReservationRepo.ListByFieldBetweenTx(ctx, tx, cand.FieldID, cand.StartDate, cand.EndDate)
	if err != nil {
		return err
	}
	return booking.CheckMemberCandidate(*cand, others, reservations, excludeID)
}

// DeleteSchedule handles DELETE /v1/admin/member-schedules/:id.
func (h *AdminMemberHandler) DeleteSchedule(c echo.Context) error {
	schedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || schedID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	if err := h.ScheduleRepo.Delete(c.Request().Context(), schedID); err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "member schedule deleted"})
}

// ListSchedules handles GET /v1/admin/member-schedules.  Rows are
// grouped into logical members by (member_name, contact_name,
// field_id); the repository's ordering keeps each group contiguous.
// An optional ?field_id= query narrows the listing to one field.
func (h *AdminMemberHandler) ListSchedules(c echo.Context) error {
	var fieldID uint64
	if raw := c.QueryParam("field_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field_id"})
		}
		fieldID = id
	}
	items, err := h.ScheduleRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load member schedules"})
	}
	if fieldID != 0 {
		kept := items[:0]
		for _, m := range items {
			if m.FieldID == fieldID {
				kept = append(kept, m)
			}
		}
		items = kept
	}
	groups := groupSchedules(items)
	return c.JSON(http.StatusOK, echo.Map{"items": groups, "count": len(groups)})
}

// groupSchedules folds schedule rows into logical members.  Rows must
// arrive ordered by (member_name, contact_name, field_id), which is
// what the repository's ListAll guarantees; a new group opens whenever
// any part of that key changes.
func groupSchedules(items []model.MemberSchedule) []memberGroupView {
	groups := make([]memberGroupView, 0)
	for i := range items {
		m := &items[i]
		n := len(groups)
		if n == 0 || groups[n-1].MemberName != m.MemberName ||
			groups[n-1].ContactName != m.ContactName || groups[n-1].FieldID != m.FieldID {
			groups = append(groups, memberGroupView{
				MemberName:  m.MemberName,
				ContactName: m.ContactName,
				FieldID:     m.FieldID,
			})
			n++
		}
		groups[n-1].Schedules = append(groups[n-1].Schedules, toMemberScheduleView(m))
	}
	return groups
}
