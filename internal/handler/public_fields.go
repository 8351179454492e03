package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // availability reference time

	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/booking"
	"github.com/danuarta/field-booking/internal/model"
	"github.com/danuarta/field-booking/internal/repository"
)

// PublicHandler serves the unauthenticated browse surface: the field
// catalogue and the per-day availability board. These endpoints sit
// behind the response cache and the public rate limiter.
type PublicHandler struct {
	FieldRepo       *repository.FieldRepo
	ReservationRepo *repository.ReservationRepo
	ScheduleRepo    *repository.MemberScheduleRepo
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(fieldRepo *repository.FieldRepo, resRepo *repository.ReservationRepo, schedRepo *repository.MemberScheduleRepo) *PublicHandler {
	if fieldRepo == nil || resRepo == nil || schedRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{FieldRepo: fieldRepo, ReservationRepo: resRepo, ScheduleRepo: schedRepo}
}

type fieldView struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	PricePerHour int64  `json:"price_per_hour"`
	IsActive     bool   `json:"is_active"`
}

func toFieldView(f *model.Field) fieldView {
	return fieldView{ID: f.ID, Name: f.Name, PricePerHour: f.PricePerHour, IsActive: f.IsActive}
}

// ListFields handles GET /v1/fields. Only active fields are shown to
// the public; admins use their own listing to see everything.
func (h *PublicHandler) ListFields(c echo.Context) error {
	fields, err := h.FieldRepo.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load fields"})
	}
	views := make([]fieldView, 0, len(fields))
	for i := range fields {
		views = append(views, toFieldView(&fields[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views, "count": len(views)})
}

// GetField handles GET /v1/fields/:id.
func (h *PublicHandler) GetField(c echo.Context) error {
	fieldID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || fieldID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	field, err := h.FieldRepo.GetByID(c.Request().Context(), fieldID)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toFieldView(&field)})
}

// GetAvailability handles GET /v1/fields/:id/availability?date=YYYY-MM-DD.
// It returns the full 14-slot board for one field and day: every hour
// from opening to closing marked available, booked, or member, with
// the occupant attached where one exists. Terminal reservations do not
// occupy slots, recurring member rules win over one-off bookings on
// display, and hours whose start time has passed are never available.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
	fieldID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || fieldID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or missing date, want YYYY-MM-DD"})
	}

	ctx := c.Request().Context()
	field, err := h.FieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return writeDomainError(c, err)
	}
	reservations, err := h.ReservationRepo.ListByFieldAndDate(ctx, field.ID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	schedules, err := h.ScheduleRepo.ListByField(ctx, field.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load member schedules"})
	}

	slots := booking.BuildDaySlots(date, reservations, schedules, time.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{
		"field": toFieldView(&field),
		"date":  date.Format("2006-01-02"),
		"slots": slots,
	})
}
