package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/repository"
)

// AdminFieldHandler manages the field catalogue: creating fields,
// adjusting prices, and deactivating fields that should stop taking
// bookings. Deactivation is a soft switch; existing reservations on a
// deactivated field keep their slots.
type AdminFieldHandler struct {
	FieldRepo *repository.FieldRepo
}

// NewAdminFieldHandler constructs an AdminFieldHandler.
func NewAdminFieldHandler(fieldRepo *repository.FieldRepo) *AdminFieldHandler {
	if fieldRepo == nil {
		panic("nil repository passed to NewAdminFieldHandler")
	}
	return &AdminFieldHandler{FieldRepo: fieldRepo}
}

type createFieldReq struct {
	Name         string `json:"name" validate:"required"`
	PricePerHour int64  `json:"price_per_hour" validate:"required,gt=0"`
}

type updateFieldReq struct {
	Name         string `json:"name" validate:"required"`
	PricePerHour int64  `json:"price_per_hour" validate:"required,gt=0"`
	IsActive     bool   `json:"is_active"`
}

// CreateField handles POST /v1/admin/fields.
func (h *AdminFieldHandler) CreateField(c echo.Context) error {
	var req createFieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	field, err := h.FieldRepo.Create(c.Request().Context(), req.Name, req.PricePerHour)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create field"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toFieldView(&field)})
}

// ListFields handles GET /v1/admin/fields. Unlike the public listing
// it includes deactivated fields.
func (h *AdminFieldHandler) ListFields(c echo.Context) error {
	fields, err := h.FieldRepo.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load fields"})
	}
	views := make([]fieldView, 0, len(fields))
	for i := range fields {
		views = append(views, toFieldView(&fields[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views, "count": len(views)})
}

// UpdateField handles PUT /v1/admin/fields/:id. Price changes apply to
// new bookings only; an existing reservation keeps the total that was
// computed when it was created.
func (h *AdminFieldHandler) UpdateField(c echo.Context) error {
	fieldID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || fieldID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid field id"})
	}
	var req updateFieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	field, err := h.FieldRepo.Update(c.Request().Context(), fieldID, req.Name, req.PricePerHour, req.IsActive)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toFieldView(&field)})
}
