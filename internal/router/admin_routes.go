package router

// This file registers the back-office routes: the payment verification
// desk, the field catalogue and the recurring member schedules.  They
// are kept separate from the customer routes so the ADMIN role gate is
// applied in exactly one place.

import (
	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/handler"
	"github.com/danuarta/field-booking/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, r *handler.AdminReservationHandler, f *handler.AdminFieldHandler, m *handler.AdminMemberHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Payment desk ----
	g.GET("/reservations", r.ListReservations)
	g.POST("/reservations/:id/action", r.HandleAction)

	// ---- Fields ----
	g.POST("/fields", f.CreateField)
	g.GET("/fields", f.ListFields)
	g.PUT("/fields/:id", f.UpdateField)
	g.PATCH("/fields/:id", f.UpdateField) // allow partial/semantic updates via PATCH as well

	// ---- Member schedules ----
	g.POST("/member-schedules", m.CreateSchedule)
	g.GET("/member-schedules", m.ListSchedules)
	g.PUT("/member-schedules/:id", m.UpdateSchedule)
	g.DELETE("/member-schedules/:id", m.DeleteSchedule)
}
