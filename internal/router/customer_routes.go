package router

import (
	"github.com/labstack/echo/v4"

	"github.com/danuarta/field-booking/internal/handler"
	"github.com/danuarta/field-booking/internal/middleware"
)

// RegisterCustomer registers the reservation endpoints under /v1.  All
// routes require a valid JWT.  Both roles are accepted: customers book
// and pay for themselves, and the handlers' ownership checks let an
// admin read or reschedule any reservation through the same routes.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	// Create a booking: the hour range is conflict-checked and priced in
	// the same transaction that claims the slot rows.
	g.POST("/reservations", h.CreateReservation)
	// List the caller's own reservations.
	g.GET("/my-reservations", h.ListMyReservations)
	// Reservation detail; owners see their own, admins see any.
	g.GET("/reservations/:id", h.GetReservation)
	// Move a reservation to a new date/time.  Duration and payment state
	// stay fixed; only the slots move.
	g.PUT("/reservations/:id/schedule", h.Reschedule)
	// Record a transfer proof for one payment phase (dp, final or full).
	g.POST("/reservations/:id/proof", h.SubmitProof)
}
