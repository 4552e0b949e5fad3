package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/handler"
	"github.com/campusconnect/campus-reservation/internal/middleware"
	"github.com/campusconnect/campus-reservation/internal/model"
)

// RegisterVenueBookings registers the venue catalog and the booking
// approval workflow. Anyone authenticated can browse venues and their own
// bookings; submitting a booking takes the faculty tier, and approval
// decisions and venue management are admin-only.
func RegisterVenueBookings(e *echo.Echo, v *handler.VenueHandler, b *handler.BookingHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleStudent, model.RoleFaculty, model.RoleAdmin))

	auth.GET("/venues", v.ListVenues)
	auth.GET("/venues/:id", v.GetVenue)

	auth.GET("/venue-bookings/:id", b.GetBooking)
	auth.DELETE("/venue-bookings/:id", b.CancelBooking)
	auth.GET("/my-bookings", b.ListMyBookings)

	staff := e.Group("/v1")
	staff.Use(middleware.JWTAuth(jwtSecret))
	staff.Use(middleware.RequireRole(model.RoleFaculty, model.RoleAdmin))

	staff.POST("/venue-bookings", b.CreateBooking)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.POST("/venues", v.CreateVenue)
	admin.GET("/venues/:id/bookings", b.ListVenueBookings)
	admin.GET("/venue-bookings/pending", b.ListPendingBookings)
	admin.POST("/venue-bookings/:id/approve", b.ApproveBooking)
	admin.POST("/venue-bookings/:id/reject", b.RejectBooking)
}
