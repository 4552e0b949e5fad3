package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/handler"
	"github.com/campusconnect/campus-reservation/internal/middleware"
	"github.com/campusconnect/campus-reservation/internal/model"
)

// RegisterRides registers ride-share routes. Any authenticated user can
// offer a ride or request seats; accept, reject and complete are enforced
// against the ride's driver inside the service.
func RegisterRides(e *echo.Echo, h *handler.RideHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleStudent, model.RoleFaculty, model.RoleAdmin))

	auth.POST("/rides", h.CreateRide)
	auth.GET("/rides", h.ListRides)
	auth.GET("/rides/:id", h.GetRide)
	auth.DELETE("/rides/:id", h.CancelRide)
	auth.POST("/rides/:id/complete", h.CompleteRide)
	auth.POST("/rides/:id/requests", h.RequestSeats)
	auth.GET("/rides/:id/requests", h.ListRideRequests)
	auth.POST("/ride-requests/:id/accept", h.AcceptRequest)
	auth.POST("/ride-requests/:id/reject", h.RejectRequest)
	auth.GET("/my-ride-requests", h.ListMyRideRequests)
}
