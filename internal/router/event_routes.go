package router

import (
	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/handler"
	"github.com/campusconnect/campus-reservation/internal/middleware"
	"github.com/campusconnect/campus-reservation/internal/model"
)

// RegisterEvents registers event browsing and the registration lifecycle.
// Event creation is limited to faculty and administrators; event approval
// and attendance marking are admin-only.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleStudent, model.RoleFaculty, model.RoleAdmin))

	auth.GET("/events", h.ListEvents)
	auth.GET("/events/:id", h.GetEvent)
	auth.POST("/events/:id/register", h.Register)
	auth.GET("/events/:id/registrations", h.ListEventRegistrations)
	auth.DELETE("/registrations/:id", h.CancelRegistration)
	auth.GET("/my-registrations", h.ListMyRegistrations)

	organizer := e.Group("/v1")
	organizer.Use(middleware.JWTAuth(jwtSecret))
	organizer.Use(middleware.RequireRole(model.RoleFaculty, model.RoleAdmin))

	organizer.POST("/events", h.CreateEvent)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))

	admin.POST("/events/:id/approve", h.ApproveEvent)
	admin.PATCH("/registrations/:id/attended", h.SetAttended)
}
