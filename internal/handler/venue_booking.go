package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
	"github.com/campusconnect/campus-reservation/internal/service"
)

// BookingHandler serves the venue booking workflow: submission by faculty,
// approval decisions by administrators, cancellation by the requester. State
// changes go through the booking service; read-only listings hit the
// repository directly.
type BookingHandler struct {
	Bookings *service.VenueBookingService
	Repo     *repository.BookingRepo
}

func NewBookingHandler(svc *service.VenueBookingService, repo *repository.BookingRepo) *BookingHandler {
	if svc == nil || repo == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: svc, Repo: repo}
}

type createBookingReq struct {
	VenueID  uint64    `json:"venue_id"`
	Purpose  string    `json:"purpose"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type rejectBookingReq struct {
	Reason string `json:"reason"`
}

// CreateBooking handles POST /v1/venue-bookings. The booking starts PENDING;
// overlap with other pending requests is allowed and resolved at approval
// time. Requests that already collide with an approved booking are refused
// with 409 up front.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.VenueID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id is required"})
	}
	if strings.TrimSpace(req.Purpose) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "purpose is required"})
	}
	b, err := h.Bookings.Create(c.Request().Context(), userID, req.VenueID,
		strings.TrimSpace(req.Purpose), req.StartsAt, req.EndsAt)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": b})
}

// GetBooking handles GET /v1/venue-bookings/:id. Requesters see their own
// bookings; administrators see all of them.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	b, err := h.Repo.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if getRole(c) != model.RoleAdmin && b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// ListMyBookings handles GET /v1/my-bookings.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Repo.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListVenueBookings handles GET /v1/venues/:id/bookings (admin).
func (h *BookingHandler) ListVenueBookings(c echo.Context) error {
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	items, err := h.Repo.ListByVenue(c.Request().Context(), venueID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPendingBookings handles GET /v1/venue-bookings/pending (admin). Rows
// come back oldest first so decisions happen in arrival order.
func (h *BookingHandler) ListPendingBookings(c echo.Context) error {
	items, err := h.Repo.ListByStatus(c.Request().Context(), string(reservation.BookingPending))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ApproveBooking handles POST /v1/venue-bookings/:id/approve (admin). A 409
// means the slot was taken by another approval since submission; the booking
// stays PENDING and can be rejected instead.
func (h *BookingHandler) ApproveBooking(c echo.Context) error {
	approverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	b, err := h.Bookings.Approve(c.Request().Context(), id, approverID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// RejectBooking handles POST /v1/venue-bookings/:id/reject (admin).
func (h *BookingHandler) RejectBooking(c echo.Context) error {
	approverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req rejectBookingReq
	_ = c.Bind(&req) // empty body is fine, a default reason is recorded
	b, err := h.Bookings.Reject(c.Request().Context(), id, approverID, strings.TrimSpace(req.Reason))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// CancelBooking handles DELETE /v1/venue-bookings/:id. Only APPROVED
// bookings can be cancelled, by their requester or an administrator.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Bookings.Cancel(c.Request().Context(), id, userID, getRole(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
