package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/service"
)

// EventHandler serves events and their registrations. Seat accounting goes
// through the registration service so the capacity pool and waitlist stay
// consistent; read-only listings hit the repositories directly.
type EventHandler struct {
	Registrations *service.EventRegistrationService
	Events        *repository.EventRepo
	Rows          *repository.RegistrationRepo
}

func NewEventHandler(svc *service.EventRegistrationService, events *repository.EventRepo, rows *repository.RegistrationRepo) *EventHandler {
	if svc == nil || events == nil || rows == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Registrations: svc, Events: events, Rows: rows}
}

type createEventReq struct {
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	VenueID      *uint64   `json:"venue_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	MaxAttendees uint32    `json:"max_attendees"`
	IsPublic     bool      `json:"is_public"`
}

type cancelRegistrationReq struct {
	Reason *string `json:"reason"`
}

type attendedReq struct {
	Attended bool `json:"attended"`
}

// CreateEvent handles POST /v1/events. Faculty and admin only; events
// created by admins are approved immediately.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.MaxAttendees == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_attendees must be positive"})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	e := &model.Event{
		Title:        req.Title,
		Description:  req.Description,
		VenueID:      req.VenueID,
		OrganizerID:  userID,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt.UTC(),
		MaxAttendees: req.MaxAttendees,
		IsPublic:     req.IsPublic,
	}
	if err := h.Registrations.CreateEvent(c.Request().Context(), e, getRole(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": e})
}

// ApproveEvent handles POST /v1/events/:id/approve (admin). Approval opens
// the event's seat ledger so registrations start being accepted.
func (h *EventHandler) ApproveEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	e, err := h.Registrations.ApproveEvent(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": e})
}

// ListEvents handles GET /v1/events: public approved events, soonest first.
func (h *EventHandler) ListEvents(c echo.Context) error {
	items, err := h.Events.ListPublicApproved(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id and includes the live seat picture.
func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	taken, open, waiting, err := h.Registrations.Availability(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item": e,
		"availability": echo.Map{
			"registered": taken,
			"open":       open,
			"waitlisted": waiting,
		},
	})
}

// Register handles POST /v1/events/:id/register. A full event queues the
// registration and the response status field says WAITLISTED; both outcomes
// are 201.
func (h *EventHandler) Register(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	g, err := h.Registrations.Register(c.Request().Context(), id, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": g})
}

// CancelRegistration handles DELETE /v1/registrations/:id. Freed seats go to
// the waitlist head before any new registration can claim them.
func (h *EventHandler) CancelRegistration(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req cancelRegistrationReq
	_ = c.Bind(&req)
	if err := h.Registrations.Cancel(c.Request().Context(), id, userID, getRole(c), req.Reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetAttended handles PATCH /v1/registrations/:id/attended (admin). The
// attendance flag is an audit field and stays writable after the
// registration is closed out.
func (h *EventHandler) SetAttended(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req attendedReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Registrations.SetAttended(c.Request().Context(), id, req.Attended); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMyRegistrations handles GET /v1/my-registrations.
func (h *EventHandler) ListMyRegistrations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Rows.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListEventRegistrations handles GET /v1/events/:id/registrations. Organizers
// and administrators may inspect the attendee list.
func (h *EventHandler) ListEventRegistrations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	e, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if getRole(c) != model.RoleAdmin && e.OrganizerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	items, err := h.Rows.ListByEvent(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
