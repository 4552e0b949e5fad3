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

// RideHandler serves ride shares and their seat requests. The seat counter
// moves through the ride service; seats are committed when a request is
// made, not when the driver accepts it.
type RideHandler struct {
	Rides *service.RideShareService
	Repo  *repository.RideRepo
}

func NewRideHandler(svc *service.RideShareService, repo *repository.RideRepo) *RideHandler {
	if svc == nil || repo == nil {
		panic("nil dependency passed to NewRideHandler")
	}
	return &RideHandler{Rides: svc, Repo: repo}
}

type createRideReq struct {
	PickupLocation string    `json:"pickup_location"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	TotalSeats     uint32    `json:"total_seats"`
	PricePerSeat   *float64  `json:"price_per_seat"`
	ContactNumber  *string   `json:"contact_number"`
}

type requestSeatsReq struct {
	Seats   int     `json:"seats"`
	Message *string `json:"message"`
}

// CreateRide handles POST /v1/rides.
func (h *RideHandler) CreateRide(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.PickupLocation == "" || req.Destination == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pickup_location and destination are required"})
	}
	rs := &model.RideShare{
		DriverID:       driverID,
		PickupLocation: req.PickupLocation,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		TotalSeats:     req.TotalSeats,
		PricePerSeat:   req.PricePerSeat,
		ContactNumber:  req.ContactNumber,
	}
	if err := h.Rides.CreateRide(c.Request().Context(), rs); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": rs})
}

// ListRides handles GET /v1/rides: rides still taking requests, soonest
// departure first.
func (h *RideHandler) ListRides(c echo.Context) error {
	items, err := h.Repo.ListActive(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRide handles GET /v1/rides/:id and reports the live seat count.
func (h *RideHandler) GetRide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rs, err := h.Repo.GetRideByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	available, err := h.Rides.AvailableSeats(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rs, "available_seats": available})
}

// RequestSeats handles POST /v1/rides/:id/requests. The claim is all or
// nothing: either every requested seat is taken or the request fails with
// 409 and the counter is untouched.
func (h *RideHandler) RequestSeats(c echo.Context) error {
	passengerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req requestSeatsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rq, err := h.Rides.RequestSeats(c.Request().Context(), id, passengerID, req.Seats, req.Message)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": rq})
}

// AcceptRequest handles POST /v1/ride-requests/:id/accept (driver only).
func (h *RideHandler) AcceptRequest(c echo.Context) error {
	return h.decide(c, true)
}

// RejectRequest handles POST /v1/ride-requests/:id/reject (driver only). The
// seats stay committed; a rejection never returns them to the pool.
func (h *RideHandler) RejectRequest(c echo.Context) error {
	return h.decide(c, false)
}

func (h *RideHandler) decide(c echo.Context, accept bool) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rq, err := h.Rides.DecideRequest(c.Request().Context(), id, driverID, accept)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rq})
}

// CompleteRide handles POST /v1/rides/:id/complete (driver only).
func (h *RideHandler) CompleteRide(c echo.Context) error {
	driverID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Rides.CompleteRide(c.Request().Context(), id, driverID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelRide handles DELETE /v1/rides/:id (driver or admin).
func (h *RideHandler) CancelRide(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Rides.CancelRide(c.Request().Context(), id, callerID, getRole(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRideRequests handles GET /v1/rides/:id/requests (driver or admin).
func (h *RideHandler) ListRideRequests(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	rs, err := h.Repo.GetRideByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if getRole(c) != model.RoleAdmin && rs.DriverID != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	items, err := h.Repo.ListRequestsByRide(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMyRideRequests handles GET /v1/my-ride-requests.
func (h *RideHandler) ListMyRideRequests(c echo.Context) error {
	passengerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Repo.ListRequestsByPassenger(c.Request().Context(), passengerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
