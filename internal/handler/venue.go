package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/model"
	"github.com/campusconnect/campus-reservation/internal/repository"
)

// VenueHandler serves the venue catalog. Creation is admin-only; listing and
// lookup are open to any authenticated user so requesters can browse before
// booking.
type VenueHandler struct {
	Venues *repository.VenueRepo
}

func NewVenueHandler(venues *repository.VenueRepo) *VenueHandler {
	if venues == nil {
		panic("nil repository passed to NewVenueHandler")
	}
	return &VenueHandler{Venues: venues}
}

type createVenueReq struct {
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	Capacity       uint32  `json:"capacity"`
	Description    *string `json:"description"`
	HasProjector   bool    `json:"has_projector"`
	HasAudioSystem bool    `json:"has_audio_system"`
}

// CreateVenue handles POST /v1/venues.
func (h *VenueHandler) CreateVenue(c echo.Context) error {
	var req createVenueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and location are required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	v := &model.Venue{
		Name:           req.Name,
		Location:       req.Location,
		Capacity:       req.Capacity,
		Description:    req.Description,
		HasProjector:   req.HasProjector,
		HasAudioSystem: req.HasAudioSystem,
	}
	if err := h.Venues.Create(c.Request().Context(), v); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": v})
}

// ListVenues handles GET /v1/venues.
func (h *VenueHandler) ListVenues(c echo.Context) error {
	venues, err := h.Venues.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": venues})
}

// GetVenue handles GET /v1/venues/:id.
func (h *VenueHandler) GetVenue(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	v, err := h.Venues.GetByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": v})
}
