// Package handler contains the Echo HTTP handlers for the reservation API.
// Handlers stay thin: they parse and validate input, call the service or
// repository layer, and translate domain errors into HTTP responses.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/reservation"
	"github.com/campusconnect/campus-reservation/internal/service"
)

// getUserID extracts the user_id placed in the context by the JWT middleware
// and converts it to uint64. JWT numeric claims arrive as float64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim placed in the context by the JWT
// middleware. Missing or malformed roles come back as an empty string and
// fail any role comparison.
func getRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// pathID parses a numeric path parameter. Zero is rejected along with
// non-numeric input.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// fail translates domain errors into JSON error responses. Errors without a
// mapping fall through to 500 so unexpected failures are never dressed up as
// client mistakes.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, repository.ErrVenueNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrRegistrationNotFound),
		errors.Is(err, repository.ErrRideNotFound),
		errors.Is(err, repository.ErrRideRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidInterval),
		errors.Is(err, reservation.ErrInvalidUnitCount):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrConflictingInterval),
		errors.Is(err, reservation.ErrCapacityExceeded),
		errors.Is(err, reservation.ErrAlreadyRegistered),
		errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, service.ErrVenueUnavailable),
		errors.Is(err, service.ErrRegistrationClosed),
		errors.Is(err, service.ErrRideClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, reservation.ErrUnauthorized),
		errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
