package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/api/middleware"
	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// AppointmentHandler serves bookings for clients and practitioners alike.
type AppointmentHandler struct {
	sessions sessions
}

func NewAppointmentHandler(factory ports.StoreFactory) *AppointmentHandler {
	return &AppointmentHandler{sessions: sessions{factory: factory}}
}

// List handles GET /v1/appointments.
//
// @Summary      List appointments where I am the client or the practitioner
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Appointment
// @Failure      401  {object}  errorResponse
// @Router       /v1/appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	actor := middleware.Account(c)
	return h.sessions.with(c, func(store ports.DomainStore) error {
		return c.JSON(http.StatusOK, store.ListAppointments(actor.ID))
	})
}

// Create handles POST /v1/appointments.
//
// @Summary      Book a practitioner service
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                    false  "Replays by the same account return the first booking"
// @Param        body             body      createAppointmentRequest  true   "Booking"
// @Success      201              {object}  idResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      503              {object}  errorResponse
// @Router       /v1/appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.CreateAppointmentInput{
		PractitionerID: req.PractitionerID,
		ServiceID:      req.ServiceID,
		DateISO:        req.DateISO,
		TimeLabel:      req.TimeLabel,
		Note:           req.Note,
		SessionType:    req.SessionType,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	}
	return h.sessions.with(c, func(store ports.DomainStore) error {
		id, err := store.CreateAppointment(c.Request().Context(), in)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, idResponse{ID: id})
	})
}

// UpdateStatus handles PATCH /v1/appointments/:id/status.
//
// @Summary      Move an appointment along its lifecycle
// @Tags         appointments
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string               true  "Appointment id"
// @Param        body  body  updateStatusRequest  true  "Target status"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	status, _ := domain.ParseAppointmentStatus(req.Status)

	id := c.Param("id")
	return h.sessions.with(c, func(store ports.DomainStore) error {
		if err := store.UpdateAppointmentStatus(c.Request().Context(), id, status); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}
