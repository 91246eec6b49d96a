package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/api/middleware"
	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// ReadingHandler serves the actor's saved readings.
type ReadingHandler struct {
	sessions sessions
}

func NewReadingHandler(factory ports.StoreFactory) *ReadingHandler {
	return &ReadingHandler{sessions: sessions{factory: factory}}
}

// List handles GET /v1/readings.
//
// @Summary      List my readings, newest first
// @Tags         readings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Reading
// @Failure      401  {object}  errorResponse
// @Router       /v1/readings [get]
func (h *ReadingHandler) List(c echo.Context) error {
	actor := middleware.Account(c)
	return h.sessions.with(c, func(store ports.DomainStore) error {
		return c.JSON(http.StatusOK, store.ListReadings(actor.ID))
	})
}

// Save handles POST /v1/readings.
//
// @Summary      Save a reading
// @Tags         readings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      saveReadingRequest  true  "Reading"
// @Success      201   {object}  idResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/readings [post]
func (h *ReadingHandler) Save(c echo.Context) error {
	var req saveReadingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	kind := domain.ReadingType(req.Type)
	payload, err := domain.DecodePayload(kind, req.Payload)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid reading payload")
	}

	return h.sessions.with(c, func(store ports.DomainStore) error {
		id, err := store.SaveReading(c.Request().Context(), ports.SaveReadingInput{
			Type:    kind,
			Title:   req.Title,
			Summary: req.Summary,
			Payload: payload,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, idResponse{ID: id})
	})
}

// Delete handles DELETE /v1/readings/:id.
//
// @Summary      Delete one of my readings
// @Tags         readings
// @Security     BearerAuth
// @Param        id   path  string  true  "Reading id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/readings/{id} [delete]
func (h *ReadingHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	return h.sessions.with(c, func(store ports.DomainStore) error {
		if err := store.DeleteReading(c.Request().Context(), id); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}
