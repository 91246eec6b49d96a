package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

type ActivityHandler struct {
	sessions sessions
}

func NewActivityHandler(factory ports.StoreFactory) *ActivityHandler {
	return &ActivityHandler{sessions: sessions{factory: factory}}
}

// List handles GET /v1/activity.
//
// @Summary      My recent activity, newest first
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ActivityEntry
// @Failure      401  {object}  errorResponse
// @Router       /v1/activity [get]
func (h *ActivityHandler) List(c echo.Context) error {
	return h.sessions.with(c, func(store ports.DomainStore) error {
		return c.JSON(http.StatusOK, store.ListActivity())
	})
}
