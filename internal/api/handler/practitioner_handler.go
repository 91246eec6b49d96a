package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// PractitionerHandler serves the directory, practitioner catalogs and the
// admin verification queue.
type PractitionerHandler struct {
	sessions sessions
}

func NewPractitionerHandler(factory ports.StoreFactory) *PractitionerHandler {
	return &PractitionerHandler{sessions: sessions{factory: factory}}
}

// Directory handles GET /v1/directory.
//
// @Summary      Search verified practitioners
// @Tags         practitioners
// @Produce      json
// @Param        q    query     string  false  "Case-insensitive match on name or specialty"
// @Success      200  {array}   domain.PractitionerProfile
// @Router       /v1/directory [get]
func (h *PractitionerHandler) Directory(c echo.Context) error {
	term := c.QueryParam("q")
	return h.sessions.with(c, func(store ports.DomainStore) error {
		return c.JSON(http.StatusOK, store.ListDirectory(term))
	})
}

// Get handles GET /v1/practitioners/:id.
//
// @Summary      Get a practitioner profile
// @Tags         practitioners
// @Produce      json
// @Param        id   path      string  true  "Practitioner user id"
// @Success      200  {object}  domain.PractitionerProfile
// @Failure      404  {object}  errorResponse
// @Router       /v1/practitioners/{id} [get]
func (h *PractitionerHandler) Get(c echo.Context) error {
	id := c.Param("id")
	return h.sessions.with(c, func(store ports.DomainStore) error {
		p, err := store.GetPractitioner(id)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, p)
	})
}

// ListAll handles GET /v1/admin/practitioners.
//
// @Summary      List every practitioner, verified or not
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PractitionerProfile
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/practitioners [get]
func (h *PractitionerHandler) ListAll(c echo.Context) error {
	return h.sessions.with(c, func(store ports.DomainStore) error {
		all, err := store.ListAllPractitioners()
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, all)
	})
}

// SetVerification handles PUT /v1/admin/practitioners/:id/verification.
//
// @Summary      Verify or unverify a practitioner
// @Tags         admin
// @Accept       json
// @Security     BearerAuth
// @Param        id    path  string               true  "Practitioner user id"
// @Param        body  body  verificationRequest  true  "Verification flag"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/practitioners/{id}/verification [put]
func (h *PractitionerHandler) SetVerification(c echo.Context) error {
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	return h.sessions.with(c, func(store ports.DomainStore) error {
		if err := store.SetVerification(c.Request().Context(), id, *req.Verified); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// UpdateMyServices handles PUT /v1/me/services.
//
// @Summary      Replace my service catalog
// @Tags         practitioners
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  servicesRequest  true  "Full catalog"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/me/services [put]
func (h *PractitionerHandler) UpdateMyServices(c echo.Context) error {
	var req servicesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return h.sessions.with(c, func(store ports.DomainStore) error {
		if err := store.UpdateMyServices(c.Request().Context(), req.Services); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}
