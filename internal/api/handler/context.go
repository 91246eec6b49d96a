package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/identity"
)

// sessions opens one store session per request. The session resolves its
// actor from the request context populated by the Auth middleware.
type sessions struct {
	factory ports.StoreFactory
}

// with runs fn against a freshly loaded session and closes it afterwards.
func (s sessions) with(c echo.Context, fn func(store ports.DomainStore) error) error {
	store, err := s.factory.Open(c.Request().Context(), identity.Context{})
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
