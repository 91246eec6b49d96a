package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/identity"
)

// AccountKey is the echo context key holding the resolved domain.Account.
const AccountKey = "account"

// TokenParser turns a bearer token into the account it names.
type TokenParser interface {
	Parse(raw string) (domain.Account, error)
}

// Auth resolves the acting account from an optional bearer token. Requests
// without an Authorization header continue as the guest; a header that is
// present but malformed or invalid is rejected.
func Auth(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				c.Set(AccountKey, domain.Guest)
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			acct, err := parser.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(AccountKey, acct)
			req := c.Request()
			c.SetRequest(req.WithContext(identity.WithAccount(req.Context(), acct)))
			return next(c)
		}
	}
}

// Account returns the account resolved by Auth, or the guest.
func Account(c echo.Context) domain.Account {
	if a, ok := c.Get(AccountKey).(domain.Account); ok {
		return a
	}
	return domain.Guest
}
