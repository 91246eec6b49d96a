package identity

import (
	"context"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

type accountKey struct{}

// WithAccount returns a copy of ctx carrying a.
func WithAccount(ctx context.Context, a domain.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, a)
}

// AccountFrom returns the account stored in ctx, or domain.Guest.
func AccountFrom(ctx context.Context) domain.Account {
	if a, ok := ctx.Value(accountKey{}).(domain.Account); ok && !a.IsGuest() {
		return a
	}
	return domain.Guest
}

// Context resolves the actor from the context of each call, so a session
// follows whatever identity the request carries.
type Context struct{}

var _ ports.IdentityProvider = Context{}

func (Context) Current(ctx context.Context) (domain.Account, error) {
	return AccountFrom(ctx), nil
}
