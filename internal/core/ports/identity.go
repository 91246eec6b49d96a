package ports

import (
	"context"
	"time"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
)

// IdentityProvider resolves the acting account. Unauthenticated sessions
// resolve to domain.Guest, never to an error.
type IdentityProvider interface {
	Current(ctx context.Context) (domain.Account, error)
}

// IdempotencyStore remembers which appointment a booking submission key
// produced so a replayed submission has no new side effects. Keys are scoped
// to the submitting account; two accounts may reuse the same key.
//
// Reserve claims (actorID, key) atomically. When the claim already exists it
// reports reserved=false together with the recorded appointment id, which is
// empty while the first submission is still in flight. Remember completes a
// reservation and Release abandons one.
type IdempotencyStore interface {
	Reserve(ctx context.Context, actorID, key string) (appointmentID string, reserved bool, err error)
	Remember(ctx context.Context, actorID, key, appointmentID string) error
	Release(ctx context.Context, actorID, key string) error
}

// AccountRepository persists credentials for the identity collaborator.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Credentials, error)
	Create(ctx context.Context, c *domain.Credentials) (*domain.Credentials, error)
}

// AccountService registers and authenticates accounts.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// TokenIssuer signs identity tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(a domain.Account, ttl time.Duration) (string, error)
}

// StaticIdentity always resolves to the same account. It binds a session to
// an actor that was authenticated elsewhere.
type StaticIdentity domain.Account

func (s StaticIdentity) Current(context.Context) (domain.Account, error) {
	return domain.Account(s), nil
}
