// Package accounts persists identity credentials in the accounts collection
// of whichever backend the server runs on.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

type Repository struct {
	backend ports.Backend
	// createMu closes the check-then-insert window within one process. The
	// mongo backend also carries a unique index on email.
	createMu sync.Mutex
}

var _ ports.AccountRepository = (*Repository)(nil)

func NewRepository(backend ports.Backend) *Repository {
	return &Repository{backend: backend}
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	recs, err := r.backend.Get(ctx, ports.CollectionAccounts, ports.Filter{"email": email})
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("account %s: %w", email, domain.ErrNotFound)
	}
	var c domain.Credentials
	if err := decode(recs[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) Create(ctx context.Context, c *domain.Credentials) (*domain.Credentials, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	if _, err := r.FindByEmail(ctx, c.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode account: %w", err)
	}
	var rec ports.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("encode account: %w", err)
	}
	id, err := r.backend.Put(ctx, ports.CollectionAccounts, rec)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}
	created := *c
	created.ID = id
	return &created, nil
}

func decode(rec ports.Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("decode account: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode account: %w", err)
	}
	return nil
}
