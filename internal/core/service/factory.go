package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// StoreFactory opens one Store per session against a shared backend.
type StoreFactory struct {
	backend ports.Backend
	logger  zerolog.Logger
	opts    []Option
}

var _ ports.StoreFactory = (*StoreFactory)(nil)

func NewStoreFactory(backend ports.Backend, logger zerolog.Logger, opts ...Option) *StoreFactory {
	return &StoreFactory{backend: backend, logger: logger, opts: opts}
}

// Open creates a store for the actor resolved by identity and loads its
// projection.
func (f *StoreFactory) Open(ctx context.Context, identity ports.IdentityProvider) (ports.DomainStore, error) {
	s := NewStore(f.backend, identity, f.logger, f.opts...)
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}
