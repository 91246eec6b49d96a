package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/memory"
)

func TestRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(memory.New(false))

	created, err := repo.Create(ctx, &domain.Credentials{
		Account:      domain.Account{ID: "u1", Role: domain.RoleClient, Name: "Ava", Email: "ava@example.com"},
		PasswordHash: "hash",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "u1" {
		t.Fatalf("id = %q", created.ID)
	}

	got, err := repo.FindByEmail(ctx, "  AVA@example.com ")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != "u1" || got.Role != domain.RoleClient || got.PasswordHash != "hash" {
		t.Fatalf("unexpected credentials: %+v", got)
	}
}

func TestRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(memory.New(false))
	c := &domain.Credentials{Account: domain.Account{ID: "u1", Role: domain.RoleClient, Email: "a@b.c"}}
	if _, err := repo.Create(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &domain.Credentials{Account: domain.Account{ID: "u2", Role: domain.RoleClient, Email: "a@b.c"}}
	if _, err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestRepository_FindMissing(t *testing.T) {
	repo := NewRepository(memory.New(false))
	if _, err := repo.FindByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
