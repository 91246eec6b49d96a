package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/core/service"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/accounts"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/memory"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/identity"
)

func newSeeder() (*Seeder, *service.StoreFactory, *service.AccountService) {
	backend := memory.New(true)
	stores := service.NewStoreFactory(backend, zerolog.Nop())
	repo := accounts.NewRepository(backend)
	accts := service.NewAccountService(repo, identity.NewJWT("seed-secret"), stores, time.Hour, zerolog.Nop())
	return New(accts, repo, stores, zerolog.Nop()), stores, accts
}

func TestSeeder_Run(t *testing.T) {
	s, stores, accts := newSeeder()
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	guest, err := stores.Open(ctx, ports.StaticIdentity(domain.Guest))
	if err != nil {
		t.Fatalf("open guest session: %v", err)
	}
	defer guest.Close()

	dir := guest.ListDirectory("")
	if len(dir) != 2 {
		t.Fatalf("expected 2 verified practitioners, got %d", len(dir))
	}
	for _, p := range dir {
		if len(p.Services) != 2 {
			t.Fatalf("%s: expected 2 services, got %d", p.Name, len(p.Services))
		}
	}
	if got := guest.ListDirectory("noah"); len(got) != 1 || got[0].PriceGBP != 40 {
		t.Fatalf("unexpected Noah listing: %+v", got)
	}

	for _, email := range []string{"ava@example.com", "emma@example.com", "admin@example.com"} {
		if _, _, err := accts.Login(ctx, email, DemoPassword); err != nil {
			t.Fatalf("login %s: %v", email, err)
		}
	}
}

func TestSeeder_RunTwice(t *testing.T) {
	s, stores, _ := newSeeder()
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	guest, _ := stores.Open(ctx, ports.StaticIdentity(domain.Guest))
	defer guest.Close()
	if n := len(guest.ListDirectory("")); n != 2 {
		t.Fatalf("expected 2 practitioners after reseed, got %d", n)
	}
}
