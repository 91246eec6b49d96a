// Package seed loads the demo directory: two verified practitioners with
// their catalogs, a client and an admin.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "wellness-demo"

type practitioner struct {
	name     string
	email    string
	services []domain.Service
}

var practitioners = []practitioner{
	{
		name:  "Emma",
		email: "emma@example.com",
		services: []domain.Service{
			{ID: "svc_A", Type: "Tarot", Title: "Tarot Consultation", DurationMin: 30, PriceGBP: 45,
				Description: "A focused reading on one question using a three-card spread."},
			{ID: "svc_B", Type: "Astrology", Title: "Birth Chart Reading", DurationMin: 60, PriceGBP: 75,
				Description: "A walk through your natal chart, houses and major aspects."},
		},
	},
	{
		name:  "Noah",
		email: "noah@example.com",
		services: []domain.Service{
			{ID: "svc_C", Type: "Tarot", Title: "3-Card Deep Dive", DurationMin: 30, PriceGBP: 40,
				Description: "Past, present and future spread with follow-up questions."},
			{ID: "svc_D", Type: "Coaching", Title: "Life Direction Session", DurationMin: 60, PriceGBP: 70,
				Description: "Guidance on career and relationships combining tarot and astrology."},
		},
	},
}

// Seeder writes the demo data through the same services the API uses.
type Seeder struct {
	accounts ports.AccountService
	repo     ports.AccountRepository
	stores   ports.StoreFactory
	log      zerolog.Logger
}

func New(accounts ports.AccountService, repo ports.AccountRepository, stores ports.StoreFactory, logger zerolog.Logger) *Seeder {
	return &Seeder{accounts: accounts, repo: repo, stores: stores, log: logger}
}

// Run is safe to repeat: existing accounts are reused and catalogs rewritten.
func (s *Seeder) Run(ctx context.Context) error {
	admin, err := s.ensureAdmin(ctx)
	if err != nil {
		return err
	}
	if _, err := s.ensure(ctx, "Ava", "ava@example.com", domain.RoleClient); err != nil {
		return err
	}

	adminStore, err := s.stores.Open(ctx, ports.StaticIdentity(admin))
	if err != nil {
		return fmt.Errorf("seed: open admin session: %w", err)
	}
	defer adminStore.Close()

	for _, p := range practitioners {
		acct, err := s.ensure(ctx, p.name, p.email, domain.RolePractitioner)
		if err != nil {
			return err
		}
		if err := s.publish(ctx, acct, p.services); err != nil {
			return err
		}
		if err := adminStore.SetVerification(ctx, acct.ID, true); err != nil {
			return fmt.Errorf("seed: verify %s: %w", p.name, err)
		}
	}

	s.log.Info().Int("practitioners", len(practitioners)).Msg("demo data seeded")
	return nil
}

func (s *Seeder) publish(ctx context.Context, acct domain.Account, services []domain.Service) error {
	store, err := s.stores.Open(ctx, ports.StaticIdentity(acct))
	if err != nil {
		return fmt.Errorf("seed: open %s session: %w", acct.Name, err)
	}
	defer store.Close()

	if err := store.RegisterPractitioner(ctx, acct.Name, acct.Email); err != nil {
		return fmt.Errorf("seed: profile %s: %w", acct.Name, err)
	}
	if err := store.UpdateMyServices(ctx, services); err != nil {
		return fmt.Errorf("seed: services %s: %w", acct.Name, err)
	}
	return nil
}

func (s *Seeder) ensure(ctx context.Context, name, email string, role domain.Role) (domain.Account, error) {
	acct, err := s.accounts.Register(ctx, ports.RegisterInput{
		Name:     name,
		Email:    email,
		Password: DemoPassword,
		Role:     string(role),
	})
	if err == nil {
		return *acct, nil
	}
	if !errors.Is(err, domain.ErrAccountExists) {
		return domain.Account{}, fmt.Errorf("seed: register %s: %w", name, err)
	}
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, fmt.Errorf("seed: find %s: %w", name, err)
	}
	return existing.Account, nil
}

// ensureAdmin writes the admin directly: registration only accepts clients
// and practitioners.
func (s *Seeder) ensureAdmin(ctx context.Context) (domain.Account, error) {
	const email = "admin@example.com"
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil {
		return existing.Account, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("seed: find admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, err
	}
	created, err := s.repo.Create(ctx, &domain.Credentials{
		Account:      domain.Account{ID: "u_admin", Role: domain.RoleAdmin, Name: "Admin", Email: email},
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("seed: create admin: %w", err)
	}
	return created.Account, nil
}
