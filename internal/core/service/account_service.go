package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// AccountService implements registration and login for the identity
// collaborator. Practitioner signups also get their directory profile.
type AccountService struct {
	repo     ports.AccountRepository
	issuer   ports.TokenIssuer
	stores   ports.StoreFactory
	tokenTTL time.Duration
	log      zerolog.Logger
}

var _ ports.AccountService = (*AccountService)(nil)

func NewAccountService(repo ports.AccountRepository, issuer ports.TokenIssuer, stores ports.StoreFactory, tokenTTL time.Duration, logger zerolog.Logger) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{repo: repo, issuer: issuer, stores: stores, tokenTTL: tokenTTL, log: logger}
}

func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok || (role != domain.RoleClient && role != domain.RolePractitioner) {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Credentials{
		Account: domain.Account{
			ID:    "u_" + uuid.NewString(),
			Role:  role,
			Name:  name,
			Email: email,
		},
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if role == domain.RolePractitioner {
		// The account stays even when this fails; the next login retries.
		if err := s.ensureProfile(ctx, created.Account); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("account_id", created.ID).Str("role", string(role)).Msg("account registered")
	account := created.Account
	return &account, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	creds, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if creds.Role == domain.RolePractitioner {
		if err := s.ensureProfile(ctx, creds.Account); err != nil {
			s.log.Warn().Err(err).Str("account_id", creds.ID).Msg("practitioner profile repair failed")
		}
	}

	token, err := s.issuer.Issue(creds.Account, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}
	account := creds.Account
	return token, &account, nil
}

// ensureProfile creates the practitioner's directory profile when it is
// missing, e.g. after a signup whose profile write failed.
func (s *AccountService) ensureProfile(ctx context.Context, a domain.Account) error {
	store, err := s.stores.Open(ctx, ports.StaticIdentity(a))
	if err != nil {
		return fmt.Errorf("open practitioner session: %w", err)
	}
	defer store.Close()
	if err := store.RegisterPractitioner(ctx, a.Name, a.Email); err != nil {
		return fmt.Errorf("create practitioner profile: %w", err)
	}
	return nil
}
