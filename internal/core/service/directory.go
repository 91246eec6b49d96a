package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// serviceCatalog wraps a service list so ids can be checked for uniqueness.
type serviceCatalog struct {
	Services []domain.Service `validate:"unique=ID,dive"`
}

// ListDirectory returns verified profiles whose name or specialties contain
// searchTerm, case-insensitively. Unverified profiles are never listed here,
// whoever is asking.
func (s *Store) ListDirectory(searchTerm string) []domain.PractitionerProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PractitionerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if p.Verified && p.Matches(searchTerm) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// ListAllPractitioners includes unverified profiles and is restricted to admins.
func (s *Store) ListAllPractitioners() ([]domain.PractitionerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.actor.IsAdmin() {
		return nil, fmt.Errorf("list practitioners: %w", domain.ErrUnauthorized)
	}
	out := make([]domain.PractitionerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

// GetPractitioner looks up one profile. Unverified profiles are only visible
// to admins and to their owner.
func (s *Store) GetPractitioner(userID string) (domain.PractitionerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.UserID != userID {
			continue
		}
		if p.Verified || s.actor.IsAdmin() || (!s.actor.IsGuest() && s.actor.ID == userID) {
			return p.Clone(), nil
		}
		break
	}
	return domain.PractitionerProfile{}, fmt.Errorf("practitioner %s: %w", userID, domain.ErrNotFound)
}

// RegisterPractitioner creates the current practitioner's unverified profile
// with one default service. Calling it again for an existing profile is a no-op.
func (s *Store) RegisterPractitioner(ctx context.Context, name, email string) error {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if actor.IsGuest() || actor.Role != domain.RolePractitioner {
		return fmt.Errorf("register practitioner: %w", domain.ErrUnauthorized)
	}

	if _, err := s.findProfile(ctx, actor.ID); err == nil {
		return nil
	} else if !isNotFound(err) {
		return fmt.Errorf("register practitioner: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = actor.Name
	}
	if email == "" {
		email = actor.Email
	}
	profile := domain.NewPractitionerProfile(actor.ID, name, email, s.now())
	rec, err := profileRecord(profile)
	if err != nil {
		return err
	}

	err = s.optimistic(ctx, "register_practitioner",
		func() {
			next := make([]domain.PractitionerProfile, 0, len(s.profiles)+1)
			next = append(next, s.profiles...)
			s.profiles = append(next, profile)
		},
		func(ctx context.Context) error {
			_, err := s.backend.Put(ctx, ports.CollectionProfiles, rec)
			return err
		},
	)
	if err != nil {
		return err
	}

	s.log.Info().Str("actor_id", actor.ID).Msg("practitioner profile created")
	s.afterWrite(ctx, actor)
	return nil
}

// SetVerification flips a profile's directory visibility. Admin only and
// idempotent; appointments and services of the profile are untouched.
func (s *Store) SetVerification(ctx context.Context, userID string, verified bool) error {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if !actor.IsAdmin() {
		return fmt.Errorf("set verification: %w", domain.ErrUnauthorized)
	}
	profile, err := s.findProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("set verification: %w", err)
	}
	if profile.Verified == verified {
		s.replaceProfile(profile)
		return nil
	}

	now := s.now()
	patch, err := normalizePatch(ports.Patch{"verified": verified, "updatedAt": now})
	if err != nil {
		return err
	}
	err = s.optimistic(ctx, "set_verification",
		func() {
			profile.Verified = verified
			profile.UpdatedAt = now
			s.replaceProfileLocked(profile)
		},
		func(ctx context.Context) error {
			return s.backend.Update(ctx, ports.CollectionProfiles, userID, patch)
		},
	)
	if err != nil {
		return err
	}

	s.log.Info().Str("actor_id", actor.ID).Str("practitioner_id", userID).Bool("verified", verified).Msg("verification updated")
	s.afterWrite(ctx, actor)
	return nil
}

// UpdateMyServices replaces the owning practitioner's whole catalog. It is
// not a merge: services missing from the list are dropped.
func (s *Store) UpdateMyServices(ctx context.Context, services []domain.Service) error {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if actor.IsGuest() || actor.Role != domain.RolePractitioner {
		return fmt.Errorf("update services: %w", domain.ErrUnauthorized)
	}
	catalog := serviceCatalog{Services: append([]domain.Service(nil), services...)}
	if err := s.validate.Struct(catalog); err != nil {
		return fmt.Errorf("update services: %w: %v", domain.ErrInvalidInput, err)
	}

	profile, err := s.findProfile(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("update services: %w", err)
	}

	summary := domain.SummaryPrice(catalog.Services)
	now := s.now()
	patch, err := normalizePatch(ports.Patch{
		"services":  catalog.Services,
		"priceGBP":  summary,
		"updatedAt": now,
	})
	if err != nil {
		return err
	}

	err = s.optimistic(ctx, "update_services",
		func() {
			profile.Services = catalog.Services
			profile.PriceGBP = summary
			profile.UpdatedAt = now
			s.replaceProfileLocked(profile)
		},
		func(ctx context.Context) error {
			return s.backend.Update(ctx, ports.CollectionProfiles, actor.ID, patch)
		},
	)
	if err != nil {
		return err
	}

	s.log.Info().Str("actor_id", actor.ID).Int("services", len(catalog.Services)).Msg("service catalog replaced")
	s.afterWrite(ctx, actor)
	return nil
}

// findProfile reads the durable profile so booking and admin decisions never
// rest on a stale directory.
func (s *Store) findProfile(ctx context.Context, userID string) (domain.PractitionerProfile, error) {
	if userID == "" {
		return domain.PractitionerProfile{}, domain.ErrNotFound
	}
	recs, err := s.backend.Get(ctx, ports.CollectionProfiles, ports.Filter{"userId": userID})
	if err != nil {
		return domain.PractitionerProfile{}, backendFailure("find_profile", err)
	}
	if len(recs) == 0 {
		return domain.PractitionerProfile{}, fmt.Errorf("practitioner %s: %w", userID, domain.ErrNotFound)
	}
	var p domain.PractitionerProfile
	if err := fromRecord(recs[0], &p); err != nil {
		return domain.PractitionerProfile{}, err
	}
	return p, nil
}

func (s *Store) replaceProfile(p domain.PractitionerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceProfileLocked(p)
}

// replaceProfileLocked swaps in p by user id, appending it when absent.
func (s *Store) replaceProfileLocked(p domain.PractitionerProfile) {
	next := make([]domain.PractitionerProfile, 0, len(s.profiles)+1)
	found := false
	for _, existing := range s.profiles {
		if existing.UserID == p.UserID {
			next = append(next, p)
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, p)
	}
	s.profiles = next
}

func profileRecord(p domain.PractitionerProfile) (ports.Record, error) {
	rec, err := toRecord(p)
	if err != nil {
		return nil, err
	}
	rec["id"] = p.UserID
	return rec, nil
}
