package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/metrics"
)

// Store is the session-scoped domain store. It owns an in-memory projection
// of the actor's readings, appointments, activity feed and the practitioner
// directory, and keeps it consistent with the backend.
//
// Mutations are serialized and optimistic: the projection is changed first,
// the backend write follows, and the projection is restored if the write
// fails. Reads never block on the backend and always return copies.
type Store struct {
	backend  ports.Backend
	identity ports.IdentityProvider
	idem     ports.IdempotencyStore
	log      zerolog.Logger
	validate *validator.Validate

	now               func() time.Time
	newID             func(prefix string) string
	activityLimit     int
	refreshAfterWrite bool
	durableActivity   bool

	writeMu sync.Mutex

	mu           sync.RWMutex
	actor        domain.Account
	loaded       bool
	readings     []domain.Reading
	appointments []domain.Appointment
	profiles     []domain.PractitionerProfile
	activity     []domain.ActivityEntry
}

var _ ports.DomainStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithIdempotency enables replay detection for booking submissions.
func WithIdempotency(idem ports.IdempotencyStore) Option {
	return func(s *Store) { s.idem = idem }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithActivityLimit caps the activity feed; values are clamped to 20..200.
func WithActivityLimit(n int) Option {
	return func(s *Store) { s.activityLimit = domain.ClampActivityLimit(n) }
}

// WithRefreshAfterWrite reloads the full projection after every successful
// mutation. Used with the remote backend, where other users write too.
func WithRefreshAfterWrite(enabled bool) Option {
	return func(s *Store) { s.refreshAfterWrite = enabled }
}

// NewStore creates an empty store. Call Refresh to load the projection.
func NewStore(backend ports.Backend, identity ports.IdentityProvider, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		backend:         backend,
		identity:        identity,
		log:             logger,
		validate:        validator.New(),
		now:             func() time.Time { return time.Now().UTC() },
		newID:           func(prefix string) string { return prefix + "_" + uuid.NewString() },
		activityLimit:   domain.DefaultActivityLimit,
		durableActivity: ports.CapabilitiesOf(backend).DurableActivity,
		actor:           domain.Guest,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Actor returns the account the projection was loaded for.
func (s *Store) Actor() domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

// Refresh queries the identity provider and reloads the whole projection.
func (s *Store) Refresh(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	actor, err := s.currentActor(ctx)
	if err != nil {
		return err
	}
	return s.reload(ctx, actor)
}

// Close tears the session down and drops the projection.
func (s *Store) Close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = domain.Guest
	s.loaded = false
	s.readings = nil
	s.appointments = nil
	s.profiles = nil
	s.activity = nil
}

func (s *Store) currentActor(ctx context.Context) (domain.Account, error) {
	actor, err := s.identity.Current(ctx)
	if err != nil {
		return domain.Guest, fmt.Errorf("resolve actor: %w", err)
	}
	if actor.IsGuest() {
		return domain.Guest, nil
	}
	return actor, nil
}

// begin serializes a mutation and resolves the acting account. When the
// actor changed since the last load the projection is reloaded first.
func (s *Store) begin(ctx context.Context) (domain.Account, func(), error) {
	s.writeMu.Lock()
	actor, err := s.currentActor(ctx)
	if err != nil {
		s.writeMu.Unlock()
		return domain.Guest, nil, err
	}
	if !actor.IsGuest() {
		s.mu.RLock()
		stale := !s.loaded || s.actor != actor
		s.mu.RUnlock()
		if stale {
			if err := s.reload(ctx, actor); err != nil {
				s.writeMu.Unlock()
				return domain.Guest, nil, err
			}
		}
	}
	return actor, s.writeMu.Unlock, nil
}

type projection struct {
	readings     []domain.Reading
	appointments []domain.Appointment
	profiles     []domain.PractitionerProfile
	activity     []domain.ActivityEntry
}

// snapshotLocked captures slice headers. Mutations never write through an
// existing backing array, so restoring the headers restores the state.
func (s *Store) snapshotLocked() projection {
	return projection{
		readings:     s.readings,
		appointments: s.appointments,
		profiles:     s.profiles,
		activity:     s.activity,
	}
}

func (s *Store) restoreLocked(p projection) {
	s.readings = p.readings
	s.appointments = p.appointments
	s.profiles = p.profiles
	s.activity = p.activity
}

// optimistic applies a projection change, runs the backend write and
// reverts the projection when the write fails.
func (s *Store) optimistic(ctx context.Context, op string, apply func(), persist func(context.Context) error) error {
	s.mu.Lock()
	saved := s.snapshotLocked()
	apply()
	s.mu.Unlock()

	if err := persist(ctx); err != nil {
		s.mu.Lock()
		s.restoreLocked(saved)
		s.mu.Unlock()
		metrics.MutationRollbacksTotal.WithLabelValues(op).Inc()
		s.log.Warn().Err(err).Str("operation", op).Msg("backend write failed, projection rolled back")
		if errors.Is(err, ports.ErrRecordNotFound) {
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return backendFailure(op, err)
	}
	return nil
}

// afterWrite refreshes the projection when configured to. A failed refresh
// leaves the optimistic projection in place.
func (s *Store) afterWrite(ctx context.Context, actor domain.Account) {
	if !s.refreshAfterWrite {
		return
	}
	if err := s.reload(ctx, actor); err != nil {
		s.log.Warn().Err(err).Str("actor_id", actor.ID).Msg("refresh after write failed")
	}
}

func backendFailure(op string, err error) error {
	metrics.BackendFailuresTotal.WithLabelValues(op).Inc()
	return fmt.Errorf("%s: %w: %w", op, domain.ErrBackendFailure, err)
}

func (s *Store) reload(ctx context.Context, actor domain.Account) error {
	p, err := s.load(ctx, actor)
	if err != nil {
		s.log.Error().Err(err).Str("actor_id", actor.ID).Msg("projection load failed")
		return err
	}
	s.mu.Lock()
	s.actor = actor
	s.loaded = true
	s.restoreLocked(p)
	s.mu.Unlock()
	return nil
}

func (s *Store) load(ctx context.Context, actor domain.Account) (projection, error) {
	var p projection

	profileRecs, err := s.backend.Get(ctx, ports.CollectionProfiles, nil)
	if err != nil {
		return p, backendFailure("load_profiles", err)
	}
	if p.profiles, err = decodeAll[domain.PractitionerProfile](profileRecs); err != nil {
		return p, err
	}
	if actor.IsGuest() {
		return p, nil
	}

	readingRecs, err := s.backend.Get(ctx, ports.CollectionReadings, ports.Filter{"ownerId": actor.ID})
	if err != nil {
		return p, backendFailure("load_readings", err)
	}
	if p.readings, err = decodeAll[domain.Reading](readingRecs); err != nil {
		return p, err
	}
	slices.SortStableFunc(p.readings, func(a, b domain.Reading) int { return b.CreatedAt.Compare(a.CreatedAt) })

	if p.appointments, err = s.loadAppointments(ctx, actor.ID); err != nil {
		return p, err
	}

	if s.durableActivity {
		actRecs, err := s.backend.Get(ctx, ports.CollectionActivity, ports.Filter{"actorId": actor.ID})
		if err != nil {
			return p, backendFailure("load_activity", err)
		}
		if p.activity, err = decodeAll[domain.ActivityEntry](actRecs); err != nil {
			return p, err
		}
		slices.SortStableFunc(p.activity, func(a, b domain.ActivityEntry) int { return b.TS.Compare(a.TS) })
		p.activity = truncate(p.activity, s.activityLimit)
	} else {
		p.activity = deriveActivity(actor.ID, p.readings, p.appointments, s.activityLimit)
	}
	return p, nil
}

// loadAppointments merges the appointments where the actor is the client with
// those where the actor is the practitioner.
func (s *Store) loadAppointments(ctx context.Context, actorID string) ([]domain.Appointment, error) {
	var merged []domain.Appointment
	seen := make(map[string]struct{})
	for _, field := range []string{"clientId", "practitionerId"} {
		recs, err := s.backend.Get(ctx, ports.CollectionAppointments, ports.Filter{field: actorID})
		if err != nil {
			return nil, backendFailure("load_appointments", err)
		}
		list, err := decodeAll[domain.Appointment](recs)
		if err != nil {
			return nil, err
		}
		for _, a := range list {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			merged = append(merged, a)
		}
	}
	slices.SortStableFunc(merged, func(a, b domain.Appointment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return merged, nil
}

func truncate[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n:n]
	}
	return list
}
