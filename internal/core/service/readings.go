package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/metrics"
)

// ListReadings returns ownerID's readings, most recent first. Payloads are
// deep copies; callers may modify them freely.
func (s *Store) ListReadings(ownerID string) []domain.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Reading, 0, len(s.readings))
	for _, r := range s.readings {
		if r.OwnerID == ownerID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// SaveReading stores a new reading owned by the current actor and puts it at
// the head of the list.
func (s *Store) SaveReading(ctx context.Context, in ports.SaveReadingInput) (string, error) {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if actor.IsGuest() {
		return "", fmt.Errorf("save reading: %w", domain.ErrUnauthorized)
	}
	if _, ok := domain.ParseReadingType(string(in.Type)); !ok {
		return "", fmt.Errorf("save reading: %w: unknown type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Payload != nil && in.Payload.Kind() != in.Type {
		return "", fmt.Errorf("save reading: %w: %s payload on %s reading", domain.ErrInvalidInput, in.Payload.Kind(), in.Type)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Reading"
	}
	reading := domain.Reading{
		ID:        s.newID("rdg"),
		OwnerID:   actor.ID,
		Type:      in.Type,
		Title:     title,
		Summary:   in.Summary,
		Payload:   in.Payload,
		CreatedAt: s.now(),
	}.Clone()
	rec, err := toRecord(reading)
	if err != nil {
		return "", err
	}
	entry := s.newActivity(actor.ID, domain.ActivityReadingSaved, "Saved "+title)

	err = s.optimistic(ctx, "save_reading",
		func() {
			next := make([]domain.Reading, 0, len(s.readings)+1)
			next = append(next, reading)
			s.readings = append(next, s.readings...)
			s.pushLocked(entry)
		},
		func(ctx context.Context) error {
			_, err := s.backend.Put(ctx, ports.CollectionReadings, rec)
			return err
		},
	)
	if err != nil {
		return "", err
	}
	s.persistActivity(ctx, entry)

	metrics.ReadingsSavedTotal.WithLabelValues(string(reading.Type)).Inc()
	s.log.Info().Str("actor_id", actor.ID).Str("reading_id", reading.ID).Str("type", string(reading.Type)).Msg("reading saved")
	s.afterWrite(ctx, actor)
	return reading.ID, nil
}

// DeleteReading removes one of the actor's readings. Readings owned by anyone
// else are reported as not found and left untouched.
func (s *Store) DeleteReading(ctx context.Context, id string) error {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if actor.IsGuest() {
		return fmt.Errorf("delete reading: %w", domain.ErrUnauthorized)
	}
	if id == "" {
		return fmt.Errorf("delete reading: %w", domain.ErrNotFound)
	}

	owned, err := s.ownsReading(ctx, actor.ID, id)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("delete reading %s: %w", id, domain.ErrNotFound)
	}

	err = s.optimistic(ctx, "delete_reading",
		func() {
			next := make([]domain.Reading, 0, len(s.readings))
			for _, r := range s.readings {
				if r.ID != id {
					next = append(next, r)
				}
			}
			s.readings = next
		},
		func(ctx context.Context) error {
			return s.backend.Remove(ctx, ports.CollectionReadings, id)
		},
	)
	if err != nil {
		return err
	}

	s.log.Info().Str("actor_id", actor.ID).Str("reading_id", id).Msg("reading deleted")
	s.afterWrite(ctx, actor)
	return nil
}

func (s *Store) ownsReading(ctx context.Context, actorID, id string) (bool, error) {
	s.mu.RLock()
	for _, r := range s.readings {
		if r.ID == id {
			s.mu.RUnlock()
			return r.OwnerID == actorID, nil
		}
	}
	s.mu.RUnlock()

	recs, err := s.backend.Get(ctx, ports.CollectionReadings, ports.Filter{"id": id, "ownerId": actorID})
	if err != nil {
		return false, backendFailure("delete_reading", err)
	}
	return len(recs) > 0, nil
}
