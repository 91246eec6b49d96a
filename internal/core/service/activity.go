package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// ListActivity returns the current actor's feed, newest first.
func (s *Store) ListActivity() []domain.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.activity)
}

// PushActivity inserts an entry at the head of actorID's feed. Missing id and
// timestamp are filled in. The in-memory feed only tracks the session actor;
// entries for other actors are persisted when the backend keeps activity.
func (s *Store) PushActivity(ctx context.Context, actorID string, e domain.ActivityEntry) domain.ActivityEntry {
	e = s.stampActivity(actorID, e)
	s.mu.Lock()
	if actorID == s.actor.ID {
		s.pushLocked(e)
	}
	s.mu.Unlock()
	s.persistActivity(ctx, e)
	return e
}

func (s *Store) stampActivity(actorID string, e domain.ActivityEntry) domain.ActivityEntry {
	e.ActorID = actorID
	if e.ID == "" {
		e.ID = s.newID("act")
	}
	if e.TS.IsZero() {
		e.TS = s.now()
	}
	return e
}

func (s *Store) newActivity(actorID string, kind domain.ActivityKind, label string) domain.ActivityEntry {
	return s.stampActivity(actorID, domain.ActivityEntry{Kind: kind, Label: label})
}

// pushLocked prepends e and evicts the oldest entries beyond the limit.
func (s *Store) pushLocked(e domain.ActivityEntry) {
	next := make([]domain.ActivityEntry, 0, min(len(s.activity)+1, s.activityLimit))
	next = append(next, e)
	next = append(next, s.activity...)
	s.activity = truncate(next, s.activityLimit)
}

// persistActivity is best effort: the feed is derived data and a failed
// write must not undo the mutation it describes.
func (s *Store) persistActivity(ctx context.Context, e domain.ActivityEntry) {
	if !s.durableActivity {
		return
	}
	rec, err := toRecord(e)
	if err == nil {
		_, err = s.backend.Put(ctx, ports.CollectionActivity, rec)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("actor_id", e.ActorID).Str("kind", string(e.Kind)).Msg("failed to persist activity")
	}
}

// deriveActivity rebuilds a feed for backends that do not store one. Only
// saved readings and bookings made by the actor can be recovered; status
// changes are not, so the result approximates the live feed.
func deriveActivity(actorID string, readings []domain.Reading, appts []domain.Appointment, limit int) []domain.ActivityEntry {
	out := make([]domain.ActivityEntry, 0, len(readings)+len(appts))
	for _, r := range readings {
		out = append(out, domain.ActivityEntry{
			ID:      "act_" + r.ID,
			ActorID: actorID,
			Kind:    domain.ActivityReadingSaved,
			Label:   "Saved " + r.Title,
			TS:      r.CreatedAt,
		})
	}
	for _, a := range appts {
		if a.ClientID != actorID {
			continue
		}
		out = append(out, domain.ActivityEntry{
			ID:      "act_" + a.ID,
			ActorID: actorID,
			Kind:    domain.ActivityBookingCreated,
			Label:   bookingLabel(a.PractitionerName, a.ServiceTitle),
			TS:      a.CreatedAt,
		})
	}
	slices.SortStableFunc(out, func(a, b domain.ActivityEntry) int { return b.TS.Compare(a.TS) })
	return truncate(out, limit)
}

func bookingLabel(practitioner, service string) string {
	return fmt.Sprintf("Booked %s (%s)", practitioner, service)
}
