package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/metrics"
)

const defaultSessionType = "video"

// ListAppointments returns the appointments where forActorID is the client
// or the practitioner, most recent first.
func (s *Store) ListAppointments(forActorID string) []domain.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if a.Involves(forActorID) {
			out = append(out, a)
		}
	}
	return out
}

// CreateAppointment books a verified practitioner's service for the current
// actor. Price and duration are copied from the service so later catalog
// changes never alter the booking. Overlapping bookings are not detected.
func (s *Store) CreateAppointment(ctx context.Context, in ports.CreateAppointmentInput) (string, error) {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return "", err
	}
	defer done()

	if actor.IsGuest() {
		return "", fmt.Errorf("create appointment: %w", domain.ErrUnauthorized)
	}
	if err := s.validate.Struct(in); err != nil {
		return "", fmt.Errorf("create appointment: %w: %v", domain.ErrInvalidInput, err)
	}

	claimed := false
	if in.IdempotencyKey != "" && s.idem != nil {
		existing, reserved, err := s.idem.Reserve(ctx, actor.ID, in.IdempotencyKey)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("idempotency reserve failed, booking anyway")
		case reserved:
			claimed = true
		case existing == "":
			return "", fmt.Errorf("create appointment: %w", domain.ErrSubmissionInFlight)
		default:
			if id, ok := s.replayedBooking(ctx, actor, existing); ok {
				s.log.Info().Str("idempotency_key", in.IdempotencyKey).Str("appointment_id", id).Msg("idempotent replay")
				return id, nil
			}
		}
	}
	committed := false
	if claimed {
		defer func() {
			if committed {
				return
			}
			if err := s.idem.Release(context.WithoutCancel(ctx), actor.ID, in.IdempotencyKey); err != nil {
				s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}()
	}

	profile, err := s.findProfile(ctx, in.PractitionerID)
	if err != nil {
		return "", fmt.Errorf("create appointment: %w", err)
	}
	if !profile.Verified {
		return "", fmt.Errorf("create appointment: practitioner %s: %w", in.PractitionerID, domain.ErrNotFound)
	}
	svc, ok := profile.Service(in.ServiceID)
	if !ok {
		return "", fmt.Errorf("create appointment: service %s: %w", in.ServiceID, domain.ErrNotFound)
	}

	sessionType := in.SessionType
	if sessionType == "" {
		sessionType = defaultSessionType
	}
	clientName := strings.TrimSpace(actor.Name)
	if clientName == "" {
		clientName = "Client"
	}
	appt := domain.Appointment{
		ID:               s.newID("apt"),
		ClientID:         actor.ID,
		ClientName:       clientName,
		PractitionerID:   profile.UserID,
		PractitionerName: profile.Name,
		ServiceID:        svc.ID,
		ServiceTitle:     svc.Title,
		ServiceType:      svc.Type,
		DurationMin:      svc.DurationMin,
		DateISO:          in.DateISO,
		TimeLabel:        in.TimeLabel,
		PriceGBP:         svc.PriceGBP,
		SessionType:      sessionType,
		Note:             in.Note,
		Status:           domain.StatusPending,
		CreatedAt:        s.now(),
	}
	rec, err := toRecord(appt)
	if err != nil {
		return "", err
	}
	entry := s.newActivity(actor.ID, domain.ActivityBookingCreated, bookingLabel(profile.Name, svc.Title))

	err = s.optimistic(ctx, "create_appointment",
		func() {
			next := make([]domain.Appointment, 0, len(s.appointments)+1)
			next = append(next, appt)
			s.appointments = append(next, s.appointments...)
			s.pushLocked(entry)
		},
		func(ctx context.Context) error {
			_, err := s.backend.Put(ctx, ports.CollectionAppointments, rec)
			return err
		},
	)
	if err != nil {
		return "", err
	}
	s.persistActivity(ctx, entry)

	if claimed {
		if err := s.idem.Remember(context.WithoutCancel(ctx), actor.ID, in.IdempotencyKey, appt.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		} else {
			committed = true
		}
	}

	metrics.AppointmentsCreatedTotal.WithLabelValues(sessionType).Inc()
	s.log.Info().
		Str("actor_id", actor.ID).
		Str("appointment_id", appt.ID).
		Str("practitioner_id", appt.PractitionerID).
		Float64("price_gbp", appt.PriceGBP).
		Msg("appointment created")
	s.afterWrite(ctx, actor)
	return appt.ID, nil
}

// UpdateAppointmentStatus moves an appointment along the transition table.
// Authorization and transition checks happen before any backend write.
func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, target domain.AppointmentStatus) error {
	actor, done, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if actor.IsGuest() {
		return fmt.Errorf("update appointment: %w", domain.ErrUnauthorized)
	}

	current, err := s.findAppointment(ctx, id)
	if err != nil {
		return fmt.Errorf("update appointment %s: %w", id, err)
	}
	if err := domain.AuthorizeTransition(actor, current, target); err != nil {
		return fmt.Errorf("update appointment %s: %w", id, err)
	}

	entry := s.newActivity(actor.ID, domain.ActivityAppointmentStatus, "Appointment "+string(target))
	err = s.optimistic(ctx, "update_appointment_status",
		func() {
			next := make([]domain.Appointment, len(s.appointments))
			copy(next, s.appointments)
			for i := range next {
				if next[i].ID == id {
					next[i].Status = target
				}
			}
			s.appointments = next
			s.pushLocked(entry)
		},
		func(ctx context.Context) error {
			return s.backend.Update(ctx, ports.CollectionAppointments, id, ports.Patch{"status": string(target)})
		},
	)
	if err != nil {
		return err
	}
	s.persistActivity(ctx, entry)

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(current.Status), string(target)).Inc()
	s.log.Info().
		Str("actor_id", actor.ID).
		Str("appointment_id", id).
		Str("from", string(current.Status)).
		Str("status", string(target)).
		Msg("appointment status updated")
	s.afterWrite(ctx, actor)
	return nil
}

// replayedBooking resolves the appointment recorded for a replayed key. Only
// a booking the actor made as client counts as a replay.
func (s *Store) replayedBooking(ctx context.Context, actor domain.Account, id string) (string, bool) {
	appt, err := s.findAppointment(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("appointment_id", id).Msg("recorded booking unavailable, booking anyway")
		return "", false
	}
	if appt.ClientID != actor.ID {
		s.log.Warn().Str("actor_id", actor.ID).Str("appointment_id", id).Msg("recorded booking belongs to another client, booking anyway")
		return "", false
	}
	return appt.ID, true
}

// findAppointment loads the durable record rather than the projection, since
// the other party may have moved the appointment since this session loaded.
func (s *Store) findAppointment(ctx context.Context, id string) (domain.Appointment, error) {
	if id == "" {
		return domain.Appointment{}, domain.ErrNotFound
	}
	recs, err := s.backend.Get(ctx, ports.CollectionAppointments, ports.Filter{"id": id})
	if err != nil {
		return domain.Appointment{}, backendFailure("find_appointment", err)
	}
	if len(recs) == 0 {
		return domain.Appointment{}, domain.ErrNotFound
	}
	var a domain.Appointment
	if err := fromRecord(recs[0], &a); err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}
