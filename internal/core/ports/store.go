package ports

import (
	"context"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
)

// SaveReadingInput carries a reading built by the chart or deck collaborators.
type SaveReadingInput struct {
	Type    domain.ReadingType
	Title   string
	Summary string
	Payload domain.Payload
}

// CreateAppointmentInput carries the booking wizard's selection. Price and
// duration are never accepted from the caller; they are copied from the service.
type CreateAppointmentInput struct {
	PractitionerID string `validate:"required"`
	ServiceID      string `validate:"required"`
	DateISO        string `validate:"required,datetime=2006-01-02"`
	TimeLabel      string `validate:"required"`
	Note           string `validate:"max=2000"`
	SessionType    string `validate:"omitempty,oneof=video phone in_person"`
	// IdempotencyKey makes a resubmitted booking return the first result.
	IdempotencyKey string
}

// DomainStore is the session-scoped data layer used by the presentation layer.
// All list operations return copies.
type DomainStore interface {
	Refresh(ctx context.Context) error
	Actor() domain.Account
	Close()

	ListReadings(ownerID string) []domain.Reading
	SaveReading(ctx context.Context, in SaveReadingInput) (string, error)
	DeleteReading(ctx context.Context, id string) error

	ListAppointments(forActorID string) []domain.Appointment
	CreateAppointment(ctx context.Context, in CreateAppointmentInput) (string, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) error

	ListDirectory(searchTerm string) []domain.PractitionerProfile
	ListAllPractitioners() ([]domain.PractitionerProfile, error)
	GetPractitioner(userID string) (domain.PractitionerProfile, error)
	RegisterPractitioner(ctx context.Context, name, email string) error
	SetVerification(ctx context.Context, userID string, verified bool) error
	UpdateMyServices(ctx context.Context, services []domain.Service) error

	ListActivity() []domain.ActivityEntry
}

// StoreFactory opens a DomainStore session for one actor.
type StoreFactory interface {
	Open(ctx context.Context, identity IdentityProvider) (DomainStore, error)
}
