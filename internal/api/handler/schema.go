package handler

import (
	"encoding/json"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type idResponse struct {
	ID string `json:"id"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=client practitioner"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token   string          `json:"token,omitempty"`
	Account *domain.Account `json:"account,omitempty"`
}

// --- Readings ---

type saveReadingRequest struct {
	Type    string          `json:"type"    validate:"required,oneof=tarot horoscope birthchart"`
	Title   string          `json:"title"   validate:"max=200"`
	Summary string          `json:"summary" validate:"max=2000"`
	Payload json.RawMessage `json:"payload" swaggertype:"object"`
}

// --- Appointments ---

type createAppointmentRequest struct {
	PractitionerID string `json:"practitionerId" validate:"required"`
	ServiceID      string `json:"serviceId"      validate:"required"`
	DateISO        string `json:"dateISO"        validate:"required"`
	TimeLabel      string `json:"timeLabel"      validate:"required"`
	Note           string `json:"note"`
	SessionType    string `json:"sessionType"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

// --- Practitioners ---

type verificationRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

type servicesRequest struct {
	Services []domain.Service `json:"services"`
}
