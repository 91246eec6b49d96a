package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseAppointmentStatus maps a raw status string to an AppointmentStatus.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether no transition is accepted out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Party is the relationship of an actor to a specific appointment.
type Party uint8

const (
	PartyClient Party = 1 << iota
	PartyPractitioner
	PartyAdmin
)

type transition struct {
	from, to AppointmentStatus
}

// transitionPolicy is the single source of truth for who may move an
// appointment along which edge. Edges not listed are rejected.
var transitionPolicy = map[transition]Party{
	{StatusPending, StatusConfirmed}:   PartyPractitioner | PartyAdmin,
	{StatusPending, StatusCancelled}:   PartyClient | PartyPractitioner | PartyAdmin,
	{StatusConfirmed, StatusCompleted}: PartyPractitioner | PartyAdmin,
	{StatusConfirmed, StatusCancelled}: PartyClient | PartyPractitioner | PartyAdmin,
}

// CanTransitionTo reports whether any party may move s to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	_, ok := transitionPolicy[transition{s, next}]
	return ok
}

// Appointment is a booking of one practitioner service by one client.
// PriceGBP and DurationMin are snapshots taken from the service at booking time.
type Appointment struct {
	ID               string            `json:"id"`
	ClientID         string            `json:"clientId"`
	ClientName       string            `json:"clientName"`
	PractitionerID   string            `json:"practitionerId"`
	PractitionerName string            `json:"practitionerName"`
	ServiceID        string            `json:"serviceId"`
	ServiceTitle     string            `json:"serviceTitle"`
	ServiceType      string            `json:"serviceType"`
	DurationMin      int               `json:"durationMin"`
	DateISO          string            `json:"dateISO"`
	TimeLabel        string            `json:"timeLabel"`
	PriceGBP         float64           `json:"priceGBP"`
	SessionType      string            `json:"sessionType"`
	Note             string            `json:"note"`
	Status           AppointmentStatus `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// PartiesOf returns how the actor relates to the appointment. Zero means the
// actor is neither an owner nor an admin.
func (a Appointment) PartiesOf(actor Account) Party {
	if actor.IsGuest() {
		return 0
	}
	var p Party
	if actor.ID == a.ClientID {
		p |= PartyClient
	}
	if actor.ID == a.PractitionerID {
		p |= PartyPractitioner
	}
	if actor.IsAdmin() {
		p |= PartyAdmin
	}
	return p
}

// Involves reports whether the account is the client or the practitioner.
func (a Appointment) Involves(accountID string) bool {
	return accountID != "" && (a.ClientID == accountID || a.PractitionerID == accountID)
}

// AuthorizeTransition checks the policy table for actor moving a to target.
// Non-owners who are not admins get ErrUnauthorized; everything the table does
// not permit for the actor's parties gets ErrInvalidTransition.
func AuthorizeTransition(actor Account, a Appointment, target AppointmentStatus) error {
	parties := a.PartiesOf(actor)
	if parties == 0 {
		return ErrUnauthorized
	}
	if a.Status.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, a.Status)
	}
	allowed, ok := transitionPolicy[transition{a.Status, target}]
	if !ok {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, a.Status, target)
	}
	if allowed&parties == 0 {
		return fmt.Errorf("%w: actor may not move %s to %s", ErrInvalidTransition, a.Status, target)
	}
	return nil
}
