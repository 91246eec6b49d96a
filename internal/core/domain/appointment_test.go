package domain

import (
	"errors"
	"testing"
)

func TestAuthorizeTransition(t *testing.T) {
	client := Account{ID: "c1", Role: RoleClient}
	prac := Account{ID: "p1", Role: RolePractitioner}
	admin := Account{ID: "a1", Role: RoleAdmin}
	stranger := Account{ID: "c2", Role: RoleClient}
	appt := func(s AppointmentStatus) Appointment {
		return Appointment{ID: "apt_1", ClientID: "c1", PractitionerID: "p1", Status: s}
	}

	tests := []struct {
		name   string
		actor  Account
		from   AppointmentStatus
		to     AppointmentStatus
		expect error
	}{
		{"practitioner confirms", prac, StatusPending, StatusConfirmed, nil},
		{"admin confirms", admin, StatusPending, StatusConfirmed, nil},
		{"client cannot confirm", client, StatusPending, StatusConfirmed, ErrInvalidTransition},
		{"client cancels pending", client, StatusPending, StatusCancelled, nil},
		{"client cancels confirmed", client, StatusConfirmed, StatusCancelled, nil},
		{"practitioner completes", prac, StatusConfirmed, StatusCompleted, nil},
		{"client cannot complete", client, StatusConfirmed, StatusCompleted, ErrInvalidTransition},
		{"pending cannot complete", prac, StatusPending, StatusCompleted, ErrInvalidTransition},
		{"completed is terminal", admin, StatusCompleted, StatusCancelled, ErrInvalidTransition},
		{"cancelled is terminal", prac, StatusCancelled, StatusConfirmed, ErrInvalidTransition},
		{"no self loop", prac, StatusPending, StatusPending, ErrInvalidTransition},
		{"stranger", stranger, StatusPending, StatusCancelled, ErrUnauthorized},
		{"guest", Guest, StatusPending, StatusCancelled, ErrUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := AuthorizeTransition(tc.actor, appt(tc.from), tc.to)
			if tc.expect == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.expect != nil && !errors.Is(err, tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, err)
			}
		})
	}
}

func TestPartiesOf_SelfBooking(t *testing.T) {
	both := Account{ID: "p1", Role: RolePractitioner}
	a := Appointment{ClientID: "p1", PractitionerID: "p1"}
	if got := a.PartiesOf(both); got != PartyClient|PartyPractitioner {
		t.Fatalf("parties = %b", got)
	}
}

func TestParseAppointmentStatus(t *testing.T) {
	if s, ok := ParseAppointmentStatus("confirmed"); !ok || s != StatusConfirmed {
		t.Fatalf("got %q %v", s, ok)
	}
	if _, ok := ParseAppointmentStatus("rescheduled"); ok {
		t.Fatal("unknown status accepted")
	}
}
