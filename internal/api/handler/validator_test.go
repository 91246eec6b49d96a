package handler

import (
	"strings"
	"testing"
)

func TestRequestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&createAppointmentRequest{ServiceID: "svc_A", DateISO: "2026-11-02", TimeLabel: "10:00"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if err.Error() != "practitionerId is required" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestRequestValidator_JoinsMessages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerRequest{Name: "Ava", Email: "nope", Password: "x", Role: "admin"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{
		"email must be a valid email",
		"password must be at least 6 characters",
		"role must be one of: client practitioner",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestRequestValidator_RequiredPointer(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&verificationRequest{}); err == nil || err.Error() != "verified is required" {
		t.Fatalf("unexpected result: %v", err)
	}
	yes := false
	if err := v.Validate(&verificationRequest{Verified: &yes}); err != nil {
		t.Fatalf("false must satisfy required on a pointer: %v", err)
	}
}
