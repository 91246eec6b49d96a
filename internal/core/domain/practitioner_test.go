package domain

import (
	"testing"
	"time"
)

func TestNewPractitionerProfile(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewPractitionerProfile("p9", "Iris", "iris@example.com", now)

	if p.Verified {
		t.Fatal("new profiles start unverified")
	}
	if len(p.Services) != 1 {
		t.Fatalf("services = %d, want 1", len(p.Services))
	}
	svc := p.Services[0]
	if svc.ID != "svc_p9_1" || svc.PriceGBP != DefaultServicePriceGBP || svc.DurationMin != DefaultServiceDuration {
		t.Fatalf("unexpected default service: %+v", svc)
	}
	if p.PriceGBP != SummaryPrice(p.Services) || p.Bio != DefaultPractitionerBio {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestPractitionerProfile_Clone(t *testing.T) {
	p := NewPractitionerProfile("p9", "Iris", "", time.Time{})
	c := p.Clone()
	c.Services[0].PriceGBP = 99
	c.Specialties[0] = "Runes"

	if p.Services[0].PriceGBP == 99 || p.Specialties[0] == "Runes" {
		t.Fatal("clone shares slices with original")
	}
}

func TestSummaryPrice_Empty(t *testing.T) {
	if SummaryPrice(nil) != 0 {
		t.Fatal("empty catalog should summarise to 0")
	}
}
