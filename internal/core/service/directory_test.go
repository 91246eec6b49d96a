package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/memory"
)

func TestListDirectory_NeverListsUnverified(t *testing.T) {
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(true))
	hidden := emmaProfile(false)
	hidden.UserID, hidden.Name = "p2", "Noah"
	seedProfile(t, b, hidden)

	for _, actor := range []domain.Account{domain.Guest, client1, prac2, admin} {
		s := newTestStore(t, b, newIdentity(actor))
		for _, p := range s.ListDirectory("") {
			if !p.Verified {
				t.Fatalf("%s saw unverified profile %s", actor.Role, p.UserID)
			}
		}
	}
}

func TestListDirectory_Search(t *testing.T) {
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(true))
	noah := emmaProfile(true)
	noah.UserID, noah.Name, noah.Specialties = "p2", "Noah", []string{"Numerology"}
	seedProfile(t, b, noah)
	s := newTestStore(t, b, newIdentity(domain.Guest))

	if got := s.ListDirectory("TAROT"); len(got) != 1 || got[0].UserID != "p1" {
		t.Fatalf("specialty search: %+v", got)
	}
	if got := s.ListDirectory("noa"); len(got) != 1 || got[0].UserID != "p2" {
		t.Fatalf("name search: %+v", got)
	}
	if got := s.ListDirectory("crystals"); len(got) != 0 {
		t.Fatalf("expected no match, got %+v", got)
	}
}

func TestRegisterPractitioner_CreatesUnverifiedProfileWithDefaultService(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	s := newTestStore(t, b, newIdentity(prac2))

	if err := s.RegisterPractitioner(ctx, "Noah", "noah@example.com"); err != nil {
		t.Fatalf("RegisterPractitioner: %v", err)
	}
	if err := s.RegisterPractitioner(ctx, "Noah", "noah@example.com"); err != nil {
		t.Fatalf("second RegisterPractitioner: %v", err)
	}
	if b.Len(ports.CollectionProfiles) != 1 {
		t.Fatalf("profiles = %d, want 1", b.Len(ports.CollectionProfiles))
	}

	p, err := s.GetPractitioner("p2")
	if err != nil {
		t.Fatalf("owner should see own unverified profile: %v", err)
	}
	if p.Verified || len(p.Services) != 1 || p.Services[0].ID != "svc_p2_1" || p.PriceGBP != domain.DefaultServicePriceGBP {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if len(s.ListDirectory("")) != 0 {
		t.Fatal("new profile must not be listed before verification")
	}
}

func TestRegisterPractitioner_RequiresPractitionerRole(t *testing.T) {
	s := newTestStore(t, memory.New(true), newIdentity(client1))
	if err := s.RegisterPractitioner(context.Background(), "Ava", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSetVerification_Scenario(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(false))

	guest := newTestStore(t, b, newIdentity(domain.Guest))
	if len(guest.ListDirectory("")) != 0 {
		t.Fatal("unverified profile listed")
	}
	if _, err := guest.GetPractitioner("p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("guest lookup of unverified profile: %v", err)
	}

	adm := newTestStore(t, b, newIdentity(admin))
	all, err := adm.ListAllPractitioners()
	if err != nil || len(all) != 1 {
		t.Fatalf("ListAllPractitioners: %v %+v", err, all)
	}
	if err := adm.SetVerification(ctx, "p1", true); err != nil {
		t.Fatalf("SetVerification: %v", err)
	}
	if err := adm.SetVerification(ctx, "p1", true); err != nil {
		t.Fatalf("idempotent SetVerification: %v", err)
	}

	if err := guest.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	dir := guest.ListDirectory("")
	if len(dir) != 1 || dir[0].UserID != "p1" || len(dir[0].Services) != 2 {
		t.Fatalf("verified profile should be listed unchanged: %+v", dir)
	}

	if err := adm.SetVerification(ctx, "p1", false); err != nil {
		t.Fatalf("unverify: %v", err)
	}
	if err := guest.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(guest.ListDirectory("")) != 0 {
		t.Fatal("unverified profile still listed")
	}
}

func TestSetVerification_AdminOnly(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(false))

	for _, actor := range []domain.Account{client1, prac1} {
		s := newTestStore(t, b, newIdentity(actor))
		if err := s.SetVerification(ctx, "p1", true); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", actor.Role, err)
		}
		if _, err := s.ListAllPractitioners(); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: ListAllPractitioners expected ErrUnauthorized, got %v", actor.Role, err)
		}
	}
	if b.Calls(memory.OpUpdate) != 0 {
		t.Fatal("non-admin verification must not reach the backend")
	}
}

func TestSetVerification_UnknownProfile(t *testing.T) {
	s := newTestStore(t, memory.New(true), newIdentity(admin))
	if err := s.SetVerification(context.Background(), "ghost", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMyServices_ReplacesCatalog(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(true))
	s := newTestStore(t, b, newIdentity(prac1))

	next := []domain.Service{{ID: "svc_C", Title: "Life Direction Session", Type: "Coaching", DurationMin: 60, PriceGBP: 70}}
	if err := s.UpdateMyServices(ctx, next); err != nil {
		t.Fatalf("UpdateMyServices: %v", err)
	}

	p, err := s.GetPractitioner("p1")
	if err != nil {
		t.Fatalf("GetPractitioner: %v", err)
	}
	if len(p.Services) != 1 || p.Services[0].ID != "svc_C" || p.PriceGBP != 70 {
		t.Fatalf("catalog not replaced: %+v", p)
	}

	fresh := newTestStore(t, b, newIdentity(domain.Guest))
	if got := fresh.ListDirectory("")[0]; len(got.Services) != 1 || got.PriceGBP != 70 {
		t.Fatalf("catalog not persisted: %+v", got)
	}
}

func TestUpdateMyServices_Validation(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(true))
	s := newTestStore(t, b, newIdentity(prac1))

	cases := map[string][]domain.Service{
		"duplicate ids": {
			{ID: "svc_A", Title: "One", DurationMin: 30, PriceGBP: 10},
			{ID: "svc_A", Title: "Two", DurationMin: 30, PriceGBP: 10},
		},
		"zero duration":  {{ID: "svc_A", Title: "One", DurationMin: 0, PriceGBP: 10}},
		"negative price": {{ID: "svc_A", Title: "One", DurationMin: 30, PriceGBP: -1}},
		"missing title":  {{ID: "svc_A", DurationMin: 30, PriceGBP: 10}},
	}
	for name, services := range cases {
		if err := s.UpdateMyServices(ctx, services); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if b.Calls(memory.OpUpdate) != 0 {
		t.Fatal("invalid catalogs must not reach the backend")
	}
}

func TestUpdateMyServices_EmptyCatalogZeroesSummaryPrice(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	seedProfile(t, b, emmaProfile(true))
	s := newTestStore(t, b, newIdentity(prac1))

	if err := s.UpdateMyServices(ctx, nil); err != nil {
		t.Fatalf("UpdateMyServices: %v", err)
	}
	p, _ := s.GetPractitioner("p1")
	if len(p.Services) != 0 || p.PriceGBP != 0 {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestUpdateMyServices_RequiresProfile(t *testing.T) {
	s := newTestStore(t, memory.New(true), newIdentity(prac2))
	err := s.UpdateMyServices(context.Background(), emmaProfile(true).Services)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
