package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/infrastructure/db/memory"
)

func TestSaveReading_NewestFirstAndPersisted(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	s := newTestStore(t, b, newIdentity(client1))

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.SaveReading(ctx, tarotInput(title)); err != nil {
			t.Fatalf("SaveReading(%s): %v", title, err)
		}
	}

	got := s.ListReadings("c1")
	if len(got) != 3 || got[0].Title != "third" || got[2].Title != "first" {
		t.Fatalf("unexpected order: %+v", got)
	}

	// A fresh session over the same backend sees the same order.
	fresh := newTestStore(t, b, newIdentity(client1))
	again := fresh.ListReadings("c1")
	if len(again) != 3 || again[0].Title != "third" {
		t.Fatalf("reloaded order wrong: %+v", again)
	}
	payload, ok := again[0].Payload.(domain.TarotPayload)
	if !ok || len(payload.Cards) != 1 || payload.Cards[0].Name != "The Star" {
		t.Fatalf("payload not round-tripped: %#v", again[0].Payload)
	}
}

func TestListReadings_PayloadIsACopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New(true), newIdentity(client1))

	in := tarotInput("mine")
	in.Payload = domain.TarotPayload{
		Cards: []domain.TarotCard{{Name: "The Star", Keywords: []string{"hope"}}},
	}
	if _, err := s.SaveReading(ctx, in); err != nil {
		t.Fatalf("SaveReading: %v", err)
	}
	// The caller's own payload stays detached from the stored reading.
	in.Payload.(domain.TarotPayload).Cards[0].Name = "edited by caller"

	first := s.ListReadings("c1")[0].Payload.(domain.TarotPayload)
	first.Cards[0].Name = "The Tower"
	first.Cards[0].Keywords[0] = "ruin"

	again := s.ListReadings("c1")[0].Payload.(domain.TarotPayload)
	if again.Cards[0].Name != "The Star" || again.Cards[0].Keywords[0] != "hope" {
		t.Fatalf("stored reading was mutated through a returned copy: %+v", again.Cards[0])
	}
}

func TestSaveReading_Defaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, memory.New(true), newIdentity(client1))

	in := tarotInput("   ")
	if _, err := s.SaveReading(ctx, in); err != nil {
		t.Fatalf("SaveReading: %v", err)
	}
	got := s.ListReadings("c1")[0]
	if got.Title != "Reading" || got.OwnerID != "c1" {
		t.Fatalf("unexpected reading: %+v", got)
	}
	if feed := s.ListActivity(); feed[0].Label != "Saved Reading" || feed[0].Kind != domain.ActivityReadingSaved {
		t.Fatalf("unexpected activity: %+v", feed[0])
	}
}

func TestSaveReading_InvalidInput(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	s := newTestStore(t, b, newIdentity(client1))

	_, err := s.SaveReading(ctx, ports.SaveReadingInput{Type: "runes", Title: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("unknown type: expected ErrInvalidInput, got %v", err)
	}

	_, err = s.SaveReading(ctx, ports.SaveReadingInput{
		Type:    domain.ReadingHoroscope,
		Title:   "mismatch",
		Payload: domain.TarotPayload{},
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("payload mismatch: expected ErrInvalidInput, got %v", err)
	}
	if b.Len(ports.CollectionReadings) != 0 {
		t.Fatal("invalid readings must not be stored")
	}
}

func TestDeleteReading_Owner(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	s := newTestStore(t, b, newIdentity(client1))
	id, _ := s.SaveReading(ctx, tarotInput("bye"))

	if err := s.DeleteReading(ctx, id); err != nil {
		t.Fatalf("DeleteReading: %v", err)
	}
	if len(s.ListReadings("c1")) != 0 || b.Len(ports.CollectionReadings) != 0 {
		t.Fatal("reading not deleted")
	}
}

func TestDeleteReading_CrossOwnerIsNotFound(t *testing.T) {
	ctx := context.Background()
	b := memory.New(true)
	owner := newTestStore(t, b, newIdentity(client1))
	id, err := owner.SaveReading(ctx, tarotInput("private"))
	if err != nil {
		t.Fatalf("SaveReading: %v", err)
	}

	other := newTestStore(t, b, newIdentity(client2))
	if err := other.DeleteReading(ctx, id); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if b.Len(ports.CollectionReadings) != 1 {
		t.Fatal("another owner's reading must survive")
	}
	if b.Calls(memory.OpRemove) != 0 {
		t.Fatal("cross-owner delete must not reach the backend")
	}
}

func TestDeleteReading_UnknownID(t *testing.T) {
	s := newTestStore(t, memory.New(true), newIdentity(client1))
	if err := s.DeleteReading(context.Background(), "rdg_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
