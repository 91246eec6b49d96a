package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

func TestBackend_CRUD(t *testing.T) {
	ctx := context.Background()
	b := New(false)

	id, err := b.Put(ctx, ports.CollectionReadings, ports.Record{"ownerId": "c1", "title": "A"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if id == "" {
		t.Fatal("expected assigned id")
	}

	if err := b.Update(ctx, ports.CollectionReadings, id, ports.Patch{"title": "B"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := b.Get(ctx, ports.CollectionReadings, ports.Filter{"ownerId": "c1"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0]["title"] != "B" {
		t.Fatalf("unexpected records: %v", got)
	}

	if err := b.Remove(ctx, ports.CollectionReadings, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := b.Remove(ctx, ports.CollectionReadings, id); !errors.Is(err, ports.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestBackend_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := New(false)
	_, _ = b.Put(ctx, ports.CollectionProfiles, ports.Record{"id": "p1", "verified": false})

	got, _ := b.Get(ctx, ports.CollectionProfiles, nil)
	got[0]["verified"] = true

	again, _ := b.Get(ctx, ports.CollectionProfiles, ports.Filter{"verified": false})
	if len(again) != 1 {
		t.Fatal("mutating a returned record must not change stored data")
	}
}

func TestBackend_FaultInjection(t *testing.T) {
	ctx := context.Background()
	b := New(true)
	boom := errors.New("offline")
	b.SetFault(func(op Op, c ports.Collection) error {
		if op == OpPut {
			return boom
		}
		return nil
	})

	if _, err := b.Put(ctx, ports.CollectionReadings, ports.Record{"id": "r1"}); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if b.Len(ports.CollectionReadings) != 0 {
		t.Fatal("failed put must not store")
	}
	if b.Calls(OpPut) != 1 {
		t.Fatalf("calls = %d", b.Calls(OpPut))
	}
	if !ports.CapabilitiesOf(b).DurableActivity {
		t.Fatal("expected durable activity capability")
	}
}
