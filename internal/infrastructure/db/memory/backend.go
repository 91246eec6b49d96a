// Package memory is an in-process ports.Backend used by tests and by the
// server when no durable storage is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// Op names a backend call for fault injection.
type Op string

const (
	OpGet    Op = "get"
	OpPut    Op = "put"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// FaultFunc may return an error to make a call fail before it touches data.
type FaultFunc func(op Op, c ports.Collection) error

type Backend struct {
	mu      sync.Mutex
	data    map[ports.Collection][]ports.Record
	durable bool
	fault   FaultFunc
	calls   map[Op]int
}

var _ ports.Backend = (*Backend)(nil)
var _ ports.CapabilityReporter = (*Backend)(nil)

// New returns an empty backend. durableActivity controls whether it reports
// the activity capability.
func New(durableActivity bool) *Backend {
	return &Backend{
		data:    make(map[ports.Collection][]ports.Record),
		durable: durableActivity,
		calls:   make(map[Op]int),
	}
}

func (b *Backend) Capabilities() ports.Capabilities {
	return ports.Capabilities{DurableActivity: b.durable}
}

// SetFault installs f; nil clears it.
func (b *Backend) SetFault(f FaultFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fault = f
}

// Calls reports how many times op was attempted.
func (b *Backend) Calls(op Op) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Len reports the number of records in c.
func (b *Backend) Len(c ports.Collection) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data[c])
}

func (b *Backend) enter(op Op, c ports.Collection) error {
	b.calls[op]++
	if b.fault != nil {
		return b.fault(op, c)
	}
	return nil
}

func (b *Backend) Get(ctx context.Context, c ports.Collection, f ports.Filter) ([]ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpGet, c); err != nil {
		return nil, err
	}
	out := []ports.Record{}
	for _, r := range b.data[c] {
		if matches(r, f) {
			out = append(out, clone(r))
		}
	}
	return out, nil
}

func (b *Backend) Put(ctx context.Context, c ports.Collection, r ports.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec, err := normalize(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpPut, c); err != nil {
		return "", err
	}
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
		rec["id"] = id
	}
	for i, existing := range b.data[c] {
		if existing.ID() == id {
			b.data[c][i] = rec
			return id, nil
		}
	}
	b.data[c] = append(b.data[c], rec)
	return id, nil
}

func (b *Backend) Update(ctx context.Context, c ports.Collection, id string, p ports.Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := normalize(ports.Record(p))
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpUpdate, c); err != nil {
		return err
	}
	for _, existing := range b.data[c] {
		if existing.ID() != id {
			continue
		}
		for k, v := range patch {
			if k != "id" {
				existing[k] = v
			}
		}
		return nil
	}
	return ports.ErrRecordNotFound
}

func (b *Backend) Remove(ctx context.Context, c ports.Collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.enter(OpRemove, c); err != nil {
		return err
	}
	list := b.data[c]
	for i, existing := range list {
		if existing.ID() == id {
			b.data[c] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ports.ErrRecordNotFound
}

func matches(r ports.Record, f ports.Filter) bool {
	for k, want := range f {
		if r[k] != want {
			return false
		}
	}
	return true
}

// normalize deep-copies r through JSON so stored values never alias the
// caller's and always have JSON shapes.
func normalize(r ports.Record) (ports.Record, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out := ports.Record{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

func clone(r ports.Record) ports.Record {
	out, _ := normalize(r)
	return out
}
