package ports

import (
	"context"
	"errors"
)

// Collection names a document set in a persistence backend.
type Collection string

const (
	CollectionReadings     Collection = "readings"
	CollectionAppointments Collection = "appointments"
	CollectionProfiles     Collection = "profiles"
	CollectionActivity     Collection = "activity"
	CollectionAccounts     Collection = "accounts"
)

// Record is a schemaless document keyed by its "id" field. Values are
// JSON-compatible: strings, float64, bool, nil, []any and map[string]any.
type Record map[string]any

// ID returns the record's identity field.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Filter selects records whose fields equal every listed value. An empty
// filter selects the whole collection.
type Filter map[string]any

// Patch lists top-level fields to overwrite on an existing record.
type Patch map[string]any

// ErrRecordNotFound is returned by Update and Remove when no record has the id.
var ErrRecordNotFound = errors.New("record not found")

// Backend is the persistence capability the domain store is written against.
// Implementations may be synchronous (local) or remote; callers treat every
// call as potentially slow and cancellable through ctx.
type Backend interface {
	Get(ctx context.Context, c Collection, f Filter) ([]Record, error)
	// Put inserts or replaces a record. When the record carries no id the
	// backend assigns one. The stored id is returned.
	Put(ctx context.Context, c Collection, r Record) (string, error)
	Update(ctx context.Context, c Collection, id string, p Patch) error
	Remove(ctx context.Context, c Collection, id string) error
}

// Capabilities describes optional backend behaviour.
type Capabilities struct {
	// DurableActivity is true when the activity collection is stored and can
	// be read back; otherwise the feed is re-derived on refresh.
	DurableActivity bool
}

// CapabilityReporter is implemented by backends that advertise Capabilities.
type CapabilityReporter interface {
	Capabilities() Capabilities
}

// CapabilitiesOf returns b's capabilities, or the zero value when b does not
// report any.
func CapabilitiesOf(b Backend) Capabilities {
	if cr, ok := b.(CapabilityReporter); ok {
		return cr.Capabilities()
	}
	return Capabilities{}
}
