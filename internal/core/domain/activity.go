package domain

import "time"

// ActivityKind names the operation an activity entry was derived from.
type ActivityKind string

const (
	ActivityReadingSaved      ActivityKind = "reading_saved"
	ActivityBookingCreated    ActivityKind = "booking_created"
	ActivityAppointmentStatus ActivityKind = "appointment_status"
)

const (
	MinActivityLimit     = 20
	MaxActivityLimit     = 200
	DefaultActivityLimit = MaxActivityLimit
)

// ActivityEntry is an append-only feed item. Users never edit it directly.
type ActivityEntry struct {
	ID      string       `json:"id"`
	ActorID string       `json:"actorId"`
	Kind    ActivityKind `json:"kind"`
	Label   string       `json:"label"`
	TS      time.Time    `json:"ts"`
}

// ClampActivityLimit keeps a configured feed length inside the supported range.
func ClampActivityLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultActivityLimit
	case n < MinActivityLimit:
		return MinActivityLimit
	case n > MaxActivityLimit:
		return MaxActivityLimit
	default:
		return n
	}
}
