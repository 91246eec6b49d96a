package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aayus49/spiritual-wellness/internal/core/ports"
	"github.com/aayus49/spiritual-wellness/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher is a ports.Backend that routes writes to a fixed set of lanes
// using consistent hashing on collection and record id, so writes to the same
// record from different sessions reach the backend in submission order.
// Reads go straight to the wrapped backend.
//
// Writes block until their lane has executed them; Start must be called
// before the first write. Once a write is queued its caller waits for the
// outcome even if the caller's context ends, so a reported error always means
// the write did not land. A write whose context has ended before its lane
// reaches it is skipped and reports the context error.
type Dispatcher struct {
	lanes []chan *write
	next  ports.Backend
	log   zerolog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// ErrStopped is returned for writes that were still queued when the
// dispatcher shut down.
var ErrStopped = errors.New("write dispatcher stopped")

type write struct {
	ctx  context.Context
	op   string
	c    ports.Collection
	id   string
	run  func(ctx context.Context) error
	done chan error
}

var _ ports.Backend = (*Dispatcher)(nil)
var _ ports.CapabilityReporter = (*Dispatcher)(nil)

// NewDispatcher wraps next with numWorkers lanes. If numWorkers <= 0,
// defaultWorkers is used.
func NewDispatcher(numWorkers int, next ports.Backend, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		lanes: make([]chan *write, numWorkers),
		next:  next,
		log:   log,
		stop:  make(chan struct{}),
	}
	for i := range d.lanes {
		d.lanes[i] = make(chan *write, channelBuffer)
	}
	return d
}

// Start launches all lane goroutines. Lanes stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.lanes {
		go d.runLane(ctx, i, ch)
	}
	go func() {
		<-ctx.Done()
		d.stopOnce.Do(func() { close(d.stop) })
	}()
}

func (d *Dispatcher) Capabilities() ports.Capabilities {
	return ports.CapabilitiesOf(d.next)
}

func (d *Dispatcher) Get(ctx context.Context, c ports.Collection, f ports.Filter) ([]ports.Record, error) {
	return d.next.Get(ctx, c, f)
}

func (d *Dispatcher) Put(ctx context.Context, c ports.Collection, r ports.Record) (string, error) {
	id := r.ID()
	if id == "" {
		id = uuid.NewString()
		withID := make(ports.Record, len(r)+1)
		for k, v := range r {
			withID[k] = v
		}
		withID["id"] = id
		r = withID
	}
	err := d.submit(ctx, "put", c, id, func(ctx context.Context) error {
		_, err := d.next.Put(ctx, c, r)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *Dispatcher) Update(ctx context.Context, c ports.Collection, id string, p ports.Patch) error {
	return d.submit(ctx, "update", c, id, func(ctx context.Context) error {
		return d.next.Update(ctx, c, id, p)
	})
}

func (d *Dispatcher) Remove(ctx context.Context, c ports.Collection, id string) error {
	return d.submit(ctx, "remove", c, id, func(ctx context.Context) error {
		return d.next.Remove(ctx, c, id)
	})
}

func (d *Dispatcher) submit(ctx context.Context, op string, c ports.Collection, id string, run func(context.Context) error) error {
	w := &write{ctx: ctx, op: op, c: c, id: id, run: run, done: make(chan error, 1)}
	lane := d.laneIndex(c, id)

	select {
	case d.lanes[lane] <- w:
		metrics.WriteQueueDepth.WithLabelValues(strconv.Itoa(lane)).Inc()
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stop:
		return ErrStopped
	}

	// The lane owns the write now; only its answer says whether it landed.
	select {
	case err := <-w.done:
		return err
	case <-d.stop:
		select {
		case err := <-w.done:
			return err
		default:
			return ErrStopped
		}
	}
}

// laneIndex maps a record deterministically to a lane.
func (d *Dispatcher) laneIndex(c ports.Collection, id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(c))
	_, _ = h.Write([]byte{'/'})
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % uint32(len(d.lanes)))
}

func (d *Dispatcher) runLane(ctx context.Context, id int, ch <-chan *write) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-ch:
			if !ok {
				return
			}
			metrics.WriteQueueDepth.WithLabelValues(label).Dec()
			if ctx.Err() != nil {
				w.done <- ErrStopped
				return
			}
			if err := w.ctx.Err(); err != nil {
				w.done <- err
				continue
			}
			start := time.Now()
			err := w.run(w.ctx)
			metrics.WriteDuration.WithLabelValues(w.op).Observe(time.Since(start).Seconds())
			if err != nil {
				d.log.Error().Err(err).
					Str("collection", string(w.c)).
					Str("record_id", w.id).
					Int("lane", id).
					Msg("backend write failed")
			}
			w.done <- err
		}
	}
}
