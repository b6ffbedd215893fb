package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenroute/dispatch-system/internal/core/domain"
	"github.com/greenroute/dispatch-system/internal/core/ports"
	"github.com/greenroute/dispatch-system/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes job events to a fixed set of workers using consistent
// hashing on the job id, guaranteeing per-job event ordering.
type Dispatcher struct {
	workers []chan domain.JobEvent
	service ports.EventService
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.JobEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.JobEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx does not abort
// in-flight records; call Stop to drain and wait.
func (d *Dispatcher) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(base, i, ch)
	}
}

// Publish hands an event to the worker responsible for its job. It never
// blocks: when the shard is full or the dispatcher is stopped the event is
// dropped and counted.
func (d *Dispatcher) Publish(event domain.JobEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		metrics.AuditEventsErrorsTotal.WithLabelValues("stopped").Inc()
		return
	}

	idx := d.shardIndex(event.JobID)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditEventsErrorsTotal.WithLabelValues("queue_full").Inc()
		d.log.Warn().
			Str("job", event.JobID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

// Stop closes every shard and waits until queued events are recorded or ctx
// expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a job id deterministically to a worker index.
func (d *Dispatcher) shardIndex(jobID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(jobID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.JobEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for event := range ch {
		metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

		recordCtx, cancel := context.WithTimeout(ctx, recordTimeout)
		err := d.service.Record(recordCtx, event)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("job", event.JobID).
				Str("type", string(event.Type)).
				Int("worker_id", id).
				Msg("audit event failed")
		}
	}
}
