package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/api/metrics"
	"github.com/mechshop/service-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher routes ticket activity to a fixed set of workers using consistent
// hashing on the ticket id, guaranteeing per-ticket event ordering.
type Dispatcher struct {
	workers []chan ports.TicketActivity
	sink    ports.ActivitySink
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink ports.ActivitySink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.TicketActivity, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.TicketActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers flush what is already queued
// and stop when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record hands the activity to the worker responsible for its ticket. It never
// blocks: when that worker's buffer is full the event is dropped and counted.
func (d *Dispatcher) Record(a ports.TicketActivity) {
	idx := d.shardIndex(a.TicketID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityPublishedTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Int64("ticket_id", a.TicketID).
			Str("routing_key", a.RoutingKey()).
			Int("worker_id", idx).
			Msg("activity queue full, event dropped")
	}
}

// shardIndex maps a ticket id deterministically to a worker index.
func (d *Dispatcher) shardIndex(ticketID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(ticketID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.TicketActivity) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case a := <-ch:
			metrics.ActivityQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.publish(ctx, id, a)
		}
	}
}

// drain publishes whatever is still buffered, detached from the cancelled context.
func (d *Dispatcher) drain(id int, ch <-chan ports.TicketActivity) {
	for {
		select {
		case a := <-ch:
			d.publish(context.Background(), id, a)
		default:
			metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, workerID int, a ports.TicketActivity) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := d.sink.Publish(ctx, a)
	metrics.ActivityPublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ActivityPublishedTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Int64("ticket_id", a.TicketID).
			Str("routing_key", a.RoutingKey()).
			Int("worker_id", workerID).
			Msg("activity publish failed")
		return
	}
	metrics.ActivityPublishedTotal.WithLabelValues("ok").Inc()
}
