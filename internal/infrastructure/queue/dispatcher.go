package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 10 * time.Second
)

// ReceiptDispatcher hands committed orders to a fixed set of workers that
// deliver receipts. Orders are sharded by id so retries of one order never
// race each other.
type ReceiptDispatcher struct {
	workers []chan ports.OrderDTO
	sender  ports.ReceiptSender
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewReceiptDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewReceiptDispatcher(numWorkers int, sender ports.ReceiptSender, log zerolog.Logger) *ReceiptDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &ReceiptDispatcher{
		workers: make([]chan ports.OrderDTO, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.OrderDTO, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Close has drained their queues.
func (d *ReceiptDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish never blocks: when the worker's queue is full the receipt is
// dropped and logged.
func (d *ReceiptDispatcher) Publish(order ports.OrderDTO) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Int64("order_id", order.ID).Msg("receipt dispatcher closed, receipt dropped")
		return
	}

	select {
	case d.workers[d.shardIndex(order.ID)] <- order:
	default:
		d.log.Warn().Int64("order_id", order.ID).Msg("receipt queue full, receipt dropped")
	}
}

// Close stops accepting orders and waits for queued receipts to be sent.
func (d *ReceiptDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an order id deterministically to a worker index.
func (d *ReceiptDispatcher) shardIndex(orderID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(orderID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *ReceiptDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.OrderDTO) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-ch:
			if !ok {
				return
			}
			d.send(ctx, id, order)
		}
	}
}

func (d *ReceiptDispatcher) send(ctx context.Context, id int, order ports.OrderDTO) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.sender.SendReceipt(sendCtx, order); err != nil {
		d.log.Error().Err(err).
			Int64("order_id", order.ID).
			Int("worker_id", id).
			Msg("receipt delivery failed")
	}
}
