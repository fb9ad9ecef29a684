package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	matchpublisherv1 "github.com/muhammadchandra19/matching-core/internal/domain/match-publisher/v1"
	orderreaderv1 "github.com/muhammadchandra19/matching-core/internal/domain/order-reader/v1"
	orderbookv1 "github.com/muhammadchandra19/matching-core/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/matching-core/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/matching-core/pkg/config"
	"github.com/muhammadchandra19/matching-core/pkg/logger"
	"go.uber.org/zap/zapcore"
)

// submission pairs a queued order with its completion handle.
type submission struct {
	order  *orderbookv1.Order
	result *OrderResult
}

// Engine is the submission pipeline in front of the order book: a
// multi-producer FIFO queue drained by a fixed worker pool. Each worker
// routes one order at a time through the book, records the processing
// latency, and resolves the order's completion handle.
//
// orderReader, snapshotStore and matchPublisher are optional
// collaborators; a nil value disables the corresponding background
// routine.
type Engine struct {
	orderbook      orderbookv1.Orderbook
	orderReader    orderreaderv1.OrderReader
	snapshotStore  snapshotv1.Store
	matchPublisher matchpublisherv1.MatchPublisher
	logger         *logger.Logger
	config         *config.Config

	// Submission queue. queueMu also guards the stopped flag so the
	// workers' wait predicate is race-free.
	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []submission
	stopped   bool

	workers            int
	snapshotInterval   time.Duration
	snapshotOrderDelta uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Performance metrics.
	totalLatencyMicros atomic.Uint64
	orderCount         atomic.Uint64
	lastSnapshotCount  atomic.Uint64

	// Offset of the last order-feed message folded into the book; -1
	// until the first message. Captured in snapshots so a restart
	// resumes the feed where it left off.
	orderOffset atomic.Int64

	startMu   sync.RWMutex
	startTime time.Time
}

// NewEngine creates a new engine with the provided dependencies and
// default options.
func NewEngine(
	orderbook orderbookv1.Orderbook,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	matchPublisher matchpublisherv1.MatchPublisher,
	logger *logger.Logger,
	config *config.Config,
) *Engine {
	return NewEngineWithOptions(orderbook, orderReader, snapshotStore, matchPublisher, logger, config, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options.
func NewEngineWithOptions(
	orderbook orderbookv1.Orderbook,
	orderReader orderreaderv1.OrderReader,
	snapshotStore snapshotv1.Store,
	matchPublisher matchpublisherv1.MatchPublisher,
	log *logger.Logger,
	config *config.Config,
	options *Options,
) *Engine {
	workers := options.Workers
	if workers <= 0 {
		workers = DefaultEngineOptions().Workers
	}

	e := &Engine{
		orderbook:      orderbook,
		orderReader:    orderReader,
		snapshotStore:  snapshotStore,
		matchPublisher: matchPublisher,
		logger:         log,
		config:         config,

		workers:            workers,
		snapshotInterval:   options.SnapshotInterval,
		snapshotOrderDelta: options.SnapshotOrderDelta,
	}
	e.queueCond = sync.NewCond(&e.queueMu)
	e.orderOffset.Store(-1)

	// Restore book state before accepting any order.
	if err := e.loadSnapshot(context.Background()); err != nil {
		e.logger.GetZap().Fatal("Failed to load snapshot", zapcore.Field{
			Key:       "error",
			Type:      zapcore.ErrorType,
			Interface: err,
		})
	}

	return e
}

// Start spawns the worker pool and background routines and begins
// processing. Orders submitted before Start stay queued until a worker
// picks them up.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.startMu.Lock()
	e.startTime = time.Now()
	e.startMu.Unlock()

	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}

	if e.orderReader != nil {
		e.wg.Add(1)
		go e.runOrderFeed()
	}

	if e.snapshotStore != nil {
		e.wg.Add(1)
		go e.runSnapshotManager()
	}

	e.logger.Info("Engine started",
		logger.Field{Key: "pair", Value: e.config.Pair},
		logger.Field{Key: "workers", Value: e.workers},
	)

	return nil
}

// Stop shuts the engine down. Workers drain their condition wait and
// exit; queue entries still pending are NOT processed and their handles
// resolve to false.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	e.queueMu.Lock()
	e.stopped = true
	e.queueCond.Broadcast()
	e.queueMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		err = ctx.Err()
	}

	e.drainQueue()
	return err
}

// drainQueue resolves every pending submission as cancelled.
func (e *Engine) drainQueue() {
	e.queueMu.Lock()
	pending := e.queue
	e.queue = nil
	e.queueMu.Unlock()

	for _, sub := range pending {
		sub.result.resolve(false)
	}
}

// SubmitOrder enqueues an order for processing and returns its
// completion handle. The handle resolves to true iff the book accepted
// the order; submissions after Stop resolve to false immediately.
func (e *Engine) SubmitOrder(order *orderbookv1.Order) *OrderResult {
	result := newOrderResult()

	e.queueMu.Lock()
	if e.stopped {
		e.queueMu.Unlock()
		result.resolve(false)
		return result
	}
	e.queue = append(e.queue, submission{order: order, result: result})
	e.queueCond.Signal()
	e.queueMu.Unlock()

	return result
}

// CancelOrder cancels synchronously, bypassing the queue. The race with
// an in-flight submission of the same id is resolved by the book lock:
// the cancel succeeds iff it runs after the order was inserted.
func (e *Engine) CancelOrder(orderID string) bool {
	return e.orderbook.CancelOrder(orderID)
}

// worker loops: wait for work, dequeue one order, route it through the
// book, record latency from dequeue, resolve the handle.
func (e *Engine) worker() {
	defer e.wg.Done()

	for {
		e.queueMu.Lock()
		for len(e.queue) == 0 && !e.stopped {
			e.queueCond.Wait()
		}
		if e.stopped {
			e.queueMu.Unlock()
			return
		}
		sub := e.queue[0]
		e.queue = e.queue[1:]
		e.queueMu.Unlock()

		start := time.Now()
		accepted := e.processOrder(sub.order)
		elapsed := time.Since(start)

		e.totalLatencyMicros.Add(uint64(elapsed.Microseconds()))
		e.orderCount.Add(1)

		sub.result.resolve(accepted)
	}
}

// processOrder routes a single order by type. Market residual is
// discarded; limit residual rests; stop orders park in the stop table.
func (e *Engine) processOrder(order *orderbookv1.Order) bool {
	if order == nil || order.Quantity <= 0 {
		return false
	}

	switch order.Type {
	case orderbookv1.OrderTypeMarket:
		matches := e.orderbook.MatchMarketOrder(order)
		e.afterMatch(matches)
		return true

	case orderbookv1.OrderTypeLimit:
		matches := e.orderbook.MatchMarketOrder(order)
		e.afterMatch(matches)
		if order.Quantity > 0 {
			return e.orderbook.AddOrder(order)
		}
		return true

	case orderbookv1.OrderTypeStop:
		return e.orderbook.AddOrder(order)

	default:
		return false
	}
}

// afterMatch runs the stop-activation cascade off the last fill price and
// hands the fills to the downstream consumer.
func (e *Engine) afterMatch(matches []orderbookv1.Match) {
	if len(matches) == 0 {
		return
	}

	lastPrice := matches[len(matches)-1].Price
	e.orderbook.CheckStopOrders(lastPrice)

	e.logger.Debug("Matches executed",
		logger.Field{Key: "matchCount", Value: len(matches)},
		logger.Field{Key: "lastPrice", Value: lastPrice},
	)

	if e.matchPublisher == nil {
		return
	}
	for i := range matches {
		event := matchpublisherv1.CreateFromMatch(&matches[i])
		if err := e.matchPublisher.PublishMatchEvent(e.ctx, event); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "publish_match_event",
			})
		}
	}
}

// runOrderFeed pumps submissions from the order reader into the queue.
func (e *Engine) runOrderFeed() {
	defer e.wg.Done()

	e.logger.Info("Starting order feed", logger.Field{
		Key:   "pair",
		Value: e.config.Pair,
	})

	// Resume right after the offset captured in the restored snapshot.
	currentOffset := e.orderOffset.Load()
	if currentOffset >= 0 {
		currentOffset++
	}

	if err := e.orderReader.SetOffset(currentOffset); err != nil {
		e.logger.GetZap().Fatal("Failed to set offset for order reader", zapcore.Field{
			Key:       "error",
			Type:      zapcore.ErrorType,
			Interface: err,
		})
	}

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order feed shutting down")
			e.orderReader.Close()
			return
		default:
			msg, payload, err := e.orderReader.ReadMessage(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_order_message",
				})
				// Simple backoff
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_order_message",
				})
			}

			if payload.Type == orderreaderv1.PayloadTypeCancel {
				e.CancelOrder(payload.OrderID)
				e.orderOffset.Store(msg.Offset)
				continue
			}

			// Feed producers observe outcomes on the match topic; the
			// completion handle is not read here.
			e.SubmitOrder(orderbookv1.NewOrder(
				payload.OrderID,
				orderbookv1.OrderType(payload.Type),
				payload.Bid,
				payload.Price,
				payload.Quantity,
				payload.StopPrice,
			))

			e.orderOffset.Store(msg.Offset)
		}
	}
}

// runSnapshotManager stores periodic snapshots once enough orders have
// been processed since the last one.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot()
			}
		}
	}
}

func (e *Engine) shouldCreateSnapshot() bool {
	processed := e.orderCount.Load()
	return processed-e.lastSnapshotCount.Load() >= e.snapshotOrderDelta
}

func (e *Engine) createAndStoreSnapshot() {
	processed := e.orderCount.Load()

	snapshot := e.orderbook.CreateSnapshot()
	snapshot.OrdersProcessed = processed
	snapshot.OrderOffset = e.orderOffset.Load()

	if err := e.snapshotStore.Store(e.ctx, snapshot); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		})
		return
	}

	e.lastSnapshotCount.Store(processed)
}

func (e *Engine) loadSnapshot(ctx context.Context) error {
	if e.snapshotStore == nil {
		return nil
	}

	snapshot, err := e.snapshotStore.LoadStore(ctx)
	if err != nil {
		return err
	}

	if snapshot != nil {
		if err := e.orderbook.RestoreOrderbook(snapshot); err != nil {
			return err
		}
		e.orderOffset.Store(snapshot.OrderOffset)
		e.logger.Info("Orderbook restored from snapshot", logger.Field{
			Key:   "ordersProcessed",
			Value: snapshot.OrdersProcessed,
		}, logger.Field{
			Key:   "orderOffset",
			Value: snapshot.OrderOffset,
		})
	}

	return nil
}

// AverageLatencyMicros returns the mean per-order processing latency,
// measured from dequeue until routing through the book returns, in
// microseconds.
func (e *Engine) AverageLatencyMicros() float64 {
	count := e.orderCount.Load()
	if count == 0 {
		return 0.0
	}
	return float64(e.totalLatencyMicros.Load()) / float64(count)
}

// OrdersProcessedPerSecond returns the processing throughput since
// Start. It reports 0 before one full second has elapsed.
func (e *Engine) OrdersProcessedPerSecond() uint64 {
	e.startMu.RLock()
	startTime := e.startTime
	e.startMu.RUnlock()

	if startTime.IsZero() {
		return 0
	}

	seconds := uint64(time.Since(startTime).Seconds())
	if seconds == 0 {
		return 0
	}
	return e.orderCount.Load() / seconds
}

// OrdersProcessed returns the number of orders processed since Start.
func (e *Engine) OrdersProcessed() uint64 {
	return e.orderCount.Load()
}
