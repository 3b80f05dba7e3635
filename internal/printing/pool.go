package printing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/ws"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store defines the DB methods the workers need besides job selection.
// Satisfied by *database.Queries.
type Store interface {
	RecordOrderPrint(ctx context.Context, arg database.RecordOrderPrintParams) (int64, error)
	ListActivePrinters(ctx context.Context) ([]database.Printer, error)
}

// Broadcaster pushes print events to websocket clients.
type Broadcaster interface {
	BroadcastToPrinter(printerID uuid.UUID, event ws.Event)
}

type PoolConfig struct {
	// Backoff is the pause after an empty poll or a failed attempt.
	Backoff time.Duration
}

// Pool runs one worker per active printer.
type Pool struct {
	selector    *Selector
	store       Store
	renderer    Renderer
	transmitter Transmitter
	hub         Broadcaster
	logger      *zap.SugaredLogger
	cfg         PoolConfig

	mu      sync.Mutex
	ctx     context.Context
	workers map[uuid.UUID]*worker
	wg      sync.WaitGroup
}

func NewPool(selector *Selector, store Store, renderer Renderer, transmitter Transmitter, hub Broadcaster, logger *zap.SugaredLogger, cfg PoolConfig) *Pool {
	if cfg.Backoff <= 0 {
		cfg.Backoff = 5 * time.Second
	}
	return &Pool{
		selector:    selector,
		store:       store,
		renderer:    renderer,
		transmitter: transmitter,
		hub:         hub,
		logger:      logger,
		cfg:         cfg,
		workers:     make(map[uuid.UUID]*worker),
	}
}

// Start launches a worker for every active printer. Workers stop when ctx is
// cancelled or Stop is called.
func (p *Pool) Start(ctx context.Context) error {
	printers, err := p.store.ListActivePrinters(ctx)
	if err != nil {
		return fmt.Errorf("list active printers: %w", err)
	}

	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()

	for _, printer := range printers {
		p.Add(printer)
	}
	p.logger.Infow("print pool started", "printers", len(printers))
	return nil
}

// Add starts a worker for printer. It is a no-op if one is already running
// or the context given to Start is done.
func (p *Pool) Add(printer database.Printer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.workers[printer.ID]; ok {
		return
	}
	parent := p.ctx
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		p.logger.Warnw("print pool stopped, worker not started", "printer_id", printer.ID)
		return
	}
	ctx, cancel := context.WithCancel(parent)
	w := &worker{pool: p, printer: printer, cancel: cancel, done: make(chan struct{})}
	p.workers[printer.ID] = w

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		w.run(ctx)
		p.forget(w)
	}()
	p.logger.Infow("print worker started", "printer_id", printer.ID, "address", printer.Address)
}

// Remove stops the worker of printerID and waits for it to exit. An in-flight
// send finishes or times out first.
func (p *Pool) Remove(printerID uuid.UUID) {
	p.mu.Lock()
	w, ok := p.workers[printerID]
	delete(p.workers, printerID)
	p.mu.Unlock()

	if !ok {
		return
	}
	w.cancel()
	<-w.done
	p.logger.Infow("print worker stopped", "printer_id", printerID)
}

// forget drops w from the registry once its loop has exited, unless it was
// already removed or replaced.
func (p *Pool) forget(w *worker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workers[w.printer.ID] == w {
		delete(p.workers, w.printer.ID)
	}
}

// Running reports whether a worker is active for printerID.
func (p *Pool) Running(printerID uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.workers[printerID]
	return ok
}

// Stop cancels every worker and waits for all of them.
func (p *Pool) Stop() {
	p.mu.Lock()
	for id, w := range p.workers {
		w.cancel()
		delete(p.workers, id)
	}
	p.mu.Unlock()

	p.wg.Wait()
}
