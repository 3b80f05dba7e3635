package printing

import (
	"context"
	"encoding/json"
	"time"

	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/enum"
	"github.com/festpos/api/internal/ws"
	"github.com/google/uuid"
)

// PrintEvent is the websocket payload of print.succeeded and print.failed.
type PrintEvent struct {
	OrderID       uuid.UUID            `json:"order_id"`
	RolePrinterID uuid.UUID            `json:"role_printer_id"`
	PrinterType   database.PrinterType `json:"printer_type"`
	Error         string               `json:"error,omitempty"`
}

type worker struct {
	pool    *Pool
	printer database.Printer
	cancel  context.CancelFunc
	done    chan struct{}
}

func (w *worker) run(ctx context.Context) {
	defer close(w.done)

	for ctx.Err() == nil {
		if w.step(ctx) {
			continue
		}
		if !sleep(ctx, w.pool.cfg.Backoff) {
			return
		}
	}
}

// step attempts one job. It returns true only when a job was printed, so the
// caller drains pending work without pausing.
func (w *worker) step(ctx context.Context) bool {
	log := w.pool.logger.With("printer_id", w.printer.ID)

	job, err := w.pool.selector.NextJob(ctx, w.printer.ID)
	if err != nil {
		if ctx.Err() == nil {
			log.Errorw("select print job failed", "error", err)
		}
		return false
	}
	if job == nil {
		return false
	}

	log = log.With("order_id", job.Order.ID, "role_printer_id", job.RolePrinterID, "printer_type", job.PrinterType)

	data, err := w.pool.renderer.Render(ctx, job.Order, job.PrinterType)
	if err != nil {
		log.Errorw("print failed", "error", err)
		w.publish(enum.EventPrintFailed, job, err)
		return false
	}

	if err := w.pool.transmitter.Send(w.printer.Address, data); err != nil {
		log.Errorw("print failed", "error", err)
		w.publish(enum.EventPrintFailed, job, err)
		return false
	}

	// The paper is out; record it even if the worker is being stopped.
	if _, err := w.pool.store.RecordOrderPrint(context.WithoutCancel(ctx), database.RecordOrderPrintParams{
		OrderID:       job.Order.ID,
		RolePrinterID: job.RolePrinterID,
	}); err != nil {
		log.Errorw("record print failed", "error", err)
		return false
	}

	log.Infow("print succeeded")
	w.publish(enum.EventPrintSucceeded, job, nil)
	return true
}

func (w *worker) publish(eventType string, job *Job, cause error) {
	if w.pool.hub == nil {
		return
	}
	ev := PrintEvent{OrderID: job.Order.ID, RolePrinterID: job.RolePrinterID, PrinterType: job.PrinterType}
	if cause != nil {
		ev.Error = cause.Error()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	w.pool.hub.BroadcastToPrinter(w.printer.ID, ws.Event{Type: eventType, Payload: payload})
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
