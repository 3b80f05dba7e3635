package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// PrinterStore defines the database methods needed by printer handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PrinterStore interface {
	ListPrinters(ctx context.Context) ([]database.Printer, error)
	CreatePrinter(ctx context.Context, arg database.CreatePrinterParams) (database.Printer, error)
	CreateRolePrinter(ctx context.Context, arg database.CreateRolePrinterParams) (database.RolePrinter, error)
	DeactivatePrinter(ctx context.Context, id uuid.UUID) (database.Printer, error)
}

// NewPrinterStore creates a PrinterStore from a DBTX (pool or tx).
type NewPrinterStore func(db database.DBTX) PrinterStore

// PrinterWorkers starts and stops the print worker of a printer.
// Satisfied by *printing.Pool.
type PrinterWorkers interface {
	Add(printer database.Printer)
	Remove(printerID uuid.UUID)
}

// PrinterHandler handles printer registration endpoints.
type PrinterHandler struct {
	store    PrinterStore
	pool     service.TxBeginner
	newStore NewPrinterStore
	workers  PrinterWorkers
}

// NewPrinterHandler creates a new PrinterHandler.
func NewPrinterHandler(store PrinterStore, pool service.TxBeginner, newStore NewPrinterStore, workers PrinterWorkers) *PrinterHandler {
	return &PrinterHandler{store: store, pool: pool, newStore: newStore, workers: workers}
}

// RegisterRoutes registers printer endpoints on the given Chi router.
// Expected to be mounted behind Authenticate and RequireCapability: /printers
func (h *PrinterHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type rolePrinterRequest struct {
	RoleID      uuid.UUID `json:"role_id"`
	PrinterType string    `json:"printer_type"`
}

type createPrinterRequest struct {
	Name         string               `json:"name"`
	Address      string               `json:"address"`
	RolePrinters []rolePrinterRequest `json:"role_printers"`
}

type rolePrinterResponse struct {
	ID          uuid.UUID `json:"id"`
	RoleID      uuid.UUID `json:"role_id"`
	PrinterType string    `json:"printer_type"`
}

type printerResponse struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Address      string                `json:"address"`
	IsActive     bool                  `json:"is_active"`
	CreatedAt    time.Time             `json:"created_at"`
	RolePrinters []rolePrinterResponse `json:"role_printers,omitempty"`
}

func toPrinterResponse(p database.Printer) printerResponse {
	return printerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}

// --- Handlers ---

// List returns all printers, including deactivated ones.
func (h *PrinterHandler) List(w http.ResponseWriter, r *http.Request) {
	printers, err := h.store.ListPrinters(r.Context())
	if err != nil {
		zap.S().Errorw("list printers failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]printerResponse, len(printers))
	for i, p := range printers {
		resp[i] = toPrinterResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create registers a printer with its role bindings and starts its worker.
func (h *PrinterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPrinterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address is required"})
		return
	}
	for _, rp := range req.RolePrinters {
		switch database.PrinterType(rp.PrinterType) {
		case database.PrinterTypeRECEIPT, database.PrinterTypeTICKET:
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "printer_type must be RECEIPT or TICKET"})
			return
		}
	}

	tx, err := h.pool.BeginTx(r.Context(), pgx.TxOptions{})
	if err != nil {
		zap.S().Errorw("begin tx for create printer failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	printer, err := txStore.CreatePrinter(r.Context(), database.CreatePrinterParams{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "printer name already exists"})
			return
		}
		zap.S().Errorw("create printer failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toPrinterResponse(printer)
	for _, rp := range req.RolePrinters {
		created, err := txStore.CreateRolePrinter(r.Context(), database.CreateRolePrinterParams{
			RoleID:      rp.RoleID,
			PrinterID:   printer.ID,
			PrinterType: database.PrinterType(rp.PrinterType),
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				switch pgErr.Code {
				case "23503":
					writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role not found"})
					return
				case "23505":
					writeJSON(w, http.StatusConflict, map[string]string{"error": "duplicate role binding"})
					return
				}
			}
			zap.S().Errorw("create role printer failed", "printer_id", printer.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp.RolePrinters = append(resp.RolePrinters, rolePrinterResponse{
			ID:          created.ID,
			RoleID:      created.RoleID,
			PrinterType: string(created.PrinterType),
		})
	}

	if err := tx.Commit(r.Context()); err != nil {
		zap.S().Errorw("commit tx for create printer failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.workers.Add(printer)
	writeJSON(w, http.StatusCreated, resp)
}

// Delete deactivates a printer and stops its worker. Past prints keep
// pointing at it.
func (h *PrinterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	printerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid printer ID"})
		return
	}

	if _, err := h.store.DeactivatePrinter(r.Context(), printerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "printer not found"})
			return
		}
		zap.S().Errorw("deactivate printer failed", "printer_id", printerID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.workers.Remove(printerID)
	w.WriteHeader(http.StatusNoContent)
}
