package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/festpos/api/internal/auth"
	"github.com/festpos/api/internal/database"
	"github.com/festpos/api/internal/middleware"
	"github.com/festpos/api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
}

// CategoryUpdater applies tree-checked category updates.
// Satisfied by *service.CategoryService.
type CategoryUpdater interface {
	UpdateCategory(ctx context.Context, req service.UpdateCategoryRequest) (*database.Category, error)
}

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	store CategoryStore
	svc   CategoryUpdater
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store CategoryStore, svc CategoryUpdater) *CategoryHandler {
	return &CategoryHandler{store: store, svc: svc}
}

// RegisterRoutes registers category endpoints on the given Chi router.
// Expected to be mounted behind Authenticate: /categories
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(middleware.RequireCapability(auth.CapManageCatalog)).Put("/{id}", h.Update)
}

// --- Request / Response types ---

type updateCategoryRequest struct {
	Name     *string    `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type categoryResponse struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		ParentID:  uuidPtr(c.ParentID),
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

// --- Handlers ---

// List returns every category; clients rebuild the tree from parent_id.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		zap.S().Errorw("list categories failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Update renames and moves a category. A missing parent_id makes it a root.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	categoryID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	var req updateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}
		req.Name = &name
	}

	category, err := h.svc.UpdateCategory(r.Context(), service.UpdateCategoryRequest{
		ID:       categoryID,
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeServiceError(w, "update category", err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(*category))
}
