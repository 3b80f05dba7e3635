package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/festpos/api/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorResponse is the body of every non-2xx answer. The ids point at the
// product, menu or field that failed validation.
type errorResponse struct {
	Error     string     `json:"error"`
	Kind      string     `json:"kind,omitempty"`
	Path      string     `json:"path,omitempty"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
	MenuID    *uuid.UUID `json:"menu_id,omitempty"`
	FieldID   *uuid.UUID `json:"field_id,omitempty"`
}

func statusForKind(k service.Kind) int {
	switch k {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusForbidden
	case service.KindConflict:
		return http.StatusConflict
	case service.KindBadRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// toErrorResponse classifies err. Unclassified errors get a generic message.
func toErrorResponse(err error) (int, errorResponse) {
	var se *service.Error
	if !errors.As(err, &se) || se.Kind == service.KindInternal {
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: service.KindInternal.String()}
	}
	resp := errorResponse{Error: se.Err.Error(), Kind: se.Kind.String(), Path: se.Path}
	if se.ProductID != uuid.Nil {
		resp.ProductID = &se.ProductID
	}
	if se.MenuID != uuid.Nil {
		resp.MenuID = &se.MenuID
	}
	if se.FieldID != uuid.Nil {
		resp.FieldID = &se.FieldID
	}
	return statusForKind(se.Kind), resp
}

// writeServiceError renders err and logs it when it is not a classified
// client error.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, resp := toErrorResponse(err)
	if status == http.StatusInternalServerError {
		zap.S().Errorw(op+" failed", "error", err)
	}
	writeJSON(w, status, resp)
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid || n.Int == nil {
		return "0.00"
	}
	return decimal.NewFromBigInt(n.Int, n.Exp).StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}

func int4Ptr(n pgtype.Int4) *int32 {
	if !n.Valid {
		return nil
	}
	return &n.Int32
}
