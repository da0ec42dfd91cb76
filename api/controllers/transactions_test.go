package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/rahadianwp/gudangku-backend/api/middleware"
	"github.com/rahadianwp/gudangku-backend/internal/movements"
	"github.com/rahadianwp/gudangku-backend/internal/stock"
	"github.com/rahadianwp/gudangku-backend/pkg/db/models"
	"github.com/rahadianwp/gudangku-backend/pkg/enums"
)

type stubMovementService struct {
	trx  *models.Transaction
	err  error
	last movements.PostInput
}

func (s *stubMovementService) Post(ctx context.Context, input movements.PostInput) (*models.Transaction, error) {
	s.last = input
	if s.err != nil {
		return nil, s.err
	}
	return s.trx, nil
}

func (s *stubMovementService) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.trx, nil
}

func (s *stubMovementService) List(ctx context.Context, warehouseID uuid.UUID, limit int) ([]models.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.trx == nil {
		return nil, nil
	}
	return []models.Transaction{*s.trx}, nil
}

func postBody(t *testing.T, payload any) *bytes.Buffer {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(raw)
}

func TestPostTransactionSuccess(t *testing.T) {
	warehouseID := uuid.New()
	productID := uuid.New()
	userID := uuid.New()
	svc := &stubMovementService{trx: &models.Transaction{
		ID:        uuid.New(),
		TrxNumber: "TRX-20250812-001",
		Type:      enums.TransactionTypeInbound,
		Status:    models.TransactionStatusCompleted,
	}}
	handler := PostTransaction(svc, nil)

	body := postBody(t, map[string]any{
		"type":         "inbound",
		"warehouse_id": warehouseID,
		"items":        []map[string]any{{"product_id": productID, "quantity": 10}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", body)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.last.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, svc.last.UserID)
	}
	if svc.last.Type != enums.TransactionTypeInbound {
		t.Fatalf("expected inbound got %s", svc.last.Type)
	}
	if len(svc.last.Items) != 1 || svc.last.Items[0].Quantity != 10 {
		t.Fatalf("unexpected items %+v", svc.last.Items)
	}

	var envelope struct {
		Data models.Transaction `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.TrxNumber != "TRX-20250812-001" {
		t.Fatalf("expected document number in response, got %q", envelope.Data.TrxNumber)
	}
}

func TestPostTransactionRejectsUnknownType(t *testing.T) {
	handler := PostTransaction(&stubMovementService{}, nil)

	body := postBody(t, map[string]any{
		"type":         "sideways",
		"warehouse_id": uuid.New(),
		"items":        []map[string]any{{"product_id": uuid.New(), "quantity": 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPostTransactionRejectsEmptyItems(t *testing.T) {
	handler := PostTransaction(&stubMovementService{}, nil)

	body := postBody(t, map[string]any{
		"type":         "inbound",
		"warehouse_id": uuid.New(),
		"items":        []map[string]any{},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPostTransactionInsufficientStock(t *testing.T) {
	svc := &stubMovementService{err: stock.NewInsufficientStock(stock.InsufficientStockDetails{
		ProductID: uuid.New(),
		Requested: 15,
		Available: 10,
	})}
	handler := PostTransaction(svc, nil)

	body := postBody(t, map[string]any{
		"type":         "outbound",
		"warehouse_id": uuid.New(),
		"items":        []map[string]any{{"product_id": uuid.New(), "quantity": 15}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Requested int `json:"requested"`
				Available int `json:"available"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("expected INSUFFICIENT_STOCK got %q", envelope.Error.Code)
	}
	if envelope.Error.Details.Requested != 15 || envelope.Error.Details.Available != 10 {
		t.Fatalf("unexpected details %+v", envelope.Error.Details)
	}
}

func TestGetTransactionInvalidID(t *testing.T) {
	handler := GetTransaction(&stubMovementService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestListTransactionsCapsLimit(t *testing.T) {
	svc := &stubMovementService{}
	handler := ListTransactions(svc, nil)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/transactions?limit=%d", 10_000), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
