package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/services"
	"github.com/labstack/echo/v4"
)

type mockOrderService struct {
	PlaceFunc func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	if m.PlaceFunc != nil {
		return m.PlaceFunc(ctx, req)
	}
	return &models.PlaceOrderResponse{}, nil
}

const placeOrderBody = `{
	"items": [{"productId": "9b2f7c1e-3d4a-4b5c-8d6e-7f8091a2b3c4", "quantity": 2, "price": "1"}],
	"shipping": {"name": "Rahim Uddin", "phone": "01712345678", "address": "House 12, Road 5"},
	"shippingZone": "inside_dhaka"
}`

func TestOrderHandler_PlaceOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockService    *mockOrderService
		expectedStatus int
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "success",
			body: placeOrderBody,
			mockService: &mockOrderService{
				PlaceFunc: func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
					if len(req.Items) != 1 || req.Items[0].Quantity != 2 || req.Shipping.Phone != "01712345678" {
						return nil, errors.New("request not decoded")
					}
					return &models.PlaceOrderResponse{OrderID: "id", OrderNumber: "ORD-001000", Subtotal: 1000, ShippingCost: 80, Total: 1080}, nil
				},
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp models.PlaceOrderResponse
				if err := json.Unmarshal([]byte(body), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.Total != 1080 || resp.OrderNumber != "ORD-001000" {
					t.Fatalf("unexpected response %+v", resp)
				}
			},
		},
		{
			name: "time blocked",
			body: placeOrderBody,
			mockService: &mockOrderService{
				PlaceFunc: func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
					return nil, &services.TimeBlockedError{LastOrderNumber: "ORD-001007", WaitHours: 3}
				},
			},
			expectedStatus: http.StatusTooManyRequests,
			checkBody: func(t *testing.T, body string) {
				var resp models.TimeBlockedResponse
				if err := json.Unmarshal([]byte(body), &resp); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if resp.ErrorCode != "TIME_BLOCKED" || resp.LastOrderNumber != "ORD-001007" || resp.WaitHours != 3 || resp.Error == "" {
					t.Fatalf("unexpected response %+v", resp)
				}
			},
		},
		{
			name: "validation error",
			body: placeOrderBody,
			mockService: &mockOrderService{
				PlaceFunc: func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
					return nil, &services.ValidationError{Msg: "item 1: product not found or unavailable"}
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"items": [`,
			mockService:    &mockOrderService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "internal error",
			body: placeOrderBody,
			mockService: &mockOrderService{
				PlaceFunc: func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
					return nil, errors.New("db error")
				},
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := NewOrderHandler(tt.mockService)
			err := handler.PlaceOrder(c)

			if tt.expectedStatus < 400 || tt.expectedStatus == http.StatusTooManyRequests {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if rec.Code != tt.expectedStatus {
					t.Fatalf("status = %d, want %d", rec.Code, tt.expectedStatus)
				}
				if tt.checkBody != nil {
					tt.checkBody(t, rec.Body.String())
				}
				return
			}

			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			he, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected *echo.HTTPError, got %T", err)
			}
			if he.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", he.Code, tt.expectedStatus)
			}
		})
	}
}

func TestOrderHandler_InternalErrorIsGeneric(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	h := NewOrderHandler(&mockOrderService{
		PlaceFunc: func(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
			return nil, errors.New(`duplicate key value violates unique constraint "orders_pkey"`)
		},
	})
	e.POST("/api/orders", h.PlaceOrder)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(placeOrderBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "Failed to place order" {
		t.Fatalf("unexpected error body %q", resp.Error)
	}
}
