package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderService определяет интерфейс оформления заказа.
type OrderService interface {
	PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error)
}

// OrderServiceImpl реализует OrderService: кулдаун, пересчёт цен, запись, уведомления.
type OrderServiceImpl struct {
	orders   OrderStorage
	guard    *OrderGuard
	pricing  *PricingResolver
	writer   *OrderWriter
	notifier OrderNotifier
	validate *validator.Validate
	metrics  *metrics.Registry
	logger   *log.Logger
	now      func() time.Time
}

// NewOrderService создаёт новый сервис заказов. metrics может быть nil.
func NewOrderService(
	orders OrderStorage,
	products ProductStorage,
	settings SettingsStorage,
	notifier OrderNotifier,
	reg *metrics.Registry,
	logger *log.Logger,
) *OrderServiceImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &OrderServiceImpl{
		orders:   orders,
		guard:    NewOrderGuard(settings, orders),
		pricing:  NewPricingResolver(products),
		writer:   NewOrderWriter(orders),
		notifier: notifier,
		validate: validator.New(),
		metrics:  reg,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceOrder оформляет заказ. Уведомления запускаются после коммита и не ожидаются.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, req *models.PlaceOrderRequest) (*models.PlaceOrderResponse, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	started := time.Now()

	draft, err := s.buildDraft(req)
	if err != nil {
		s.metrics.ObserveOrderRejected("validation")
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.items", len(req.Items)))

	// Чтения каталога и настроек идут до транзакции: внутри неё нельзя брать второе соединение пула.
	policy, err := s.guard.LoadPolicy(ctx)
	if err != nil {
		return nil, s.reject(span, draft, err)
	}
	items, err := s.pricing.Resolve(ctx, req.Items)
	if err != nil {
		return nil, s.reject(span, draft, err)
	}
	draft.Items = items

	var order *models.Order
	err = s.orders.InTx(ctx, func(tx pgx.Tx) error {
		if err := s.orders.LockPhoneTx(ctx, tx, draft.PhoneNormalized); err != nil {
			return err
		}
		if err := s.guard.CheckTx(ctx, tx, policy, draft.ShippingPhone, draft.PhoneNormalized, s.now()); err != nil {
			return err
		}

		written, err := s.writer.WriteTx(ctx, tx, draft)
		if err != nil {
			return err
		}
		order = written
		return nil
	})
	if err != nil {
		return nil, s.reject(span, draft, err)
	}

	s.metrics.ObserveOrderPlaced(started)
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))

	if s.notifier != nil {
		s.notifier.Dispatch(order)
	}

	return toPlaceOrderResponse(order), nil
}

// reject учитывает отказ в метриках. Внутренние ошибки пишутся в лог и в span.
func (s *OrderServiceImpl) reject(span trace.Span, draft *OrderDraft, err error) error {
	var (
		blocked *TimeBlockedError
		invalid *ValidationError
	)
	switch {
	case errors.As(err, &blocked):
		s.metrics.ObserveOrderRejected("time_blocked")
	case errors.As(err, &invalid):
		s.metrics.ObserveOrderRejected("resolution")
	default:
		s.metrics.ObserveOrderRejected("internal")
		span.RecordError(err)
		span.SetStatus(codes.Error, "place order failed")
		s.logger.Printf("place order for phone %s failed: %v", draft.PhoneNormalized, err)
	}
	return err
}

// buildDraft проверяет поля запроса, кроме позиций корзины, которые разбирает PricingResolver.
func (s *OrderServiceImpl) buildDraft(req *models.PlaceOrderRequest) (*OrderDraft, error) {
	if req == nil {
		return nil, validationErrorf("empty request")
	}

	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, validationErrorf("invalid %s (%s)", strings.TrimPrefix(fe.Namespace(), "PlaceOrderRequest."), fe.Tag())
		}
		return nil, validationErrorf("invalid request")
	}

	name := strings.TrimSpace(req.Shipping.Name)
	if len([]rune(name)) < 2 {
		return nil, validationErrorf("name is required")
	}
	address := strings.TrimSpace(req.Shipping.Address)
	if len([]rune(address)) < 5 {
		return nil, validationErrorf("address is required")
	}
	phone := utils.NormalizePhone(req.Shipping.Phone)
	if !utils.IsValidPhone(phone) {
		return nil, &ValidationError{Msg: ErrInvalidPhone.Error()}
	}

	var userID *uuid.UUID
	if req.UserID != nil && *req.UserID != "" {
		id, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, validationErrorf("invalid userId")
		}
		userID = &id
	}

	var notes *string
	if req.Notes != nil {
		if n := strings.TrimSpace(*req.Notes); n != "" {
			notes = &n
		}
	}

	return &OrderDraft{
		UserID:          userID,
		ShippingName:    name,
		ShippingPhone:   req.Shipping.Phone,
		PhoneNormalized: phone,
		ShippingAddress: address,
		ShippingZone:    req.ShippingZone,
		Notes:           notes,
		OrderSource:     req.OrderSource,
	}, nil
}

func toPlaceOrderResponse(order *models.Order) *models.PlaceOrderResponse {
	items := make([]models.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemResponse{
			ProductID:     uuidString(item.ProductID),
			VariationID:   uuidString(item.VariationID),
			Name:          item.ProductName,
			VariationName: item.VariationName,
			Image:         item.ProductImage,
			Price:         item.Price.InexactFloat64(),
			Quantity:      item.Quantity,
		})
	}

	return &models.PlaceOrderResponse{
		OrderID:      order.ID.String(),
		OrderNumber:  order.OrderNumber,
		Subtotal:     order.Subtotal.InexactFloat64(),
		ShippingCost: order.ShippingCost.InexactFloat64(),
		Total:        order.Total.InexactFloat64(),
		Items:        items,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
