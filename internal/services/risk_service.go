package services

import (
	"context"
	"errors"
	"log"
	"math"

	"github.com/agamariel/storefront/internal/cache"
	"github.com/agamariel/storefront/internal/courier"
	"github.com/agamariel/storefront/internal/metrics"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	recentOrdersLimit = 5

	lowRiskMinRate    = 80.0
	mediumRiskMinRate = 50.0
)

var (
	deliveredStatuses = map[string]bool{
		"delivered": true,
		"completed": true,
	}
	cancelledStatuses = map[string]bool{
		"cancelled": true,
		"returned":  true,
		"refunded":  true,
		"failed":    true,
	}
)

var riskPrecedence = map[models.RiskTier]int{
	models.RiskTierNew:    0,
	models.RiskTierLow:    1,
	models.RiskTierMedium: 2,
	models.RiskTierHigh:   3,
}

// RiskTierForRate уровень риска по доле успешных доставок в процентах.
func RiskTierForRate(rate float64) models.RiskTier {
	switch {
	case rate >= lowRiskMinRate:
		return models.RiskTierLow
	case rate >= mediumRiskMinRate:
		return models.RiskTierMedium
	default:
		return models.RiskTierHigh
	}
}

// MergeRisk возвращает худший из двух уровней.
func MergeRisk(a, b models.RiskTier) models.RiskTier {
	if riskPrecedence[b] > riskPrecedence[a] {
		return b
	}
	return a
}

// RiskService определяет интерфейс сигналов риска по телефону.
type RiskService interface {
	CustomerHistory(ctx context.Context, phone string) (*models.CustomerRiskProfile, error)
	CombinedHistory(ctx context.Context, phone string) (*models.CombinedHistoryResponse, error)
}

// OrderHistoryReader чтение истории заказов по телефону.
type OrderHistoryReader interface {
	FindByPhone(ctx context.Context, normalized string, variants []string, suffix string) ([]*models.Order, error)
}

// RiskServiceImpl реализует RiskService.
type RiskServiceImpl struct {
	orders  OrderHistoryReader
	courier courier.Client
	cache   cache.Cache[*models.CombinedHistoryResponse]
	metrics *metrics.Registry
	logger  *log.Logger
}

// NewRiskService создаёт сервис. courierClient и historyCache могут быть nil:
// без клиента курьерские данные всегда недоступны, без кэша каждый запрос считается заново.
func NewRiskService(
	orders OrderHistoryReader,
	courierClient courier.Client,
	historyCache cache.Cache[*models.CombinedHistoryResponse],
	reg *metrics.Registry,
	logger *log.Logger,
) *RiskServiceImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &RiskServiceImpl{
		orders:  orders,
		courier: courierClient,
		cache:   historyCache,
		metrics: reg,
		logger:  logger,
	}
}

func normalizeForLookup(raw string) (string, error) {
	phone := utils.NormalizePhone(raw)
	if !utils.IsValidPhone(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// CustomerHistory сводка по собственным заказам телефона.
func (s *RiskServiceImpl) CustomerHistory(ctx context.Context, rawPhone string) (*models.CustomerRiskProfile, error) {
	phone, err := normalizeForLookup(rawPhone)
	if err != nil {
		return nil, err
	}
	return s.customerHistory(ctx, rawPhone, phone)
}

func (s *RiskServiceImpl) customerHistory(ctx context.Context, rawPhone, phone string) (*models.CustomerRiskProfile, error) {
	orders, err := s.orders.FindByPhone(ctx, phone, utils.PhoneVariants(rawPhone, phone), utils.PhoneSuffix(phone))
	if err != nil {
		return nil, err
	}
	return buildRiskProfile(phone, orders), nil
}

func buildRiskProfile(phone string, orders []*models.Order) *models.CustomerRiskProfile {
	profile := &models.CustomerRiskProfile{
		Phone:        phone,
		TotalOrders:  len(orders),
		RiskLevel:    models.RiskTierNew,
		RecentOrders: make([]models.RecentOrder, 0, recentOrdersLimit),
	}

	spent := decimal.Zero
	for _, o := range orders {
		status := string(o.Status)
		switch {
		case deliveredStatuses[status]:
			profile.Delivered++
			spent = spent.Add(o.Total)
		case cancelledStatuses[status]:
			profile.Cancelled++
		default:
			profile.Pending++
		}

		if len(profile.RecentOrders) < recentOrdersLimit {
			profile.RecentOrders = append(profile.RecentOrders, models.RecentOrder{
				ID:          o.ID.String(),
				OrderNumber: o.OrderNumber,
				Status:      status,
				Total:       o.Total.InexactFloat64(),
				CreatedAt:   o.CreatedAt,
			})
		}
	}
	profile.TotalSpent = spent.InexactFloat64()

	if completed := profile.Delivered + profile.Cancelled; completed > 0 {
		rate := float64(profile.Delivered) / float64(completed) * 100
		rounded := math.Round(rate*100) / 100
		profile.SuccessRate = &rounded
		profile.RiskLevel = RiskTierForRate(rate)
	}
	return profile
}

// CombinedHistory объединяет собственную историю и репутацию у курьерских служб.
// Недоступность курьерского сервиса не считается ошибкой: ответ деградирует до внутренних данных.
func (s *RiskServiceImpl) CombinedHistory(ctx context.Context, rawPhone string) (*models.CombinedHistoryResponse, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "RiskService.CombinedHistory")
	defer span.End()

	phone, err := normalizeForLookup(rawPhone)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(phone); ok {
			s.metrics.ObserveCourierCacheHit()
			span.SetAttributes(attribute.Bool("risk.cached", true))
			resp := *cached
			resp.Cached = true
			return &resp, nil
		}
	}

	var (
		profile    *models.CustomerRiskProfile
		snapshot   *models.CourierReputationSnapshot
		courierErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.customerHistory(gctx, rawPhone, phone)
		return err
	})
	g.Go(func() error {
		snapshot, courierErr = s.lookupCourier(gctx, phone)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &models.CombinedHistoryResponse{
		Customer:     profile,
		CombinedRisk: profile.RiskLevel,
	}

	result := courierResult(courierErr)
	s.metrics.ObserveCourierLookup(result)
	span.SetAttributes(attribute.String("risk.courier_result", result))

	if courierErr != nil {
		s.logger.Printf("courier lookup for phone %s degraded (%s): %v", phone, result, courierErr)
		var rl courier.RateLimitError
		resp.RateLimited = errors.As(courierErr, &rl)
		resp.Unauthorized = errors.Is(courierErr, courier.ErrUnauthorized)
		resp.Blocked = errors.Is(courierErr, courier.ErrBlocked)
		return resp, nil
	}

	snapshot.Risk = courierRisk(snapshot.Summary)
	resp.Courier = snapshot
	resp.CourierAvailable = true
	resp.CombinedRisk = MergeRisk(profile.RiskLevel, snapshot.Risk)

	if s.cache != nil {
		s.cache.Set(phone, resp)
	}
	return resp, nil
}

var errCourierDisabled = errors.New("courier lookup is not configured")

func (s *RiskServiceImpl) lookupCourier(ctx context.Context, phone string) (*models.CourierReputationSnapshot, error) {
	if s.courier == nil {
		return nil, errCourierDisabled
	}
	return s.courier.Lookup(ctx, phone)
}

func courierRisk(summary models.CourierStats) models.RiskTier {
	if summary.TotalParcels == 0 {
		return models.RiskTierNew
	}
	return RiskTierForRate(summary.SuccessRatio)
}

func courierResult(err error) string {
	var rl courier.RateLimitError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errCourierDisabled):
		return "disabled"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.Is(err, courier.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, courier.ErrBlocked):
		return "blocked"
	case errors.Is(err, courier.ErrTimeout):
		return "timeout"
	default:
		return "unavailable"
	}
}
