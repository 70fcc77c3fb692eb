package notify

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	channel string
	calls   atomic.Int32
	sendFn  func(ctx context.Context, order *models.Order) error
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(ctx context.Context, order *models.Order) error {
	f.calls.Add(1)
	if f.sendFn != nil {
		return f.sendFn(ctx, order)
	}
	return nil
}

func testOrder() *models.Order {
	pid := uuid.New()
	return &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "ORD-001042",
		ShippingName:    "Rahim Uddin",
		ShippingPhone:   "+880 1712-345678",
		PhoneNormalized: "01712345678",
		ShippingAddress: "House 12, Road 5, Dhanmondi",
		ShippingZone:    models.ShippingZoneInsideDhaka,
		OrderSource:     models.OrderSourceWeb,
		Subtotal:        decimal.NewFromInt(1000),
		ShippingCost:    decimal.NewFromInt(80),
		Discount:        decimal.Zero,
		Total:           decimal.NewFromInt(1080),
		CreatedAt:       time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC),
		Items: []*models.OrderItem{
			{ProductID: &pid, ProductName: "Cotton Panjabi", Price: decimal.NewFromInt(500), Quantity: 2},
		},
	}
}

func TestNotifier_FailureIsolation(t *testing.T) {
	var logs bytes.Buffer
	logger := log.New(&logs, "", 0)

	release := make(chan struct{})
	sms := &fakeSender{channel: "sms", sendFn: func(ctx context.Context, order *models.Order) error {
		<-release
		return errors.New("gateway down")
	}}
	panicking := &fakeSender{channel: "event", sendFn: func(ctx context.Context, order *models.Order) error {
		panic("broker exploded")
	}}
	email := &fakeSender{channel: "email"}
	conversion := &fakeSender{channel: "conversion"}

	n := NewNotifier(time.Second, nil, logger, sms, panicking, email, conversion)

	returned := make(chan struct{})
	go func() {
		n.Dispatch(testOrder())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a slow sender")
	}

	close(release)
	n.Wait()

	assert.Equal(t, int32(1), sms.calls.Load())
	assert.Equal(t, int32(1), panicking.calls.Load())
	assert.Equal(t, int32(1), email.calls.Load())
	assert.Equal(t, int32(1), conversion.calls.Load())

	out := logs.String()
	assert.Contains(t, out, "sms notification for order ORD-001042 failed: gateway down")
	assert.Contains(t, out, "event notification for order ORD-001042 failed: panic: broker exploded")
	assert.Contains(t, out, "email notification for order ORD-001042 sent")
	assert.Contains(t, out, "conversion notification for order ORD-001042 sent")
}

func TestNotifier_TaskTimeout(t *testing.T) {
	slow := &fakeSender{channel: "email", sendFn: func(ctx context.Context, order *models.Order) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	n := NewNotifier(20*time.Millisecond, nil, log.New(&bytes.Buffer{}, "", 0), slow)

	n.Dispatch(testOrder())

	done := make(chan struct{})
	go func() {
		n.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not bounded by its timeout")
	}
	require.Equal(t, int32(1), slow.calls.Load())
}

func TestNotifier_NoSenders(t *testing.T) {
	n := NewNotifier(0, nil, nil)
	n.Dispatch(testOrder())
	n.Wait()
}
