//go:build integration
// +build integration

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/migrations"
	"github.com/agamariel/storefront/internal/models"
	"github.com/agamariel/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDBPool(t *testing.T, maxConns int32) *pgxpool.Pool {
	dbURI := os.Getenv("DATABASE_URI")
	if dbURI == "" {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}

	sqlDB, err := sql.Open("pgx", dbURI)
	if err != nil {
		t.Fatalf("Unable to open database: %v", err)
	}
	defer sqlDB.Close()
	if err := migrations.Run(context.Background(), sqlDB); err != nil {
		t.Fatalf("Unable to run migrations: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(dbURI)
	if err != nil {
		t.Fatalf("Unable to parse database URI: %v", err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Unable to connect to database: %v", err)
	}
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, price, is_active) VALUES ($1, $2, 450, TRUE)`,
		id, "Jamdani "+id.String()[:8])
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}

func orderRequest(productID uuid.UUID, phone string) *models.PlaceOrderRequest {
	return &models.PlaceOrderRequest{
		Items: []models.CartItemRequest{{ProductID: productID.String(), Quantity: 1}},
		Shipping: models.ShippingRequest{
			Name:    "Karim Ahmed",
			Phone:   phone,
			Address: "Flat 3B, Road 11, Banani",
		},
		ShippingZone: models.ShippingZoneInsideDhaka,
	}
}

func countOrders(t *testing.T, pool *pgxpool.Pool, phone string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM orders WHERE phone_normalized = $1`, phone).Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}

func randomPhone() string {
	return fmt.Sprintf("018%08d", rand.Intn(100000000))
}

func TestOrderService_PlaceOrder_SingleConnectionPool(t *testing.T) {
	pool := getTestDBPool(t, 1)
	defer pool.Close()

	productID := seedProduct(t, pool)
	svc := NewOrderService(
		storage.NewPostgresOrderStorage(pool),
		storage.NewPostgresProductStorage(pool),
		storage.NewPostgresSettingsStorage(pool),
		nil, nil, log.New(io.Discard, "", 0),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	const workers = 4
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(ctx, orderRequest(productID, randomPhone()))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("place order with a single pooled connection failed: %v", err)
		}
	}
}

func TestOrderService_PlaceOrder_ConcurrentSamePhone(t *testing.T) {
	pool := getTestDBPool(t, 4)
	defer pool.Close()

	productID := seedProduct(t, pool)
	settings := &storage.MockSettingsStorage{Values: map[string]string{
		models.SettingTimeBlockingEnabled: "true",
		models.SettingCooldownHours:       "12",
	}}
	svc := NewOrderService(
		storage.NewPostgresOrderStorage(pool),
		storage.NewPostgresProductStorage(pool),
		settings,
		nil, nil, log.New(io.Discard, "", 0),
	)

	phone := randomPhone()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	start := make(chan struct{})
	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = svc.PlaceOrder(ctx, orderRequest(productID, phone))
		}(i)
	}
	close(start)
	wg.Wait()

	placed, blocked := 0, 0
	for _, err := range results {
		var timeBlocked *TimeBlockedError
		switch {
		case err == nil:
			placed++
		case errors.As(err, &timeBlocked):
			blocked++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if placed != 1 || blocked != 1 {
		t.Fatalf("expected one placed and one blocked order, got %d placed and %d blocked", placed, blocked)
	}
	if n := countOrders(t, pool, phone); n != 1 {
		t.Fatalf("expected exactly one stored order for %s, got %d", phone, n)
	}
}
