package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrUnavailable  = errors.New("courier service unavailable")
	ErrUnauthorized = errors.New("courier service rejected credentials")
	ErrBlocked      = errors.New("courier service blocked the request")
	ErrTimeout      = errors.New("courier service timed out")
)

// RateLimitError содержит паузу, которую рекомендует сервис.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("courier rate limited, retry after %s", e.RetryAfter)
}

// Client интерфейс получения репутации телефона у курьерских служб.
type Client interface {
	Lookup(ctx context.Context, phone string) (*models.CourierReputationSnapshot, error)
}

// HTTPClient клиент курьерского сервиса по HTTP.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewHTTPClient создаёт HTTP-клиент. timeout ограничивает весь запрос вместе с чтением тела.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type lookupRequest struct {
	Phone string `json:"phone"`
}

// Lookup запрашивает статистику посылок по телефону.
func (c *HTTPClient) Lookup(ctx context.Context, phone string) (*models.CourierReputationSnapshot, error) {
	ctx, span := otel.Tracer("courier").Start(ctx, "courier.Lookup")
	defer span.End()

	snapshot, err := c.lookup(ctx, phone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "courier lookup failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("courier.total_parcels", snapshot.Summary.TotalParcels))
	return snapshot, nil
}

func (c *HTTPClient) lookup(parent context.Context, phone string) (*models.CourierReputationSnapshot, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid courier base url: %w", err)
	}
	u.Path = u.Path + "/courier-check"

	body, err := json.Marshal(lookupRequest{Phone: phone})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(parent, ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrBlocked
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, c.transportError(parent, ctx, err)
	}

	return Decode(raw)
}

// transportError отличает истечение собственного таймаута от отмены вызывающим.
func (c *HTTPClient) transportError(parent, ctx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func parseRetryAfter(val string) time.Duration {
	if val == "" {
		return 5 * time.Second
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
