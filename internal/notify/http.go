package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// StatusError неуспешный ответ внешнего сервиса.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// httpPoster отправляет JSON с ограниченным числом повторов.
// Повторяются сетевые ошибки, 429 и 5xx.
type httpPoster struct {
	client     *http.Client
	maxRetries uint64
	backoff    time.Duration
}

func newHTTPPoster(timeout time.Duration) *httpPoster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpPoster{
		client:     &http.Client{Timeout: timeout},
		maxRetries: 2,
		backoff:    200 * time.Millisecond,
	}
}

func (p *httpPoster) postJSON(ctx context.Context, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	b := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(p.backoff))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(statusErr)
		}
		return statusErr
	})
}
