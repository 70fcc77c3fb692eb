package courier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agamariel/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedShape = `{
  "status": "success",
  "data": {
    "courierData": {
      "pathao": {"name": "Pathao", "logo": "x.png", "total_parcel": 6, "success_parcel": 5, "cancelled_parcel": 1, "success_ratio": 83.33},
      "steadfast": {"name": "Steadfast", "total_parcel": 4, "success_parcel": 3, "cancelled_parcel": 1, "success_ratio": 75},
      "summary": {"total_parcel": 10, "success_parcel": 8, "cancelled_parcel": 2, "success_ratio": 80}
    }
  }
}`

const dataShape = `{
  "data": {
    "summary": {"total_parcel": 4, "success_parcel": 1, "cancelled_parcel": 3},
    "redx": {"total_parcel": 4, "success_parcel": 1, "cancelled_parcel": 3, "success_ratio": 25}
  }
}`

const topLevelShape = `{
  "status": "success",
  "summary": {"total_parcel": 0, "success_parcel": 0, "cancelled_parcel": 0, "success_ratio": 0},
  "pathao": {"total_parcel": 0, "success_parcel": 0, "cancelled_parcel": 0},
  "reports": []
}`

func TestDecode_Shapes(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantTotal    int
		wantRatio    float64
		wantCouriers []string
	}{
		{name: "data.courierData", body: nestedShape, wantTotal: 10, wantRatio: 80, wantCouriers: []string{"pathao", "steadfast"}},
		{name: "data object, ratio computed", body: dataShape, wantTotal: 4, wantRatio: 25, wantCouriers: []string{"redx"}},
		{name: "top-level", body: topLevelShape, wantTotal: 0, wantRatio: 0, wantCouriers: []string{"pathao"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := Decode([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, snap.Summary.TotalParcels)
			assert.InDelta(t, tt.wantRatio, snap.Summary.SuccessRatio, 0.001)
			assert.Len(t, snap.Couriers, len(tt.wantCouriers))
			for _, name := range tt.wantCouriers {
				assert.Contains(t, snap.Couriers, name)
			}
		})
	}
}

func TestDecode_CourierNameFallsBackToKey(t *testing.T) {
	snap, err := Decode([]byte(dataShape))
	require.NoError(t, err)
	assert.Equal(t, "redx", snap.Couriers["redx"].Name)
	assert.Equal(t, "Pathao", mustDecode(t, nestedShape).Couriers["pathao"].Name)
}

func mustDecode(t *testing.T, body string) *models.CourierReputationSnapshot {
	t.Helper()
	snap, err := Decode([]byte(body))
	require.NoError(t, err)
	return snap
}

func TestDecode_Unrecognized(t *testing.T) {
	bodies := []string{
		`{"status":"error","message":"invalid phone"}`,
		`{"data":{"courierData":{"pathao":{"total_parcel":1}}}}`,
		`{"summary":"n/a"}`,
		`[]`,
		`not json`,
	}
	for _, body := range bodies {
		_, err := Decode([]byte(body))
		assert.ErrorIs(t, err, ErrUnavailable, body)
	}
}

func TestHTTPClient_Lookup(t *testing.T) {
	var gotPhone, gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		var req lookupRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotPhone = req.Phone
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nestedShape))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/api/", "secret", time.Second)
	snap, err := c.Lookup(context.Background(), "01712345678")

	require.NoError(t, err)
	assert.Equal(t, "/api/courier-check", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "01712345678", gotPhone)
	assert.Equal(t, 8, snap.Summary.SuccessParcels)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "30"},
			check: func(t *testing.T, err error) {
				var rl RateLimitError
				require.True(t, errors.As(err, &rl))
				assert.Equal(t, 30*time.Second, rl.RetryAfter)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthorized) },
		},
		{
			name:   "blocked",
			status: http.StatusForbidden,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrBlocked) },
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnavailable) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, "", time.Second).Lookup(context.Background(), "01712345678")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	started := time.Now()
	_, err := NewHTTPClient(srv.URL, "", 50*time.Millisecond).Lookup(context.Background(), "01712345678")

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter(""))
	assert.Equal(t, 12*time.Second, parseRetryAfter("12"))
	assert.Equal(t, 5*time.Second, parseRetryAfter("soon"))
}
