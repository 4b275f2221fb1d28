package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"tbot/internal/core/domain"
	"tbot/internal/core/jsonpath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestClient_FetchJSON(t *testing.T) {
	type TestCase struct {
		description string
		status      int
		body        string
		wantKind    error
		wantStatus  int
	}

	testCases := []TestCase{
		{description: "ok", status: http.StatusOK, body: `{"status":"success","message":"https://x/1.jpg"}`},
		{description: "server error", status: http.StatusInternalServerError, body: "boom", wantKind: domain.ErrTransport, wantStatus: 500},
		{description: "not found", status: http.StatusNotFound, body: `{"message":"nope"}`, wantKind: domain.ErrTransport, wantStatus: 404},
		{description: "html instead of json", status: http.StatusOK, body: "<html>", wantKind: domain.ErrDecode},
		{description: "empty body", status: http.StatusOK, body: "", wantKind: domain.ErrDecode},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer srv.Close()

			doc, err := NewClient().FetchJSON(t.Context(), domain.Get(srv.URL))

			if testCase.wantKind == nil {
				require.NoError(t, err)
				status, err := doc.String(jsonpath.ParsePath("status"))
				require.NoError(t, err)
				assert.Equal(t, "success", status)
				return
			}

			require.ErrorIs(t, err, testCase.wantKind)

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, srv.URL, apiErr.URL)
			assert.Equal(t, testCase.wantStatus, apiErr.Status)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient().FetchText(t.Context(), domain.Get(url))
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_RequestShape(t *testing.T) {
	var got *http.Request
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`plain text`))
	}))
	defer srv.Close()

	req := domain.Post(srv.URL+"/v1/chat", map[string]any{"prompt": "hi"}).
		WithBearer("sk-test").
		WithHeader("X-Riot-Token", "RGAPI")

	text, err := NewClient(WithUserAgent("unit-test")).FetchText(t.Context(), req)
	require.NoError(t, err)

	assert.Equal(t, "plain text", text)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/chat", got.URL.Path)
	assert.Equal(t, "Bearer sk-test", got.Header.Get("Authorization"))
	assert.Equal(t, "RGAPI", got.Header.Get("X-Riot-Token"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "unit-test", got.Header.Get("User-Agent"))
	assert.Equal(t, map[string]any{"prompt": "hi"}, gotBody)
}

func TestClient_GetHasNoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.Empty(t, raw)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient().FetchJSON(t.Context(), domain.Get(srv.URL))
	require.NoError(t, err)
}

func TestClient_LongErrorBodyIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorDetail)))
	}))
	defer srv.Close()

	_, err := NewClient().FetchJSON(t.Context(), domain.Get(srv.URL))

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, apiErr.Detail, maxErrorDetail+3)
}

func TestClient_RateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(WithRateLimit(rate.Every(50*time.Millisecond), 1))

	start := time.Now()
	for range 3 {
		_, err := client.FetchJSON(t.Context(), domain.Get(srv.URL))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(WithRateLimit(rate.Every(time.Hour), 1))

	_, err := client.FetchText(t.Context(), domain.Get(srv.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err = client.FetchText(ctx, domain.Get(srv.URL))
	require.ErrorIs(t, err, domain.ErrTransport)
}
