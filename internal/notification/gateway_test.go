package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/netcycle/netcycle/internal/config"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/httpclient"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultNotificationConfig()
	cfg.GatewayURL = server.URL
	cfg.APIKey = "test-key"

	clientCfg := httpclient.DefaultClientConfig()
	clientCfg.RetryMax = 1
	clientCfg.RetryWaitMin = time.Millisecond
	clientCfg.RetryWaitMax = 5 * time.Millisecond
	return NewHTTPGateway(cfg, httpclient.NewDefaultClient(clientCfg, logger.NewNopLogger()), logger.NewNopLogger())
}

func TestHTTPGateway_Send(t *testing.T) {
	var (
		mu       sync.Mutex
		received sendRequest
	)
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"message_id":1}]`))
	})

	err := gw.Send(context.Background(), "0917 123 4567", "hello")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "639171234567", received.Number)
	assert.Equal(t, "hello", received.Message)
	assert.Equal(t, "test-key", received.APIKey)
	assert.Equal(t, "NETCYCLE", received.SenderName)
}

func TestHTTPGateway_RejectsInvalidNumberWithoutCalling(t *testing.T) {
	called := false
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := gw.Send(context.Background(), "12345", "hello")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.False(t, called)
}

func TestHTTPGateway_ProviderError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	})

	err := gw.Send(context.Background(), "09171234567", "hello")
	require.Error(t, err)
	assert.True(t, ierr.IsNotification(err))

	httpErr, ok := httpclient.IsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestNewGateway_FallsBackToLogging(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Notification.GatewayURL = ""

	gw := NewGateway(cfg, logger.NewNopLogger())
	_, ok := gw.(*LogGateway)
	require.True(t, ok)
	assert.NoError(t, gw.Send(context.Background(), "09171234567", "hi"))
}
