package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/netcycle/netcycle/internal/config"
	"github.com/netcycle/netcycle/internal/logger"
	"github.com/netcycle/netcycle/internal/metrics"
	"github.com/netcycle/netcycle/internal/pubsub/memory"
	"github.com/netcycle/netcycle/internal/pubsub/router"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlerSuite struct {
	suite.Suite
	cfg     *config.Configuration
	gateway *fakeGateway
	metrics *metrics.Collector
	handler *Handler
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.cfg = config.GetDefaultConfig()
	s.cfg.Notification.Enabled = true
	s.cfg.Notification.MaxRetries = 1
	s.cfg.Notification.InitialInterval = time.Millisecond
	s.cfg.Notification.MaxInterval = time.Millisecond
	s.cfg.Notification.MaxElapsedTime = 100 * time.Millisecond

	s.gateway = &fakeGateway{failOn: map[string]bool{}}
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.handler = NewHandler(s.gateway, logger.NewNopLogger(), nil, s.metrics)
}

func (s *HandlerSuite) TestProcessMessage() {
	n := Notification{
		ID:             "ntf_1",
		Kind:           KindInvoiceGenerated,
		SubscriptionID: "sub_1",
		PhoneNumber:    "09171234567",
		Message:        "bill ready",
	}
	payload := mustJSON(s.T(), n)

	err := s.handler.processMessage(message.NewMessage("ntf_1", payload))
	s.Require().NoError(err)
	s.Equal([]string{"09171234567"}, s.gateway.sent)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues("invoice_generated", "sent")))
}

func (s *HandlerSuite) TestProcessMessage_MalformedPayload() {
	err := s.handler.processMessage(message.NewMessage("bad", []byte("{not json")))
	s.Require().Error(err)
	s.Empty(s.gateway.sent)
}

func (s *HandlerSuite) TestProcessMessage_GatewayFailure() {
	s.gateway.failOn["09170000000"] = true
	payload := mustJSON(s.T(), Notification{Kind: KindDueReminder, PhoneNumber: "09170000000"})

	err := s.handler.processMessage(message.NewMessage("x", payload))
	s.Require().Error(err)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues("due_reminder", "failed")))
}

func (s *HandlerSuite) TestEndToEnd() {
	log := logger.NewNopLogger()
	ps := memory.NewPubSub(log)
	defer ps.Close()

	r, err := router.NewRouter(s.cfg, log, nil)
	s.Require().NoError(err)
	s.handler.RegisterHandler(r, s.cfg, ps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()
	<-r.Running()

	publisher := NewPublisher(s.cfg, ps, log)
	s.IsType(&QueuePublisher{}, publisher)

	n := &Notification{
		Kind:           KindPaymentReceived,
		SubscriptionID: "sub_9",
		PhoneNumber:    "+639171112222",
		Message:        "thanks",
	}
	s.Require().NoError(publisher.Enqueue(types.SetRequestID(ctx, "req-1"), n))
	s.NotEmpty(n.ID)
	s.False(n.CreatedAt.IsZero())

	s.Eventually(func() bool {
		s.gateway.mu.Lock()
		defer s.gateway.mu.Unlock()
		return len(s.gateway.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Require().NoError(r.Close())
}

func TestNewPublisher_Disabled(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Notification.Enabled = false

	p := NewPublisher(cfg, nil, logger.NewNopLogger())
	_, ok := p.(*NoopPublisher)
	require.True(t, ok)
	assert.NoError(t, p.Enqueue(context.Background(), &Notification{Kind: KindWelcome}))
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
