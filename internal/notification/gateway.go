package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/netcycle/netcycle/internal/config"
	ierr "github.com/netcycle/netcycle/internal/errors"
	"github.com/netcycle/netcycle/internal/httpclient"
	"github.com/netcycle/netcycle/internal/logger"
)

// Gateway delivers one text message
type Gateway interface {
	Send(ctx context.Context, phoneNumber string, message string) error
}

// NewGateway returns the HTTP gateway when a gateway url is configured and a
// logging gateway otherwise
func NewGateway(cfg *config.Configuration, logger *logger.Logger) Gateway {
	if cfg.Notification.GatewayURL == "" {
		return &LogGateway{logger: logger}
	}

	clientCfg := httpclient.DefaultClientConfig()
	if cfg.Notification.Timeout > 0 {
		clientCfg.Timeout = cfg.Notification.Timeout
	}
	return NewHTTPGateway(cfg.Notification, httpclient.NewDefaultClient(clientCfg, logger), logger)
}

// HTTPGateway posts messages to an SMS provider API
type HTTPGateway struct {
	client     httpclient.Client
	url        string
	apiKey     string
	senderName string
	logger     *logger.Logger
}

type sendRequest struct {
	APIKey     string `json:"apikey"`
	Number     string `json:"number"`
	Message    string `json:"message"`
	SenderName string `json:"sendername,omitempty"`
}

func NewHTTPGateway(cfg config.NotificationConfig, client httpclient.Client, logger *logger.Logger) *HTTPGateway {
	return &HTTPGateway{
		client:     client,
		url:        cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		senderName: cfg.SenderName,
		logger:     logger,
	}
}

func (g *HTTPGateway) Send(ctx context.Context, phoneNumber string, message string) error {
	number, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{
		APIKey:     g.apiKey,
		Number:     number,
		Message:    message,
		SenderName: g.senderName,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not encode the text message").
			Mark(ierr.ErrNotification)
	}

	_, err = g.client.Send(ctx, &httpclient.Request{
		Method: http.MethodPost,
		URL:    g.url,
		Body:   body,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("The SMS gateway did not accept the message").
			WithReportableDetails(map[string]any{"number": number}).
			Mark(ierr.ErrNotification)
	}

	g.logger.Debugw("sms sent", "number", number)
	return nil
}

// LogGateway only logs, for local runs without a provider
type LogGateway struct {
	logger *logger.Logger
}

func (g *LogGateway) Send(ctx context.Context, phoneNumber string, message string) error {
	number, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	g.logger.Infow("sms gateway not configured, logging message",
		"number", number,
		"message", message,
	)
	return nil
}
