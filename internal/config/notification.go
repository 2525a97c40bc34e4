package config

import "time"

// NotificationConfig configures the SMS gateway and the async notification queue
type NotificationConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Topic      string `mapstructure:"topic"`
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	SenderName string `mapstructure:"sender_name"`
	// BatchSize and BatchDelay pace bulk sends
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`

	// retry policy of the notification router, independent of billing calls
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:         false,
		Topic:           "notifications",
		SenderName:      "NETCYCLE",
		BatchSize:       10,
		BatchDelay:      time.Second,
		Timeout:         15 * time.Second,
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		MaxElapsedTime:  2 * time.Minute,
	}
}
