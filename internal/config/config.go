package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/netcycle/netcycle/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment   DeploymentConfig   `mapstructure:"deployment" validate:"required"`
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Logging      LoggingConfig      `mapstructure:"logging" validate:"required"`
	Postgres     PostgresConfig     `mapstructure:"postgres" validate:"required"`
	Billing      BillingConfig      `mapstructure:"billing" validate:"required"`
	Notification NotificationConfig `mapstructure:"notification"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Spec is a robfig/cron expression evaluated in the billing timezone unless it carries CRON_TZ
	Spec string `mapstructure:"spec"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	// a missing .env is fine, the process environment still applies
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/netcycle")

	v.SetEnvPrefix("NETCYCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "netcycle")
	v.SetDefault("postgres.dbname", "netcycle")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)

	billing := DefaultBillingConfig()
	v.SetDefault("billing.referral_discount", billing.ReferralDiscount)
	v.SetDefault("billing.timezone_offset_hours", billing.TimezoneOffsetHours)
	v.SetDefault("billing.worker_count", billing.WorkerCount)
	v.SetDefault("billing.default_profile", billing.DefaultProfile)
	v.SetDefault("billing.warning_lead_days", billing.WarningLeadDays)
	v.SetDefault("billing.profiles", billing.Profiles)
	v.SetDefault("billing.business_units", billing.BusinessUnits)

	notification := DefaultNotificationConfig()
	v.SetDefault("notification.enabled", notification.Enabled)
	v.SetDefault("notification.topic", notification.Topic)
	v.SetDefault("notification.sender_name", notification.SenderName)
	v.SetDefault("notification.batch_size", notification.BatchSize)
	v.SetDefault("notification.batch_delay", notification.BatchDelay)
	v.SetDefault("notification.timeout", notification.Timeout)
	v.SetDefault("notification.max_retries", notification.MaxRetries)
	v.SetDefault("notification.initial_interval", notification.InitialInterval)
	v.SetDefault("notification.max_interval", notification.MaxInterval)
	v.SetDefault("notification.multiplier", notification.Multiplier)
	v.SetDefault("notification.max_elapsed_time", notification.MaxElapsedTime)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "0 8 * * *")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.expiration", 10*time.Minute)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Billing.Validate()
}

// GetDefaultConfig returns a default configuration for local development,
// scripts and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment:   DeploymentConfig{Mode: types.ModeLocal},
		Server:       ServerConfig{Address: ":8080"},
		Logging:      LoggingConfig{Level: types.LogLevelDebug},
		Billing:      DefaultBillingConfig(),
		Notification: DefaultNotificationConfig(),
		Scheduler:    SchedulerConfig{Spec: "0 8 * * *"},
		Cache:        CacheConfig{Enabled: true, Expiration: 10 * time.Minute},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
