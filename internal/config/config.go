package config

import (
	"fmt"
	"strings"

	"github.com/billforge/billforge/internal/types"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	Notifier   NotifierConfig
	Catalog    CatalogConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `validate:"required"`
	Port                   int    `validate:"required"`
	User                   string `validate:"required"`
	Password               string `validate:"required"`
	DBName                 string `validate:"required"`
	SSLMode                string `validate:"required"`
	MaxOpenConns           int    `default:"10"`
	MaxIdleConns           int    `default:"5"`
	ConnMaxLifetimeMinutes int    `default:"60"`
}

type NotifierConfig struct {
	// Topic carrying immediate effective-change signals
	EffectiveTopic string `default:"subscription.effective"`
	// Topic carrying future wake-up requests for the external scheduler
	WakeupTopic string `default:"subscription.wakeup"`
	// Buffer size of the in-process channel transport
	BufferSize int64 `default:"100"`
}

type CatalogConfig struct {
	// Path to the yaml catalog definition loaded at boot
	Path string `default:"catalog.yaml"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billforge")

	v.SetEnvPrefix("BILLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Notifier: NotifierConfig{
			EffectiveTopic: "subscription.effective",
			WakeupTopic:    "subscription.wakeup",
			BufferSize:     100,
		},
		Catalog: CatalogConfig{Path: "catalog.yaml"},
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
