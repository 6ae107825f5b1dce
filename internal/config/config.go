package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Notifier NotifierConfig
	Reminder ReminderConfig
	Schedule ScheduleConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	MaxRetries   int    `mapstructure:"max_retries"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// AdminConfig identifies the single service provider. The id is the chat
// platform id reminders and alerts are addressed to; the password guards the
// admin panel login.
type AdminConfig struct {
	ID           int64  `mapstructure:"id"`
	PasswordHash string `mapstructure:"password_hash"`
}

// NotifierConfig configures outbound delivery. Notifications always go to the
// broker channel; admin alerts additionally go out by email when Email is set.
type NotifierConfig struct {
	Channel   string `mapstructure:"channel" envconfig:"CHANNEL"`
	Email     string `mapstructure:"email" envconfig:"EMAIL"`
	SMTPHost  string `mapstructure:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort  int    `mapstructure:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUser  string `mapstructure:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPass  string `mapstructure:"smtp_pass" envconfig:"SMTP_PASS"`
	EmailFrom string `mapstructure:"email_from" envconfig:"EMAIL_FROM"`
}

type ReminderConfig struct {
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds"`
}

func (c ReminderConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// ScheduleConfig holds the fixed operating timezone and the default slot grid
// used when the admin adds a whole working day.
type ScheduleConfig struct {
	Timezone     string   `mapstructure:"timezone"`
	DefaultSlots []string `mapstructure:"default_slots"`
}

func (c ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("notifier.channel", "notifications")
	viper.SetDefault("reminder.sweep_interval_seconds", 60)
	viper.SetDefault("schedule.default_slots", []string{
		"09:00", "10:00", "11:00", "12:00", "13:00",
		"14:00", "15:00", "16:00", "17:00", "18:00",
	})

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Environment overrides for settings that differ per deployment.
	if err := envconfig.Process("notifier", &config.Notifier); err != nil {
		return nil, fmt.Errorf("failed to process notifier env: %w", err)
	}

	return &config, nil
}
