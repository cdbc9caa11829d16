package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Invite    InviteConfig    `envPrefix:"INVITE_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"invitegate"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Host           string        `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"invitegate.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Issuer       string        `env:"ISSUER" envDefault:"invitegate"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

// InviteConfig controls the invite-token lifecycle engine.
type InviteConfig struct {
	DefaultMaxUses         int           `env:"DEFAULT_MAX_USES" envDefault:"1"`
	MaxUsesLimit           int           `env:"MAX_USES_LIMIT" envDefault:"1000"`
	RafflePeriod           time.Duration `env:"RAFFLE_PERIOD" envDefault:"24h"`
	StorageTimeout         time.Duration `env:"STORAGE_TIMEOUT" envDefault:"3s"`
	SweepInterval          time.Duration `env:"SWEEP_INTERVAL" envDefault:"0s"`
	RaffleScheduleInterval time.Duration `env:"RAFFLE_SCHEDULE_INTERVAL" envDefault:"0s"`
	MasterTokens           []string      `env:"MASTER_TOKENS" envSeparator:","`
	RegisterURL            string        `env:"REGISTER_URL" envDefault:"http://localhost:8080/register"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"30"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
	Burst   int           `env:"BURST" envDefault:"10"`
}

type MailConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"invitegate"`
}

type AuditConfig struct {
	BufferSize   int           `env:"BUFFER_SIZE" envDefault:"256"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}

const tokenLength = 36

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validateJWTConfig(&c.JWT); err != nil {
		return err
	}
	return validateInviteConfig(&c.Invite)
}

func validateJWTConfig(cfg *JWTConfig) error {
	if len(cfg.SecretKey) < 32 {
		return fmt.Errorf("JWT secret key must be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.SecretKey)
	for _, weak := range []string{"password", "secret", "test", "example", "default", "change"} {
		if strings.Contains(lower, weak) {
			return fmt.Errorf("JWT secret key contains weak patterns (%q)", weak)
		}
	}
	return nil
}

func validateInviteConfig(cfg *InviteConfig) error {
	if cfg.RafflePeriod <= 0 {
		return fmt.Errorf("invite raffle period must be positive")
	}
	if cfg.StorageTimeout <= 0 {
		return fmt.Errorf("invite storage timeout must be positive")
	}
	if cfg.MaxUsesLimit < 1 {
		return fmt.Errorf("invite max uses limit must be at least 1")
	}
	if cfg.DefaultMaxUses < 1 || cfg.DefaultMaxUses > cfg.MaxUsesLimit {
		return fmt.Errorf("invite default max uses must be between 1 and %d", cfg.MaxUsesLimit)
	}
	for _, token := range cfg.MasterTokens {
		if len(strings.TrimSpace(token)) != tokenLength {
			return fmt.Errorf("master tokens must be exactly %d characters", tokenLength)
		}
	}
	return nil
}
