package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/identity"
)

const JWTSigningKey = "a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p6q7r8s9t0u1v2w3x4y5z6"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "invitegate",
			URL:  "http://localhost:8080",
		},
		Log: config.LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		JWT: config.JWTConfig{
			SecretKey:    JWTSigningKey,
			Issuer:       "invitegate",
			AccessExpiry: 15 * time.Minute,
		},
		Invite: config.InviteConfig{
			DefaultMaxUses: 1,
			MaxUsesLimit:   100,
			RafflePeriod:   24 * time.Hour,
			StorageTimeout: 3 * time.Second,
			RegisterURL:    "http://localhost:8080/register",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
			Rate:    30,
			Period:  time.Minute,
			Burst:   10,
		},
		Audit: config.AuditConfig{
			BufferSize:   16,
			WriteTimeout: time.Second,
		},
	}
}

func FakeAdmin() *identity.Actor {
	return &identity.Actor{
		ID:    uint(gofakeit.Number(1, 100000)),
		Email: gofakeit.Email(),
		Name:  gofakeit.Name(),
		Admin: true,
	}
}

func FakeUser() *identity.Actor {
	actor := FakeAdmin()
	actor.Admin = false
	return actor
}
