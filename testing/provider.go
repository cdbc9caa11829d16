package e2etesting

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/tech-arch1tect/invitegate/app"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/internal/options"
	"github.com/tech-arch1tect/invitegate/services/identity"
	"github.com/tech-arch1tect/invitegate/services/jwt"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const signingKey = "e2e0a1b2c3d4e5f6g7h8i9j0k1l2m3n4o5p6q7r8s9t0u1v2w3x4"

type E2EApp struct {
	App        *app.App
	TestServer *httptest.Server
	BaseURL    string
	Config     *config.Config
	DB         *gorm.DB
	JWT        *jwt.Service
}

type TestConfig struct {
	DatabaseURL    string
	MasterTokens   []string
	EnableAudit    bool
	OverrideConfig func(*config.Config) *config.Config
}

type HTTPClient struct {
	Client  *http.Client
	BaseURL string
	Bearer  string
}

func ProvideTestConfig() *TestConfig {
	return &TestConfig{
		DatabaseURL: ":memory:",
		EnableAudit: true,
	}
}

func ProvideHTTPClient(e2eApp *E2EApp) *HTTPClient {
	return NewHTTPClient(e2eApp.BaseURL)
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		BaseURL: baseURL,
	}
}

// ProvideE2EApp starts the application and serves it from an httptest server for
// the lifetime of the fx app.
func ProvideE2EApp(lc fx.Lifecycle, testConfig *TestConfig) (*E2EApp, error) {
	e2eApp, err := StartE2EApp(testConfig)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			e2eApp.Close()
			return nil
		},
	})
	return e2eApp, nil
}

func StartE2EApp(testConfig *TestConfig) (*E2EApp, error) {
	cfg := createTestConfig(testConfig)

	opts := []options.Option{
		options.WithConfig(cfg),
		options.WithInvites(),
		options.WithAPIDocs(),
	}
	if testConfig.EnableAudit {
		opts = append(opts, options.WithAudit())
	}

	application, err := app.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	if err := application.StartTest(); err != nil {
		return nil, fmt.Errorf("failed to start application: %w", err)
	}

	ts := httptest.NewServer(application.Server())

	return &E2EApp{
		App:        application,
		TestServer: ts,
		BaseURL:    ts.URL,
		Config:     cfg,
		DB:         application.Database(),
		JWT:        jwt.NewService(cfg, nil),
	}, nil
}

func (a *E2EApp) Close() {
	if a.TestServer != nil {
		a.TestServer.Close()
	}
	a.App.StopTest()
}

// BearerFor mints an access token for actor against the app's signing key.
func (a *E2EApp) BearerFor(actor identity.Actor) (string, error) {
	return a.JWT.GenerateToken(actor)
}

func createTestConfig(testConfig *TestConfig) *config.Config {
	cfg := &config.Config{
		App: config.AppConfig{
			Name: "invitegate-e2e",
			URL:  "http://localhost:8080",
		},
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         "0",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         testConfig.DatabaseURL,
			AutoMigrate: true,
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		JWT: config.JWTConfig{
			SecretKey:    signingKey,
			Issuer:       "invitegate",
			AccessExpiry: 15 * time.Minute,
		},
		Invite: config.InviteConfig{
			DefaultMaxUses: 1,
			MaxUsesLimit:   100,
			RafflePeriod:   24 * time.Hour,
			StorageTimeout: 3 * time.Second,
			MasterTokens:   testConfig.MasterTokens,
			RegisterURL:    "http://localhost:8080/register",
		},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
		Audit: config.AuditConfig{
			BufferSize:   64,
			WriteTimeout: time.Second,
		},
	}

	if testConfig.OverrideConfig != nil {
		cfg = testConfig.OverrideConfig(cfg)
	}
	return cfg
}
