package app

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/database"
	invitehttp "github.com/tech-arch1tect/invitegate/handlers/invite"
	"github.com/tech-arch1tect/invitegate/middleware/ratelimit"
	"github.com/tech-arch1tect/invitegate/openapi"
	"github.com/tech-arch1tect/invitegate/server"
	"github.com/tech-arch1tect/invitegate/services/audit"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"github.com/tech-arch1tect/invitegate/services/jwt"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"github.com/tech-arch1tect/invitegate/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type AppBuilder struct {
	config      *config.Config
	services    map[string]bool
	models      []any
	migrations  []database.Migration
	fxOptions   []fx.Option
	errors      []error
	sslCertFile string
	sslKeyFile  string
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		services:   make(map[string]bool),
		models:     make([]any, 0),
		migrations: make([]database.Migration, 0),
		fxOptions:  make([]fx.Option, 0),
		errors:     make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithDatabase(models ...any) *AppBuilder {
	b.services["database"] = true
	b.models = append(b.models, models...)
	return b
}

// WithInvites mounts the invite endpoints together with the storage and JWT
// verification they depend on.
func (b *AppBuilder) WithInvites() *AppBuilder {
	b.services["invites"] = true
	b.services["jwt"] = true
	b.WithDatabase(invite.Models()...)
	b.migrations = append(b.migrations, invite.Migrate)
	return b
}

func (b *AppBuilder) WithAudit() *AppBuilder {
	b.services["audit"] = true
	return b.WithDatabase(audit.Models()...)
}

func (b *AppBuilder) WithMail() *AppBuilder {
	b.services["mail"] = true
	return b
}

func (b *AppBuilder) WithJWT() *AppBuilder {
	b.services["jwt"] = true
	return b
}

func (b *AppBuilder) WithAPIDocs() *AppBuilder {
	b.services["docs"] = true
	return b
}

func (b *AppBuilder) WithSSL(certFile, keyFile string) *AppBuilder {
	if certFile == "" || keyFile == "" {
		b.addError("SSL cert file and key file cannot be empty")
		return b
	}
	b.services["ssl"] = true
	b.sslCertFile = certFile
	b.sslKeyFile = keyFile
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.config == nil {
		if err := b.WithAutoConfig().validate(); err != nil {
			return nil, err
		}
	}

	logger, err := b.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	services, err := b.buildServices(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build services: %w", err)
	}

	app := &App{
		config:   b.config,
		logger:   logger,
		services: services,
		db:       services.database,
	}

	fxOptions := b.buildFxOptions(services, logger)
	fxOptions = append(fxOptions, fx.Invoke(func(srv *server.Server) {
		app.server = srv
	}))
	if b.services["invites"] {
		fxOptions = append(fxOptions, fx.Invoke(func(svc *invite.Service) {
			app.invites = svc
		}))
	}

	app.fx = fx.New(fxOptions...)
	if err := app.fx.Err(); err != nil {
		return nil, fmt.Errorf("failed to wire application: %w", err)
	}

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) validate() error {
	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}

	if b.services["invites"] && !b.services["database"] {
		return fmt.Errorf("invites require database support")
	}

	if b.services["invites"] && !b.services["jwt"] {
		return fmt.Errorf("invites require JWT support")
	}

	if b.services["audit"] && !b.services["database"] {
		b.services["database"] = true
	}

	return nil
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config required for logger creation")
	}

	return logging.NewLoggingService(b.config)
}

type ServiceContainer struct {
	database *gorm.DB
}

func (b *AppBuilder) buildServices(logger *logging.Service) (*ServiceContainer, error) {
	services := &ServiceContainer{}

	if b.services["database"] {
		modelsOpt := database.WithModels(b.models...).WithMigrations(b.migrations...)

		db, err := database.ProvideDatabase(*b.config, modelsOpt, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		services.database = db
	}

	return services, nil
}

func (b *AppBuilder) buildFxOptions(services *ServiceContainer, logger *logging.Service) []fx.Option {
	var options []fx.Option

	options = append(options,
		config.NewProvider(b.config),
		fx.Supply(logger),
		fx.Invoke(logging.SyncOnStop),
		fx.NopLogger,
	)

	if services.database != nil {
		options = append(options,
			fx.Supply(services.database),
			fx.Invoke(database.CloseOnStop),
		)
	}

	options = append(options, fx.Provide(ratelimit.ProvideRateLimitStore))

	if b.services["ssl"] {
		certFile, keyFile := b.sslCertFile, b.sslKeyFile
		options = append(options, fx.Invoke(func(srv *server.Server) {
			srv.EnableTLS(certFile, keyFile)
		}))
	}

	if b.services["jwt"] {
		options = append(options, jwt.Module)
	}
	if b.services["audit"] {
		options = append(options, audit.Module)
	}
	if b.services["mail"] {
		options = append(options, mail.Module)
	}
	if b.services["invites"] {
		options = append(options, invite.Module, fx.Invoke(registerInviteRoutes))
	}
	if b.services["docs"] {
		docs := b.services["invites"]
		options = append(options, fx.Invoke(func(srv *server.Server) error {
			return registerAPIDocs(srv, b.config, docs)
		}))
	}

	options = append(options, b.fxOptions...)

	options = append(options, b.buildHealthCheck(services))

	// Appended last so the listener starts after, and stops before, every other hook.
	options = append(options, server.NewProvider())

	return options
}

func registerInviteRoutes(cfg *config.Config, srv *server.Server, svc *invite.Service, jwtService *jwt.Service, store ratelimit.Store, logger *logging.Service) {
	handler := invitehttp.NewHandler(svc, logger.Named("http"))
	invitehttp.RegisterRoutes(srv.Echo(), handler, jwtService, ratelimit.ForStore(store, &cfg.RateLimit))
}

func registerAPIDocs(srv *server.Server, cfg *config.Config, invites bool) error {
	api := openapi.New(cfg.App.Name, "1.0.0").
		Description("Invite token lifecycle API").
		Server(cfg.App.URL, "").
		BearerAuth("bearerAuth", "Administrator JWT")

	if invites {
		invitehttp.Document(api)
	}
	if err := api.Validate(); err != nil {
		return fmt.Errorf("invalid API description: %w", err)
	}

	api.Register(srv.Echo())
	return nil
}

func (b *AppBuilder) buildHealthCheck(services *ServiceContainer) fx.Option {
	return fx.Invoke(func(srv *server.Server) {
		checks := map[string]server.HealthCheck{}
		if services.database != nil {
			db := services.database
			checks["database"] = func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}
		}
		srv.Health("/healthz", checks)
	})
}
