package audit

import (
	"context"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAuditService(lc fx.Lifecycle, cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	service := NewService(&cfg.Audit, db, logger.Named("audit"))
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			service.Start()
			return nil
		},
		OnStop: service.Stop,
	})
	return service
}

var Module = fx.Options(
	fx.Provide(
		ProvideAuditService,
		func(s *Service) invite.Recorder { return s },
	),
)
