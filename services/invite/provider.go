package invite

import (
	"context"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type OptionalCollaborators struct {
	fx.In
	Recorder Recorder `optional:"true"`
	Notifier Notifier `optional:"true"`
}

func ProvideInviteService(cfg *config.Config, db *gorm.DB, logger *logging.Service, opt OptionalCollaborators) *Service {
	service := NewService(cfg, NewGormStore(db), logger.Named("invite"))
	if opt.Recorder != nil {
		service.SetRecorder(opt.Recorder)
	}
	if opt.Notifier != nil {
		service.SetNotifier(opt.Notifier)
	}
	return service
}

func registerLifecycle(lc fx.Lifecycle, cfg *config.Config, service *Service) {
	scheduler := NewScheduler(service)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := service.SeedMasterTokens(ctx, cfg.Invite.MasterTokens); err != nil {
				return err
			}
			scheduler.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideInviteService),
	fx.Invoke(registerLifecycle),
)
