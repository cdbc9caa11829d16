package mail

import (
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/invite"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/fx"
)

// ProvideMailService returns a nil service when mail is disabled.
func ProvideMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	if !cfg.Mail.Enabled {
		logger.Info("mail service disabled")
		return nil, nil
	}
	return NewService(cfg, logger.Named("mail"))
}

func ProvideNotifier(service *Service) invite.Notifier {
	if service == nil {
		return nil
	}
	return service
}

var Module = fx.Options(
	fx.Provide(ProvideMailService, ProvideNotifier),
)
