// Package invitegate serves the invite-token lifecycle: issuing, validating,
// consuming and disabling tokens that gate account registration.
package invitegate

import (
	"github.com/tech-arch1tect/invitegate/app"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/internal/options"
	"go.uber.org/fx"
)

type App = app.App

type Option = options.Option

func New(opts ...options.Option) (*App, error) {
	return app.New(opts...)
}

func WithConfig(cfg *config.Config) options.Option {
	return options.WithConfig(cfg)
}

func WithInvites() options.Option {
	return options.WithInvites()
}

func WithAudit() options.Option {
	return options.WithAudit()
}

func WithMail() options.Option {
	return options.WithMail()
}

func WithAPIDocs() options.Option {
	return options.WithAPIDocs()
}

func WithTLS(certFile, keyFile string) options.Option {
	return options.WithTLS(certFile, keyFile)
}

func WithFxOptions(opts ...fx.Option) options.Option {
	return options.WithFxOptions(opts...)
}
