package options

import (
	"github.com/tech-arch1tect/invitegate/config"
	"go.uber.org/fx"
)

type Options struct {
	Config         *config.Config
	EnableInvites  bool
	EnableAudit    bool
	EnableMail     bool
	EnableDocs     bool
	CertFile       string
	KeyFile        string
	ExtraFxOptions []fx.Option
}

type Option func(*Options)

func WithConfig(cfg *config.Config) Option {
	return func(opts *Options) {
		opts.Config = cfg
	}
}

func WithInvites() Option {
	return func(opts *Options) {
		opts.EnableInvites = true
	}
}

func WithAudit() Option {
	return func(opts *Options) {
		opts.EnableAudit = true
	}
}

func WithMail() Option {
	return func(opts *Options) {
		opts.EnableMail = true
	}
}

func WithAPIDocs() Option {
	return func(opts *Options) {
		opts.EnableDocs = true
	}
}

func WithTLS(certFile, keyFile string) Option {
	return func(opts *Options) {
		opts.CertFile = certFile
		opts.KeyFile = keyFile
	}
}

func WithFxOptions(fxOpts ...fx.Option) Option {
	return func(opts *Options) {
		opts.ExtraFxOptions = append(opts.ExtraFxOptions, fxOpts...)
	}
}
