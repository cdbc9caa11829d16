package app

import "github.com/tech-arch1tect/invitegate/internal/options"

// New applies opts to a fresh builder. Without WithConfig the configuration is
// loaded from the environment.
func New(opts ...options.Option) (*App, error) {
	o := &options.Options{}
	for _, opt := range opts {
		opt(o)
	}

	b := NewApp()
	if o.Config != nil {
		b.WithConfig(o.Config)
	} else {
		b.WithAutoConfig()
	}
	if o.EnableInvites {
		b.WithInvites()
	}
	if o.EnableAudit {
		b.WithAudit()
	}
	if o.EnableMail {
		b.WithMail()
	}
	if o.EnableDocs {
		b.WithAPIDocs()
	}
	if o.CertFile != "" || o.KeyFile != "" {
		b.WithSSL(o.CertFile, o.KeyFile)
	}
	b.WithFxOptions(o.ExtraFxOptions...)

	return b.Build()
}
