package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/invitegate/internal/options"
)

func TestNew(t *testing.T) {
	t.Run("invites with audit", func(t *testing.T) {
		app, err := New(
			options.WithConfig(createTestConfig()),
			options.WithInvites(),
			options.WithAudit(),
		)

		require.NoError(t, err)
		assert.NotNil(t, app.Invites())
		assert.True(t, app.Database().Migrator().HasTable("audit_logs"))
	})

	t.Run("half configured TLS", func(t *testing.T) {
		_, err := New(
			options.WithConfig(createTestConfig()),
			options.WithTLS("cert.pem", ""),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "SSL cert file and key file cannot be empty")
	})
}
