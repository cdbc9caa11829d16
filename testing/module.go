package e2etesting

import (
	"go.uber.org/fx"
)

// Module lets an fx-based test wire a started E2EApp and a client for it.
var Module = fx.Options(
	fx.Provide(ProvideTestConfig),
	fx.Provide(ProvideE2EApp),
	fx.Provide(ProvideHTTPClient),
)
