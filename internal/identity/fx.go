package identity

import (
	"github.com/heirloomlabs/heirloom/internal/config"
	"go.uber.org/fx"
)

func provide(cfg config.Config) Provider {
	return NewJWTProvider(cfg.AuthJWTSecret)
}

var Module = fx.Module("identity",
	fx.Provide(provide),
)
