package wallet

import (
	"github.com/heirloomlabs/heirloom/internal/wallet/repository"
	"github.com/heirloomlabs/heirloom/internal/wallet/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wallet.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
