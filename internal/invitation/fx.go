package invitation

import (
	"github.com/heirloomlabs/heirloom/internal/invitation/repository"
	"github.com/heirloomlabs/heirloom/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
