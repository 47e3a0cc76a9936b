package project

import (
	"github.com/heirloomlabs/heirloom/internal/project/repository"
	"github.com/heirloomlabs/heirloom/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
