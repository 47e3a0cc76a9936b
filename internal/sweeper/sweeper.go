// Package sweeper lazily expires overdue pending invitations in the
// background. Accept never depends on it; expiry is re-checked at
// transaction time inside the state machine.
package sweeper

import (
	"context"
	"time"

	invitationdomain "github.com/heirloomlabs/heirloom/internal/invitation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config controls sweep interval and batch size.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		BatchSize:   500,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

type Params struct {
	fx.In

	Log           *zap.Logger
	InvitationSvc invitationdomain.Service
	Config        Config `optional:"true"`
}

type Sweeper struct {
	log           *zap.Logger
	cfg           Config
	invitationSvc invitationdomain.Service
}

func New(p Params) *Sweeper {
	return &Sweeper{
		log:           p.Log.Named("sweeper"),
		cfg:           p.Config.withDefaults(),
		invitationSvc: p.InvitationSvc,
	}
}

func (s *Sweeper) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) RunOnce(ctx context.Context) {
	expired, err := s.invitationSvc.ExpireOverdue(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Warn("invitation expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		s.log.Info("expired overdue invitations", zap.Int64("count", expired))
	}
}

var Module = fx.Module("sweeper",
	fx.Provide(New),
	fx.Invoke(runSweeper),
)

func runSweeper(lc fx.Lifecycle, sweeper *Sweeper) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sweeper.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
