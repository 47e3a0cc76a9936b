package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/config"
	"github.com/heirloomlabs/heirloom/internal/entitlement"
	"github.com/heirloomlabs/heirloom/internal/identity"
	"github.com/heirloomlabs/heirloom/internal/invitation"
	"github.com/heirloomlabs/heirloom/internal/logger"
	"github.com/heirloomlabs/heirloom/internal/metrics"
	"github.com/heirloomlabs/heirloom/internal/migration"
	"github.com/heirloomlabs/heirloom/internal/notification"
	"github.com/heirloomlabs/heirloom/internal/observability"
	"github.com/heirloomlabs/heirloom/internal/project"
	"github.com/heirloomlabs/heirloom/internal/ratelimit"
	"github.com/heirloomlabs/heirloom/internal/server"
	"github.com/heirloomlabs/heirloom/internal/sweeper"
	"github.com/heirloomlabs/heirloom/internal/wallet"
	"github.com/heirloomlabs/heirloom/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		identity.Module,
		notification.Module,
		metrics.Module,
		ratelimit.Module,

		wallet.Module,
		project.Module,
		invitation.Module,
		entitlement.Module,

		sweeper.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(nodeID())
	if err != nil {
		panic(err)
	}
	return node
}

// nodeID defaults to 1; multi-instance deployments set SNOWFLAKE_NODE_ID.
func nodeID() int64 {
	value := os.Getenv("SNOWFLAKE_NODE_ID")
	if value == "" {
		return 1
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 || id > 1023 {
		return 1
	}
	return id
}
