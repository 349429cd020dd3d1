package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/optora/internal/config"
	"github.com/smallbiznis/optora/internal/logger"
	"github.com/smallbiznis/optora/internal/migration"
	"github.com/smallbiznis/optora/internal/server"
	"github.com/smallbiznis/optora/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

// RegisterSnowflake provides the node used for all persisted IDs.
func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
