package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/config"
	"github.com/smallbiznis/aquaflow/internal/migration"
	"github.com/smallbiznis/aquaflow/internal/observability"
	"github.com/smallbiznis/aquaflow/internal/seed"
	"github.com/smallbiznis/aquaflow/internal/server"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP API and every domain it serves
		server.Module,

		// Runs after migrations so the operators table exists.
		seed.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
