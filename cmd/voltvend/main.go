package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/voltvend/voltvend/internal/clock"
	"github.com/voltvend/voltvend/internal/config"
	"github.com/voltvend/voltvend/internal/migration"
	"github.com/voltvend/voltvend/internal/observability"
	"github.com/voltvend/voltvend/internal/server"
	"github.com/voltvend/voltvend/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
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
