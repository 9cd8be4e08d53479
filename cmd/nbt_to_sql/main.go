// Command nbt_to_sql loads a Minecraft scoreboard.dat file into PostgreSQL.
//
//	nbt_to_sql [flags] input_file sql_config
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/nbtscore/internal/adapters/command"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := command.Run(ctx, command.NewSQLApp(command.PoolConnector), os.Args)
	stop()
	os.Exit(code)
}
