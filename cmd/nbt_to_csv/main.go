// Command nbt_to_csv converts a Minecraft scoreboard.dat file to CSV.
//
//	nbt_to_csv [flags] input_file [output_file]
//	nbt_to_csv --batch [flags] input_file...
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
	code := command.Run(ctx, command.NewCSVApp(), os.Args)
	stop()
	os.Exit(code)
}
