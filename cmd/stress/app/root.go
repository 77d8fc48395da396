package app

import (
	"context"

	"github.com/daniilvolkov/pagecache/src/cli"
)

var rootCmd = cli.Init("stress")

func MustExecute(ctx context.Context) {
	initRun()
	rootCmd.MustExecute(ctx)
}
