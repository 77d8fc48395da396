package main

import (
	"context"

	"github.com/daniilvolkov/pagecache/cmd/stress/app"
)

func main() {
	app.MustExecute(context.Background())
}
