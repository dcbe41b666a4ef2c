package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-resource-client/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := cli.NewApp()
	err := cli.Execute(ctx, app, os.Args[1:])
	stop()
	if err != nil {
		cli.Failure(app.Err, err)
		os.Exit(1)
	}
}
