package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/securelay/api/cmd/securelay/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := commands.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
