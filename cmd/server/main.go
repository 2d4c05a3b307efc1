package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/dmitrijs2005/taskboard/internal/server"
	"github.com/dmitrijs2005/taskboard/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	done := make(chan error, 1)
	go func() {
		err := app.Run(ctx)
		if ctx.Err() == nil {
			log.Printf("server stopped: %v", err)
			_ = app.Close()
			os.Exit(1)
		}
		done <- err
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"taskboard": func(context.Context) error {
				cancel()
				err := <-done
				if cerr := app.Close(); err == nil {
					err = cerr
				}
				return err
			},
		},
	)

	exitCode := <-wait
	os.Exit(exitCode)
}
