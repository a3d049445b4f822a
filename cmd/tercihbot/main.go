// TercihBot is a conversational advisory backend for Turkish university
// admissions: it understands chat questions about placement scores,
// rankings, quotas and exam nets, and answers from historical data.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tercihrehberi/tercihbot-go/internal/application/container"
	httpserver "github.com/tercihrehberi/tercihbot-go/internal/presentation/http"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := container.NewContainer(ctx)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	server := httpserver.NewServer(c)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			c.Logger.System().Error("Server failed", "error", err)
		}
	case sig := <-quit:
		c.Logger.Shutdown().Info("Signal received", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		c.Logger.Shutdown().Error("Graceful shutdown failed", "error", err)
	}

	cancel()
	c.Shutdown()
}
