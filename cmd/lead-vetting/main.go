package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/di"
	"github.com/mikey/lead-vetting/internal/factory"
	"github.com/mikey/lead-vetting/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	intakes []ports.Intake,
	providers *factory.ProviderFactory,
	cacheRepo factory.StoppableCache,
) error {
	defer logger.Sync()

	started := make([]ports.Intake, 0, len(intakes))
	for _, in := range intakes {
		if err := in.Start(); err != nil {
			logger.Error("Failed to start intake", zap.Error(err))
			stopAll(logger, started)
			return err
		}
		started = append(started, in)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	stopAll(logger, started)

	if err := providers.Close(); err != nil {
		logger.Error("Failed to close provider clients", zap.Error(err))
	}

	cacheRepo.Stop()

	logger.Info("Shutdown complete")
	return nil
}

func stopAll(logger *zap.Logger, intakes []ports.Intake) {
	for i := len(intakes) - 1; i >= 0; i-- {
		if err := intakes[i].Stop(); err != nil {
			logger.Error("Failed to stop intake", zap.Error(err))
		}
	}
}
