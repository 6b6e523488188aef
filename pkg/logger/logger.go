package logger

import (
	"log"

	"go.uber.org/zap"
)

// New builds a zap logger for the given environment: human-readable console
// output for "local"/"dev", JSON for everything else.
func New(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "local", "dev", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("failed to build zap logger: %v", err)
	}

	return logger
}
