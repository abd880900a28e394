package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Init replaces zap's global logger. Local and dev environments get the
// human readable development encoder, everything else JSON.
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)
	switch environment {
	case "local", "dev", "development":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
