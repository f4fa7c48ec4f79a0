package app

import (
	"context"

	"github.com/coverwallet/httplog/internal/config"
	"github.com/coverwallet/httplog/internal/logger"
)

// ExecuteConfigInit writes the default configuration file to path.
func ExecuteConfigInit(ctx context.Context, path string) error {
	if path == "" {
		path = config.DefaultConfigFilename
	}

	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}

	logger.Infof(ctx, "Configuration written to %s", path)

	return nil
}
