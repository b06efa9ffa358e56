// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the sweeper, closes every console session (stopping their
// refresh schedulers) and then disconnects from MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if c := deps.Console; c != nil {
		if c.Sweeper != nil {
			c.Sweeper.Stop()
		}
		if c.Registry != nil {
			n := c.Registry.CloseAll()
			logger.Info("closed console sessions", zap.Int("count", n))
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
