// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/townlocal/minisite/internal/app/resources"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error will abort startup and prevent the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	logger.Info("minisite ready",
		zap.String("base_url", appCfg.BaseURL),
		zap.Bool("api_enabled", appCfg.APIKey != ""),
		zap.Bool("console_enabled", appCfg.ConsolePassphraseHash != ""),
	)
	return nil
}
