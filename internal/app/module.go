package app

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/config"
	"github.com/elskow/deployit/internal/logger"
	"github.com/elskow/deployit/internal/pipeline"
	pipelineconfig "github.com/elskow/deployit/internal/pipeline/config"
)

// Module combines all application modules
func Module(opts config.LoadOptions) fx.Option {
	return fx.Options(
		fx.Supply(opts),

		// Configuration
		fx.Provide(config.Load),
		fx.Provide(pipelineConfig),

		// Logger
		fx.Provide(newLogger),

		// Pipeline
		pipeline.Module(),
	)
}

func newLogger(cfg *config.AppConfig) (*zap.Logger, error) {
	return logger.NewLogger(cfg.Log.Env, logger.LevelOption(cfg.Log.Level))
}

func pipelineConfig(cfg *config.AppConfig) *pipelineconfig.PipelineConfig {
	return &cfg.Pipeline
}
