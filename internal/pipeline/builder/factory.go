package builder

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
)

const (
	DriverCLI = "cli"
	DriverAPI = "api"
)

type Factory struct {
	config *config.PipelineConfig
	logger *zap.Logger
}

type FactoryInterface interface {
	CreateImageTool(options *Options) (ImageTool, error)
}

func NewBuilderFactory(config *config.PipelineConfig, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

func (f *Factory) CreateImageTool(options *Options) (ImageTool, error) {
	switch f.config.Builder.Driver {
	case DriverCLI, "":
		return NewCLIImageTool(f.config.Builder.Binary, ExecRunner{}, options, f.logger), nil
	case DriverAPI:
		tool, err := NewAPIImageTool(&f.config.Builder, options, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create docker api tool: %w", err)
		}
		return tool, nil
	default:
		return nil, fmt.Errorf("unsupported builder driver: %s", f.config.Builder.Driver)
	}
}
