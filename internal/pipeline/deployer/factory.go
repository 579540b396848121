package deployer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
)

const (
	PlatformEndpoint   = "endpoint"
	PlatformKubernetes = "kubernetes"
)

func NewDeployer(config *config.DeployConfig, logger *zap.Logger) (Deployer, error) {
	switch config.Platform {
	case PlatformEndpoint, "":
		return NewEndpointDeployer(config, logger), nil
	case PlatformKubernetes:
		return NewK8sDeployer(config, logger)
	default:
		return nil, fmt.Errorf("unsupported deployment platform: %s", config.Platform)
	}
}
