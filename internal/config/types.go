package config

import (
	pipelineconfig "github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

// ProjectConfig holds the user supplied descriptor fields. Empty values are
// resolved from the project directory.
type ProjectConfig struct {
	Name        string `mapstructure:"name"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	ProjectType string `mapstructure:"project_type"`
}

func (p ProjectConfig) Overrides() types.Overrides {
	return types.Overrides{
		Name:        p.Name,
		Host:        p.Host,
		Port:        p.Port,
		ProjectType: p.ProjectType,
	}
}

type AppConfig struct {
	Log      LogConfig                     `mapstructure:"log"`
	Project  ProjectConfig                 `mapstructure:"project"`
	Pipeline pipelineconfig.PipelineConfig `mapstructure:"pipeline"`
}
