package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	pipelineconfig "github.com/elskow/deployit/internal/pipeline/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ConfigName = "deployit"
	EnvPrefix  = "DEPLOYIT"
)

// LoadOptions locate the configuration for one invocation.
type LoadOptions struct {
	// Dir is the project directory, searched before the user config dir.
	Dir string
	// File is an explicit config file. It must exist when set.
	File string
}

// Load reads deployit.toml (if any), layers DEPLOYIT_* environment variables
// on top and falls back to the built-in defaults for every key.
func Load(opts LoadOptions) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		if opts.Dir != "" {
			v.AddConfigPath(opts.Dir)
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}
	v.SetDefault("log.env", env)
	v.SetDefault("log.level", "info")

	v.SetDefault("project.name", "")
	v.SetDefault("project.host", "")
	v.SetDefault("project.port", 0)
	v.SetDefault("project.project_type", "")

	d := pipelineconfig.Default()
	v.SetDefault("pipeline.output_dir", d.OutputDir)
	v.SetDefault("pipeline.manifest_file", d.ManifestFile)
	v.SetDefault("pipeline.deploy_config_file", d.DeployConfigFile)
	v.SetDefault("pipeline.ignore_file", d.IgnoreFile)
	v.SetDefault("pipeline.ignore_entries", d.IgnoreEntries)
	v.SetDefault("pipeline.default_domain", d.DefaultDomain)

	v.SetDefault("pipeline.detection.legacy_nest_check", d.Detection.LegacyNestCheck)

	v.SetDefault("pipeline.builder.driver", d.Builder.Driver)
	v.SetDefault("pipeline.builder.binary", d.Builder.Binary)
	v.SetDefault("pipeline.builder.platform", d.Builder.Platform)
	v.SetDefault("pipeline.builder.registry", d.Builder.Registry)
	v.SetDefault("pipeline.builder.username", d.Builder.Username)
	v.SetDefault("pipeline.builder.password", d.Builder.Password)

	v.SetDefault("pipeline.deploy.platform", d.Deploy.Platform)
	v.SetDefault("pipeline.deploy.endpoint", d.Deploy.Endpoint)
	v.SetDefault("pipeline.deploy.success_marker", d.Deploy.SuccessMarker)
	v.SetDefault("pipeline.deploy.token_env", d.Deploy.TokenEnv)
	v.SetDefault("pipeline.deploy.token_secret", d.Deploy.TokenSecret)
	v.SetDefault("pipeline.deploy.token_ttl", d.Deploy.TokenTTL)
	v.SetDefault("pipeline.deploy.timeout", d.Deploy.Timeout)
	v.SetDefault("pipeline.deploy.tls_secret_name", d.Deploy.TLSSecretName)
	v.SetDefault("pipeline.deploy.storage_request", d.Deploy.StorageRequest)
	v.SetDefault("pipeline.deploy.namespace", d.Deploy.Namespace)
	v.SetDefault("pipeline.deploy.kubeconfig", d.Deploy.Kubeconfig)
}
