package config

import "time"

type PipelineConfig struct {
	OutputDir        string          `mapstructure:"output_dir"`
	ManifestFile     string          `mapstructure:"manifest_file"`
	DeployConfigFile string          `mapstructure:"deploy_config_file"`
	IgnoreFile       string          `mapstructure:"ignore_file"`
	IgnoreEntries    []string        `mapstructure:"ignore_entries"`
	DefaultDomain    string          `mapstructure:"default_domain"`
	Detection        DetectionConfig `mapstructure:"detection"`
	Builder          BuilderConfig   `mapstructure:"builder"`
	Deploy           DeployConfig    `mapstructure:"deploy"`
}

type DetectionConfig struct {
	// LegacyNestCheck keeps the deploy-it 1.x detection, where the Nest
	// branch never matched because it tested the dependency map instead of
	// the key.
	LegacyNestCheck bool `mapstructure:"legacy_nest_check"`
}

type BuilderConfig struct {
	Driver   string `mapstructure:"driver"` // "cli" or "api"
	Binary   string `mapstructure:"binary"`
	Platform string `mapstructure:"platform"`
	Registry string `mapstructure:"registry"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type DeployConfig struct {
	Platform       string        `mapstructure:"platform"` // "endpoint" or "kubernetes"
	Endpoint       string        `mapstructure:"endpoint"`
	SuccessMarker  string        `mapstructure:"success_marker"`
	TokenEnv       string        `mapstructure:"token_env"`
	TokenSecret    string        `mapstructure:"token_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	Timeout        time.Duration `mapstructure:"timeout"`
	TLSSecretName  string        `mapstructure:"tls_secret_name"`
	StorageRequest string        `mapstructure:"storage_request"`

	// Kubernetes platform only
	Namespace  string `mapstructure:"namespace"`
	Kubeconfig string `mapstructure:"kubeconfig"`
}

// Default returns the configuration the tool runs with when nothing is
// overridden.
func Default() PipelineConfig {
	return PipelineConfig{
		OutputDir:        ".deploy-it-files",
		ManifestFile:     "package.json",
		DeployConfigFile: ".env.deploy",
		IgnoreFile:       ".gitignore",
		IgnoreEntries:    []string{"Dockerfile", "createdb.js", "start.sh", ".env.deploy"},
		DefaultDomain:    "audent.ai",
		Builder: BuilderConfig{
			Driver:   "cli",
			Binary:   "docker",
			Platform: "linux/amd64",
			Registry: "registry.rapidohio.com",
		},
		Deploy: DeployConfig{
			Platform:       "endpoint",
			Endpoint:       "http://k8s1.audent.ai:8129/deploy",
			SuccessMarker:  "Deployment successful",
			TokenEnv:       "API_KEY_DEPLOY",
			TokenTTL:       10 * time.Minute,
			Timeout:        60 * time.Second,
			TLSSecretName:  "wildcard-audent-ai-1",
			StorageRequest: "5Gi",
			Namespace:      "default",
		},
	}
}
