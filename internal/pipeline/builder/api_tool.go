package builder

import (
	"context"
	"fmt"
	"io"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

// apiExitCode is reported for failures of the Engine API driver, which has
// no process exit status of its own.
const apiExitCode = 1

// DockerAPI is the subset of the Engine API client the tool uses.
type DockerAPI interface {
	ImageBuild(ctx context.Context, buildContext io.Reader, options dockertypes.ImageBuildOptions) (dockertypes.ImageBuildResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
}

// APIImageTool talks to the Docker Engine API directly instead of running
// the docker binary.
type APIImageTool struct {
	api     DockerAPI
	config  *config.BuilderConfig
	options *Options
	logger  *zap.Logger
}

func NewAPIImageTool(config *config.BuilderConfig, options *Options, logger *zap.Logger) (*APIImageTool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return NewAPIImageToolWithClient(cli, config, options, logger), nil
}

func NewAPIImageToolWithClient(api DockerAPI, config *config.BuilderConfig, options *Options, logger *zap.Logger) *APIImageTool {
	return &APIImageTool{
		api:     api,
		config:  config,
		options: options,
		logger:  logger,
	}
}

func (t *APIImageTool) Build(ctx context.Context, spec *types.ImageSpec) error {
	t.logger.Info("starting image build via docker api",
		zap.String("image", spec.Name),
		zap.String("platform", spec.Platform))

	buildContext, err := NewBuildContext(spec.ContextDir, spec.Dockerfile)
	if err != nil {
		return t.fail(types.StageBuild, err)
	}
	defer buildContext.Close()

	resp, err := t.api.ImageBuild(ctx, buildContext, dockertypes.ImageBuildOptions{
		Dockerfile: spec.Dockerfile,
		Tags:       []string{spec.Name},
		Platform:   spec.Platform,
		Remove:     true,
	})
	if err != nil {
		return t.fail(types.StageBuild, fmt.Errorf("docker build failed: %w", err))
	}
	defer resp.Body.Close()

	if err := t.stream(resp.Body); err != nil {
		return t.fail(types.StageBuild, err)
	}
	return nil
}

func (t *APIImageTool) Tag(ctx context.Context, spec *types.ImageSpec) error {
	if err := t.api.ImageTag(ctx, spec.Name, spec.RemoteRef); err != nil {
		return t.fail(types.StageTag, fmt.Errorf("docker tag failed: %w", err))
	}
	return nil
}

func (t *APIImageTool) Push(ctx context.Context, spec *types.ImageSpec) error {
	auth, err := registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      t.config.Username,
		Password:      t.config.Password,
		ServerAddress: t.config.Registry,
	})
	if err != nil {
		return t.fail(types.StagePush, fmt.Errorf("failed to encode registry auth: %w", err))
	}

	body, err := t.api.ImagePush(ctx, spec.RemoteRef, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return t.fail(types.StagePush, fmt.Errorf("docker push failed: %w", err))
	}
	defer body.Close()

	if err := t.stream(body); err != nil {
		return t.fail(types.StagePush, err)
	}
	return nil
}

// stream relays the JSON progress messages and surfaces the first error one
// of them carries.
func (t *APIImageTool) stream(body io.Reader) error {
	out := t.options.Stdout
	if out == nil {
		out = io.Discard
	}
	return jsonmessage.DisplayJSONMessagesStream(body, out, 0, false, nil)
}

func (t *APIImageTool) fail(stage types.Stage, err error) error {
	t.logger.Error("image stage failed",
		zap.String("stage", string(stage)),
		zap.Error(err))
	return &types.ExternalToolError{Stage: stage, ExitCode: apiExitCode, Err: err}
}
