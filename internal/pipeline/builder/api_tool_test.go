package builder

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	dockertypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/types"
)

type fakeDockerAPI struct {
	buildOptions dockertypes.ImageBuildOptions
	buildBody    string
	buildErr     error
	tagged       [2]string
	tagErr       error
	pushRef      string
	pushAuth     string
	pushBody     string
}

func (f *fakeDockerAPI) ImageBuild(_ context.Context, buildContext io.Reader, options dockertypes.ImageBuildOptions) (dockertypes.ImageBuildResponse, error) {
	f.buildOptions = options
	if f.buildErr != nil {
		return dockertypes.ImageBuildResponse{}, f.buildErr
	}
	_, _ = io.Copy(io.Discard, buildContext)
	return dockertypes.ImageBuildResponse{Body: io.NopCloser(strings.NewReader(f.buildBody))}, nil
}

func (f *fakeDockerAPI) ImageTag(_ context.Context, source, target string) error {
	f.tagged = [2]string{source, target}
	return f.tagErr
}

func (f *fakeDockerAPI) ImagePush(_ context.Context, ref string, options image.PushOptions) (io.ReadCloser, error) {
	f.pushRef = ref
	f.pushAuth = options.RegistryAuth
	return io.NopCloser(strings.NewReader(f.pushBody)), nil
}

func newAPITool(api DockerAPI, out io.Writer) *APIImageTool {
	cfg := config.Default()
	cfg.Builder.Username = "ci"
	cfg.Builder.Password = "secret"
	return NewAPIImageToolWithClient(api, &cfg.Builder, &Options{Stdout: out}, zap.NewNop())
}

func apiSpec(t *testing.T) *types.ImageSpec {
	spec := testSpec()
	spec.ContextDir = t.TempDir()
	return spec
}

func TestAPIImageTool_Success(t *testing.T) {
	api := &fakeDockerAPI{
		buildBody: `{"stream":"Step 1/4 : FROM node:20-alpine\n"}` + "\n",
		pushBody:  `{"status":"Pushed"}` + "\n",
	}
	var out bytes.Buffer
	tool := newAPITool(api, &out)
	spec := apiSpec(t)
	ctx := context.Background()

	require.NoError(t, tool.Build(ctx, spec))
	require.NoError(t, tool.Tag(ctx, spec))
	require.NoError(t, tool.Push(ctx, spec))

	assert.Equal(t, ".deploy-it-files/Dockerfile", api.buildOptions.Dockerfile)
	assert.Equal(t, []string{"shop"}, api.buildOptions.Tags)
	assert.Equal(t, "linux/amd64", api.buildOptions.Platform)
	assert.Equal(t, [2]string{"shop", "registry.rapidohio.com/shop"}, api.tagged)
	assert.Equal(t, "registry.rapidohio.com/shop", api.pushRef)
	assert.NotEmpty(t, api.pushAuth)
	assert.Contains(t, out.String(), "Step 1/4")
}

func TestAPIImageTool_Failures(t *testing.T) {
	tests := []struct {
		name  string
		api   *fakeDockerAPI
		call  func(*APIImageTool, *types.ImageSpec) error
		stage types.Stage
	}{
		{
			name:  "build request rejected",
			api:   &fakeDockerAPI{buildErr: errors.New("daemon unavailable")},
			call:  func(tool *APIImageTool, s *types.ImageSpec) error { return tool.Build(context.Background(), s) },
			stage: types.StageBuild,
		},
		{
			name:  "build step fails",
			api:   &fakeDockerAPI{buildBody: `{"errorDetail":{"message":"npm ERR!"},"error":"npm ERR!"}` + "\n"},
			call:  func(tool *APIImageTool, s *types.ImageSpec) error { return tool.Build(context.Background(), s) },
			stage: types.StageBuild,
		},
		{
			name:  "tag fails",
			api:   &fakeDockerAPI{tagErr: errors.New("no such image")},
			call:  func(tool *APIImageTool, s *types.ImageSpec) error { return tool.Tag(context.Background(), s) },
			stage: types.StageTag,
		},
		{
			name:  "push denied",
			api:   &fakeDockerAPI{pushBody: `{"errorDetail":{"message":"denied"},"error":"denied"}` + "\n"},
			call:  func(tool *APIImageTool, s *types.ImageSpec) error { return tool.Push(context.Background(), s) },
			stage: types.StagePush,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(newAPITool(tt.api, io.Discard), apiSpec(t))

			var toolErr *types.ExternalToolError
			require.ErrorAs(t, err, &toolErr)
			assert.Equal(t, tt.stage, toolErr.Stage)
			assert.Equal(t, 1, toolErr.ExitCode)
		})
	}
}
