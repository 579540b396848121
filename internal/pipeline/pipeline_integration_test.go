package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/builder"
	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/deployer"
	"github.com/elskow/deployit/internal/pipeline/renderer"
	"github.com/elskow/deployit/internal/pipeline/resolver"
	"github.com/elskow/deployit/internal/pipeline/templates"
	"github.com/elskow/deployit/internal/pipeline/types"
	"github.com/elskow/deployit/internal/pipeline/validator"
)

type recordingRunner struct {
	commands []builder.Command
	failOn   string
	code     int
}

func (r *recordingRunner) Run(_ context.Context, cmd builder.Command) (int, error) {
	r.commands = append(r.commands, cmd)
	if len(cmd.Args) > 0 && cmd.Args[0] == r.failOn {
		return r.code, nil
	}
	return 0, nil
}

type cliFactory struct {
	runner *recordingRunner
	config *config.PipelineConfig
}

func (f *cliFactory) CreateImageTool(options *builder.Options) (builder.ImageTool, error) {
	return builder.NewCLIImageTool(f.config.Builder.Binary, f.runner, options, zap.NewNop()), nil
}

type deployPayload struct {
	YAML    string `json:"yaml"`
	PVCYAML string `json:"pvcYaml"`
}

func newIntegrationPipeline(t *testing.T, endpoint string, runner *recordingRunner) (*Pipeline, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Deploy.Endpoint = endpoint
	logger := zap.NewNop()

	catalog, err := templates.NewCatalog()
	require.NoError(t, err)
	v := validator.NewProjectValidator(&cfg)
	out := &bytes.Buffer{}

	return NewPipeline(Deps{
		Config:         &cfg,
		Resolver:       resolver.NewResolver(&cfg, v, logger),
		Renderer:       renderer.NewRenderer(&cfg, catalog, logger),
		Writer:         renderer.NewWriter(logger),
		Validator:      v,
		BuilderFactory: &cliFactory{runner: runner, config: &cfg},
		BuilderOptions: &builder.Options{},
		DeployerFactory: func() (deployer.Deployer, error) {
			return deployer.NewDeployer(&cfg.Deploy, logger)
		},
		Confirmer: &mockConfirmer{answer: true},
		Out:       out,
		Logger:    logger,
	}), out
}

func TestPipelineIntegration(t *testing.T) {
	var (
		received deployPayload
		auth     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		_, _ = w.Write([]byte("Deployment successful: shop"))
	}))
	defer server.Close()

	dir := createTestProject(t, map[string]string{
		"package.json": `{"name":"shop","dependencies":{"@nestjs/core":"^10.0.0"},"scripts":{"build":"nest build","start":"node dist/main"}}`,
	})

	runner := &recordingRunner{}
	pipe, out := newIntegrationPipeline(t, server.URL, runner)

	outcome := pipe.Run(context.Background(), Request{Dir: dir, Process: noProcessEnv})
	require.NoError(t, outcome.Err)
	assert.Equal(t, types.StageDone, outcome.Stage)

	require.Len(t, runner.commands, 3)
	assert.Equal(t, []string{"build", "--platform", "linux/amd64", "-t", "shop", "-f", ".deploy-it-files/Dockerfile", "."}, runner.commands[0].Args)
	assert.Equal(t, []string{"tag", "shop", "registry.rapidohio.com/shop"}, runner.commands[1].Args)
	assert.Equal(t, []string{"push", "registry.rapidohio.com/shop"}, runner.commands[2].Args)
	for _, cmd := range runner.commands {
		assert.Equal(t, dir, cmd.Dir)
	}

	assert.Equal(t, "Bearer from-file", auth)
	assert.Contains(t, received.YAML, "image: registry.rapidohio.com/shop")
	assert.Contains(t, received.YAML, "containerPort: 3050")
	assert.Contains(t, received.PVCYAML, "name: shop-data-volume-claim")

	assert.Contains(t, out.String(), "nestjs project type")
	assert.Contains(t, out.String(), "Deployment successful!")

	stages := pipe.metrics.Snapshot()
	require.NotEmpty(t, stages)
	assert.Equal(t, types.StageStart, stages[0].Stage)
	assert.Equal(t, types.StageSubmit, stages[len(stages)-1].Stage)
	for _, s := range stages {
		assert.Equal(t, StatusSucceeded, s.Status)
	}
}

func TestPipelineIntegration_TagFailure(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer server.Close()

	dir := createTestProject(t, map[string]string{})
	runner := &recordingRunner{failOn: "tag", code: 125}
	pipe, _ := newIntegrationPipeline(t, server.URL, runner)

	outcome := pipe.Run(context.Background(), Request{Dir: dir, Process: noProcessEnv})
	assert.Equal(t, types.StageAborted, outcome.Stage)
	assert.Equal(t, 1, outcome.ExitCode())

	var toolErr *types.ExternalToolError
	require.ErrorAs(t, outcome.Err, &toolErr)
	assert.Equal(t, types.StageTag, toolErr.Stage)
	assert.Equal(t, 125, toolErr.ExitCode)

	assert.Len(t, runner.commands, 2)
	assert.False(t, hit)
}

func TestPipelineIntegration_RejectedSubmission(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid token"))
	}))
	defer server.Close()

	dir := createTestProject(t, map[string]string{})
	pipe, out := newIntegrationPipeline(t, server.URL, &recordingRunner{})

	outcome := pipe.Run(context.Background(), Request{Dir: dir, Process: noProcessEnv})
	assert.Equal(t, types.StageAborted, outcome.Stage)

	var subErr *types.SubmissionError
	require.ErrorAs(t, outcome.Err, &subErr)
	assert.Equal(t, "invalid token", subErr.Body)
	assert.NotContains(t, out.String(), "Deployment successful!")

	stages := pipe.metrics.Snapshot()
	assert.Equal(t, StatusFailed, stages[len(stages)-1].Status)
}
