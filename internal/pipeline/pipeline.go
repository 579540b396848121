package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/builder"
	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/confirm"
	"github.com/elskow/deployit/internal/pipeline/deployer"
	"github.com/elskow/deployit/internal/pipeline/renderer"
	"github.com/elskow/deployit/internal/pipeline/resolver"
	"github.com/elskow/deployit/internal/pipeline/types"
	"github.com/elskow/deployit/internal/pipeline/validator"
)

const confirmQuestion = "Do you want to proceed?"

// Request is one invocation of the tool.
type Request struct {
	Dir       string
	Overrides types.Overrides
	// Force removes previously generated artifacts before rendering.
	Force   bool
	Process types.LookupFunc
}

// DeployerFactory builds the submitter only once the user has confirmed, so
// declining never touches cluster credentials.
type DeployerFactory func() (deployer.Deployer, error)

type Pipeline struct {
	config          *config.PipelineConfig
	resolver        *resolver.Resolver
	renderer        *renderer.Renderer
	writer          *renderer.Writer
	validator       validator.Validator
	builderFactory  builder.FactoryInterface
	builderOptions  *builder.Options
	deployerFactory DeployerFactory
	confirmer       confirm.Confirmer
	cleanup         *CleanupManager
	metrics         *MetricsCollector
	out             io.Writer
	logger          *zap.Logger
}

type Deps struct {
	Config          *config.PipelineConfig
	Resolver        *resolver.Resolver
	Renderer        *renderer.Renderer
	Writer          *renderer.Writer
	Validator       validator.Validator
	BuilderFactory  builder.FactoryInterface
	BuilderOptions  *builder.Options
	DeployerFactory DeployerFactory
	Confirmer       confirm.Confirmer
	Out             io.Writer
	Logger          *zap.Logger
}

func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{
		config:          deps.Config,
		resolver:        deps.Resolver,
		renderer:        deps.Renderer,
		writer:          deps.Writer,
		validator:       deps.Validator,
		builderFactory:  deps.BuilderFactory,
		builderOptions:  deps.BuilderOptions,
		deployerFactory: deps.DeployerFactory,
		confirmer:       deps.Confirmer,
		cleanup:         NewCleanupManager(deps.Config, deps.Logger),
		metrics:         NewMetricsCollector(),
		out:             deps.Out,
		logger:          deps.Logger,
	}
}

// prepared is what the stages before confirmation hand on.
type prepared struct {
	project   *types.Project
	artifacts *renderer.ArtifactSet
	image     *types.ImageSpec
	process   types.LookupFunc
}

// Run drives Start -> Confirm -> Build -> Tag -> Push -> Submit. The first
// failure ends the run; nothing already done is undone.
func (p *Pipeline) Run(ctx context.Context, req Request) *types.Outcome {
	outcome := &types.Outcome{Stage: types.StageStart, StartTime: time.Now()}
	defer func() {
		outcome.EndTime = time.Now()
		p.metrics.Log(p.logger)
	}()

	abort := func(stage types.Stage, err error) *types.Outcome {
		p.metrics.EndStage(stage, StatusFailed)
		p.logger.Error("pipeline aborted",
			zap.String("stage", string(stage)),
			zap.Error(err))
		outcome.Stage = types.StageAborted
		outcome.Err = err
		return outcome
	}

	p.metrics.StartStage(types.StageStart)
	prep, err := p.prepare(req)
	if err != nil {
		return abort(types.StageStart, err)
	}
	p.metrics.EndStage(types.StageStart, StatusSucceeded)

	p.metrics.StartStage(types.StageConfirm)
	if err := confirm.RenderSummary(p.out, &prep.project.Descriptor, p.config.DeployConfigFile); err != nil {
		return abort(types.StageConfirm, err)
	}
	ok, err := p.confirmer.Confirm(ctx, confirmQuestion)
	if err != nil {
		return abort(types.StageConfirm, err)
	}
	if !ok {
		p.metrics.EndStage(types.StageConfirm, StatusCancelled)
		fmt.Fprintln(p.out, "Exiting...")
		outcome.Stage = types.StageCancelled
		return outcome
	}
	p.metrics.EndStage(types.StageConfirm, StatusSucceeded)

	tool, err := p.builderFactory.CreateImageTool(p.builderOptions)
	if err != nil {
		return abort(types.StageBuild, err)
	}

	stages := []struct {
		stage types.Stage
		run   func(context.Context, *types.ImageSpec) error
	}{
		{types.StageBuild, tool.Build},
		{types.StageTag, tool.Tag},
		{types.StagePush, tool.Push},
	}
	for _, s := range stages {
		outcome.Stage = s.stage
		p.metrics.StartStage(s.stage)
		if err := s.run(ctx, prep.image); err != nil {
			return abort(s.stage, err)
		}
		p.metrics.EndStage(s.stage, StatusSucceeded)
	}

	outcome.Stage = types.StageSubmit
	p.metrics.StartStage(types.StageSubmit)
	if err := p.submit(ctx, prep); err != nil {
		return abort(types.StageSubmit, err)
	}
	p.metrics.EndStage(types.StageSubmit, StatusSucceeded)

	confirm.RenderSuccess(p.out, &prep.project.Descriptor)
	outcome.Stage = types.StageDone
	return outcome
}

// prepare resolves the project and materializes its artifacts. Everything
// that can fail without external side effects fails here.
func (p *Pipeline) prepare(req Request) (*prepared, error) {
	dir, err := filepath.Abs(req.Dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory: %w", err)
	}

	project, err := p.resolver.Resolve(resolver.Request{
		Dir:       dir,
		Overrides: req.Overrides,
		Process:   req.Process,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := p.renderer.Render(project)
	if err != nil {
		return nil, err
	}

	image, err := builder.NewImageSpec(p.config, dir, project.Descriptor.Name)
	if err != nil {
		return nil, err
	}

	if req.Force {
		if err := p.cleanup.RemoveArtifacts(dir, rendered); err != nil {
			return nil, err
		}
	}

	// Checks run against what will be on disk, before anything is written.
	effective, err := p.writer.Preview(dir, rendered)
	if err != nil {
		return nil, err
	}
	if err := p.validator.ValidateManifests(effective.Manifests()); err != nil {
		return nil, fmt.Errorf("rendered manifests are invalid: %w", err)
	}
	if err := p.validator.CheckConsistency(effective.Manifests(), &project.Descriptor, image.RemoteRef); err != nil {
		return nil, err
	}

	if _, err := renderer.EnsureIgnoreEntries(filepath.Join(dir, p.config.IgnoreFile), p.config.IgnoreEntries, p.logger); err != nil {
		return nil, err
	}

	artifacts, report, err := p.writer.Write(dir, rendered)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("artifacts written",
		zap.Strings("written", report.Written),
		zap.Strings("skipped", report.Skipped))

	return &prepared{project: project, artifacts: artifacts, image: image, process: req.Process}, nil
}

func (p *Pipeline) submit(ctx context.Context, prep *prepared) error {
	d, err := p.deployerFactory()
	if err != nil {
		return &types.SubmissionError{Err: err}
	}

	return d.Deploy(ctx, &deployer.Request{
		Descriptor: prep.project.Descriptor,
		Manifests:  prep.artifacts.Manifests(),
		Lookup:     prep.project.Env.Layered(prep.process),
	})
}
