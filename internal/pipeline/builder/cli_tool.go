package builder

import (
	"context"

	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/types"
)

// CLIImageTool drives the docker command line, one process per stage.
type CLIImageTool struct {
	binary  string
	runner  CommandRunner
	options *Options
	logger  *zap.Logger
}

func NewCLIImageTool(binary string, runner CommandRunner, options *Options, logger *zap.Logger) *CLIImageTool {
	return &CLIImageTool{
		binary:  binary,
		runner:  runner,
		options: options,
		logger:  logger,
	}
}

func (t *CLIImageTool) Build(ctx context.Context, spec *types.ImageSpec) error {
	args := []string{"build"}
	if spec.Platform != "" {
		args = append(args, "--platform", spec.Platform)
	}
	args = append(args, "-t", spec.Name, "-f", spec.Dockerfile, ".")

	return t.run(ctx, types.StageBuild, spec.ContextDir, args)
}

func (t *CLIImageTool) Tag(ctx context.Context, spec *types.ImageSpec) error {
	return t.run(ctx, types.StageTag, spec.ContextDir, []string{"tag", spec.Name, spec.RemoteRef})
}

func (t *CLIImageTool) Push(ctx context.Context, spec *types.ImageSpec) error {
	return t.run(ctx, types.StagePush, spec.ContextDir, []string{"push", spec.RemoteRef})
}

func (t *CLIImageTool) run(ctx context.Context, stage types.Stage, dir string, args []string) error {
	t.logger.Debug("running image tool",
		zap.String("stage", string(stage)),
		zap.String("binary", t.binary),
		zap.Strings("args", args))

	code, err := t.runner.Run(ctx, Command{
		Name:   t.binary,
		Args:   args,
		Dir:    dir,
		Stdout: t.options.Stdout,
		Stderr: t.options.Stderr,
	})

	t.logger.Info("child process exited",
		zap.String("stage", string(stage)),
		zap.Int("exit_code", code))

	if err != nil || code != 0 {
		return &types.ExternalToolError{Stage: stage, ExitCode: code, Err: err}
	}
	return nil
}
