package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elskow/deployit/internal/app"
	"github.com/elskow/deployit/internal/config"
	"github.com/elskow/deployit/internal/pipeline"
)

type options struct {
	dir        string
	configFile string
	force      bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := &options{}
	exitCode := 0

	cmd := &cobra.Command{
		Use:   "deployit",
		Short: "Build and deploy a Node or PHP project to the cluster",
		Long: heredoc.Doc(`
			Detect the project type, port and name of the project in the
			working directory, generate its container build file and
			orchestration manifests, then build, tag and push the image and
			submit the manifests for deployment.

			Generated files are never overwritten. Delete them, or pass
			--force, to render them again.
		`),
		Example: heredoc.Doc(`
			# Deploy the project in the current directory
			$ deployit

			# Deploy another directory, regenerating every artifact
			$ deployit --dir ./services/shop --force
		`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := deploy(cmd.Context(), opts)
			exitCode = code
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Project directory")
	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Explicit config file (default: deployit.toml in the project or $HOME/.config/deployit)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Remove previously generated files before rendering")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func deploy(ctx context.Context, opts *options) (int, error) {
	var (
		pipe *pipeline.Pipeline
		cfg  *config.AppConfig
		log  *zap.Logger
	)

	fxApp := fx.New(
		app.Module(config.LoadOptions{Dir: opts.dir, File: opts.configFile}),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Populate(&pipe, &cfg, &log),
	)
	if err := fxApp.Err(); err != nil {
		return 1, err
	}
	defer log.Sync()

	outcome := pipe.Run(ctx, pipeline.Request{
		Dir:       opts.dir,
		Overrides: cfg.Project.Overrides(),
		Force:     opts.force,
		Process:   os.LookupEnv,
	})
	return outcome.ExitCode(), outcome.Err
}
