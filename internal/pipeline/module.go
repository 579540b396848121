package pipeline

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/deployit/internal/pipeline/builder"
	"github.com/elskow/deployit/internal/pipeline/config"
	"github.com/elskow/deployit/internal/pipeline/confirm"
	"github.com/elskow/deployit/internal/pipeline/deployer"
	"github.com/elskow/deployit/internal/pipeline/renderer"
	"github.com/elskow/deployit/internal/pipeline/resolver"
	"github.com/elskow/deployit/internal/pipeline/templates"
	"github.com/elskow/deployit/internal/pipeline/validator"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.PipelineConfig) validator.Validator {
					return validator.NewProjectValidator(config)
				},
			),
			resolver.NewResolver,
			templates.NewCatalog,
			renderer.NewRenderer,
			renderer.NewWriter,
			fx.Annotate(
				func(config *config.PipelineConfig, logger *zap.Logger) builder.FactoryInterface {
					return builder.NewBuilderFactory(config, logger)
				},
			),
			func() *builder.Options {
				return &builder.Options{Stdout: os.Stdout, Stderr: os.Stderr}
			},
			func(config *config.PipelineConfig, logger *zap.Logger) DeployerFactory {
				return func() (deployer.Deployer, error) {
					return deployer.NewDeployer(&config.Deploy, logger)
				}
			},
			fx.Annotate(
				func() confirm.Confirmer {
					return confirm.NewPrompt(os.Stdin, os.Stdout)
				},
			),
			fx.Annotate(
				func(
					config *config.PipelineConfig,
					resolver *resolver.Resolver,
					renderer *renderer.Renderer,
					writer *renderer.Writer,
					validator validator.Validator,
					builderFactory builder.FactoryInterface,
					builderOptions *builder.Options,
					deployerFactory DeployerFactory,
					confirmer confirm.Confirmer,
					logger *zap.Logger,
				) *Pipeline {
					return NewPipeline(Deps{
						Config:          config,
						Resolver:        resolver,
						Renderer:        renderer,
						Writer:          writer,
						Validator:       validator,
						BuilderFactory:  builderFactory,
						BuilderOptions:  builderOptions,
						DeployerFactory: deployerFactory,
						Confirmer:       confirmer,
						Out:             os.Stdout,
						Logger:          logger,
					})
				},
			),
		),
	)
}
