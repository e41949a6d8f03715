package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shelfscan/backend/cmd/shelfscan/ui"
	"github.com/shelfscan/backend/config"
	"github.com/shelfscan/backend/internal/app"
	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/infrastructure/credentials"
	"github.com/shelfscan/backend/internal/logging"
	"github.com/shelfscan/backend/internal/usecase"
)

// VisionFactory builds the classifier and extractor for a command run
type VisionFactory func(cfg *config.Config, creds domain.CredentialProvider, logger *zap.Logger) (usecase.TypeClassifier, usecase.ProductExtractor)

// DefaultVision wires the OpenAI compatible client from config
func DefaultVision(cfg *config.Config, creds domain.CredentialProvider, logger *zap.Logger) (usecase.TypeClassifier, usecase.ProductExtractor) {
	v := app.NewVision(cfg, creds, logger)
	return v.Classifier, v.Extractor
}

type rootOptions struct {
	apiKey  string
	verbose bool
	noColor bool
	vision  VisionFactory
}

// NewRootCmd builds the shelfscan command tree. A nil factory means DefaultVision.
func NewRootCmd(version string, vision VisionFactory) *cobra.Command {
	if vision == nil {
		vision = DefaultVision
	}
	opts := &rootOptions{vision: vision}

	root := &cobra.Command{
		Use:   "shelfscan",
		Short: "ShelfScan - identify grocery products in shelf photos",
		Long: `ShelfScan sends a shelf photo to a vision model, lists the distinct
products it can see and exports them as CSV or XLSX.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(opts.noColor)
		},
	}

	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "vision API key (defaults to SHELFSCAN_VISION_API_KEY or OPENAI_API_KEY)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newScanCmd(opts), newDetectCmd(opts))
	return root
}

// setup loads config and builds the classifier and extractor for one run
func (o *rootOptions) setup() (usecase.TypeClassifier, usecase.ProductExtractor, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, "development")
	if err != nil {
		return nil, nil, nil, err
	}

	creds := credentials.Chain{credentials.Static(o.apiKey), credentials.Static(cfg.Vision.APIKey)}
	classifier, extractor := o.vision(cfg, creds, logger)
	return classifier, extractor, logger, nil
}
