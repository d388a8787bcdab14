package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"atsresume/internal/ai"
	"atsresume/internal/common"
	"atsresume/internal/config"
	"atsresume/internal/errors"
	"atsresume/internal/library"
	"atsresume/internal/observability"
	"atsresume/internal/pipeline"
)

// commandEnv is what every file based command needs
type commandEnv struct {
	cfg      *config.Config
	logger   *errors.Logger
	pipeline *pipeline.Pipeline
	files    *common.FileCommand
}

// newCommandEnv builds a pipeline for features. The generator is only
// created, and the API key only required, when a feature needs it.
func newCommandEnv(cmd *cobra.Command, features config.FeaturesConfig) (*commandEnv, error) {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}

	p, err := newPipeline(cmd.Context(), cfg, features, nil, logger)
	if err != nil {
		return nil, err
	}

	return &commandEnv{
		cfg:      cfg,
		logger:   logger,
		pipeline: p,
		files: &common.FileCommand{
			Files:  common.NewFileProcessor(p, cfg.App.MaxFileSize, logger),
			Output: common.NewOutputHandlerWithWriter(cmd.OutOrStdout(), logger),
			Logger: logger,
		},
	}, nil
}

func newPipeline(ctx context.Context, cfg *config.Config, features config.FeaturesConfig, metrics *observability.Metrics, logger *errors.Logger) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{pipeline.WithMetrics(metrics)}

	if features.AnyAI() {
		if err := cfg.RequireGeminiKey(); err != nil {
			return nil, err
		}
		gen, err := ai.NewGeminiGenerator(ctx, cfg.Gemini, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini generator: %w", err)
		}
		lib, err := library.Default()
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithAI(ai.NewService(gen, cfg.Prompts, lib, logger), features))
		logger.Debug("Generator enabled",
			"model", cfg.Gemini.Model,
			"polish", features.AIPolish,
			"cover_letter", features.AICoverLetter,
			"analysis", features.AIAnalysis)
	}

	p, err := pipeline.Default(logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load résumé data: %w", err)
	}
	return p, nil
}

// outputConfig resolves --format against the configured formats
func outputConfig(cfg *config.Config, outputFile, format string) (common.CommandConfig, error) {
	resolved, err := common.ResolveOutputFormat(format, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return common.CommandConfig{}, err
	}
	return common.CommandConfig{OutputFile: outputFile, OutputFormat: resolved}, nil
}

func registerFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "format", "", "Output format: json, text, or markdown (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func requireJobDescription(in common.Inputs) error {
	if strings.TrimSpace(in.JobDescription) == "" {
		return errors.NewValidationError(errors.ErrCodeMissingParameter,
			"a non-empty job description is required (--job)", nil)
	}
	return nil
}

// documentPath is out when given, else name in the working directory. An
// out that is an existing directory or ends in a separator gets name appended.
func documentPath(out, name string) string {
	if out == "" {
		return name
	}
	if strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, name)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, name)
	}
	return out
}
