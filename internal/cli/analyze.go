package cli

import (
	"context"

	"github.com/spf13/cobra"

	"atsresume/internal/common"
	"atsresume/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Compare a résumé against a job description",
	Long: `Analyze a résumé against a job description: the ATS score, the
matched and missing keywords, suggestions and the per-section breakdown.

With --ai the generator reviews the résumé instead and returns a score,
a summary, strengths and improvements.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeOptions struct {
	output  common.CommandConfig
	jobFile string
	useAI   bool
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOptions.jobFile, "job", "j", "", "Job description file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOptions.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().BoolVar(&analyzeOptions.useAI, "ai", false, "Ask the generator for a review")
	registerFormatFlag(analyzeCmd, &analyzeOptions.output.OutputFormat)
	_ = analyzeCmd.MarkFlagRequired("job")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, config.FeaturesConfig{AIAnalysis: analyzeOptions.useAI})
	if err != nil {
		return err
	}
	out, err := outputConfig(env.cfg, analyzeOptions.output.OutputFile, analyzeOptions.output.OutputFormat)
	if err != nil {
		return err
	}

	logDetails := func(in common.Inputs, cfg common.CommandConfig) {
		env.logger.Info("Starting résumé analysis",
			"file", in.ResumeFile,
			"job_chars", len(in.JobDescription),
			"ai", analyzeOptions.useAI,
			"output_format", cfg.OutputFormat)
	}

	if analyzeOptions.useAI {
		return common.RunFileCommand(cmd.Context(), env.files, out, args[0], analyzeOptions.jobFile,
			func(ctx context.Context, in common.Inputs) (any, error) {
				if err := requireJobDescription(in); err != nil {
					return nil, err
				}
				return env.pipeline.AIAnalysis(ctx, in.ResumeText, in.JobDescription), nil
			}, logDetails)
	}

	return common.RunFileCommand(cmd.Context(), env.files, out, args[0], analyzeOptions.jobFile,
		func(ctx context.Context, in common.Inputs) (any, error) {
			if err := requireJobDescription(in); err != nil {
				return nil, err
			}
			return env.pipeline.Analyze(ctx, in.ResumeText, in.JobDescription), nil
		}, logDetails)
}
