package cli

import (
	"context"

	"github.com/spf13/cobra"

	"atsresume/internal/common"
	"atsresume/internal/config"
	"atsresume/internal/types"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter [resume-file]",
	Short: "Write a cover letter for a job description",
	Long: `Write a cover letter from the résumé and job description. The
candidate name, target role and company are read from the two documents.

By default the letter comes from a template. With --ai the generator writes
it, and the template letter is used if the generator fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverLetter,
}

var coverLetterOptions struct {
	output  common.CommandConfig
	jobFile string
	useAI   bool
}

func init() {
	coverLetterCmd.Flags().StringVarP(&coverLetterOptions.jobFile, "job", "j", "", "Job description file (required)")
	coverLetterCmd.Flags().StringVarP(&coverLetterOptions.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	coverLetterCmd.Flags().BoolVar(&coverLetterOptions.useAI, "ai", false, "Let the generator write the letter")
	registerFormatFlag(coverLetterCmd, &coverLetterOptions.output.OutputFormat)
	_ = coverLetterCmd.MarkFlagRequired("job")
}

func runCoverLetter(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, config.FeaturesConfig{AICoverLetter: coverLetterOptions.useAI})
	if err != nil {
		return err
	}
	out, err := outputConfig(env.cfg, coverLetterOptions.output.OutputFile, coverLetterOptions.output.OutputFormat)
	if err != nil {
		return err
	}

	return common.RunFileCommand(cmd.Context(), env.files, out, args[0], coverLetterOptions.jobFile,
		func(ctx context.Context, in common.Inputs) (types.CoverLetter, error) {
			if err := requireJobDescription(in); err != nil {
				return types.CoverLetter{}, err
			}
			return env.pipeline.CoverLetter(ctx, in.ResumeText, in.JobDescription, coverLetterOptions.useAI), nil
		},
		func(in common.Inputs, cfg common.CommandConfig) {
			env.logger.Info("Writing cover letter",
				"file", in.ResumeFile,
				"ai", coverLetterOptions.useAI,
				"output_format", cfg.OutputFormat)
		})
}
