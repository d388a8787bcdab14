package cli

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"atsresume/internal/common"
	"atsresume/internal/config"
	"atsresume/internal/types"
	"atsresume/internal/utils"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]...",
	Short: "Compute the ATS score of a résumé",
	Long: `Score a résumé on keyword match, formatting and section completeness.

Without --job the keyword axis is scored against the skills the résumé
itself mentions. With --batch every argument may be a file, a directory or a
glob, and the files are scored concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

var scoreOptions struct {
	output  common.CommandConfig
	jobFile string
	batch   bool
	workers int
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreOptions.jobFile, "job", "j", "", "Job description file")
	scoreCmd.Flags().StringVarP(&scoreOptions.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	scoreCmd.Flags().BoolVar(&scoreOptions.batch, "batch", false, "Score many résumés against the same job description")
	scoreCmd.Flags().IntVar(&scoreOptions.workers, "workers", runtime.NumCPU(), "Concurrent files in batch mode")
	registerFormatFlag(scoreCmd, &scoreOptions.output.OutputFormat)
}

func runScore(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, config.FeaturesConfig{})
	if err != nil {
		return err
	}
	out, err := outputConfig(env.cfg, scoreOptions.output.OutputFile, scoreOptions.output.OutputFormat)
	if err != nil {
		return err
	}

	if !scoreOptions.batch {
		if len(args) != 1 {
			return fmt.Errorf("expected 1 résumé file, got %d (use --batch for more)", len(args))
		}
		return common.RunFileCommand(cmd.Context(), env.files, out, args[0], scoreOptions.jobFile,
			func(ctx context.Context, in common.Inputs) (*types.ScoreReport, error) {
				return env.pipeline.Score(ctx, in.ResumeText, in.JobDescription, "cli"), nil
			},
			func(in common.Inputs, cfg common.CommandConfig) {
				env.logger.Info("Scoring résumé",
					"file", in.ResumeFile,
					"job_chars", len(in.JobDescription),
					"output_format", cfg.OutputFormat)
			})
	}

	results, err := scoreBatch(cmd.Context(), env, args, scoreOptions.jobFile, scoreOptions.workers)
	if err != nil {
		return err
	}
	return env.files.Output.HandleOutput(results, out)
}

// scoreBatch scores every résumé matched by patterns. A file that fails is
// reported in its row rather than failing the batch.
func scoreBatch(ctx context.Context, env *commandEnv, patterns []string, jobFile string, workers int) ([]types.BatchScore, error) {
	files, err := utils.ExpandInputs(patterns)
	if err != nil {
		return nil, err
	}

	var jobDescription string
	if jobFile != "" {
		if jobDescription, err = env.files.Files.ReadText(jobFile); err != nil {
			return nil, err
		}
	}

	env.logger.Info("Scoring batch", "files", len(files), "workers", workers)

	results := make([]types.BatchScore, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, file := range files {
		g.Go(func() error {
			results[i].File = file
			text, err := env.files.Files.ReadResume(gctx, file)
			if err != nil {
				env.logger.Warn("Skipping résumé", "file", file, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Report = env.pipeline.Score(gctx, text, jobDescription, "batch")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
