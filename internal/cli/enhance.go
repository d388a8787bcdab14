package cli

import (
	"github.com/spf13/cobra"

	"atsresume/internal/common"
	"atsresume/internal/config"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume-file]",
	Short: "Rewrite a résumé for a job description and render it as a PDF",
	Long: `Rewrite a résumé for a job description: an ATS-safe summary, skills
grouped by category with the job's keywords first, bullets that start with
action verbs, and sections ordered for the candidate's level. The result is
rendered as a single column PDF named after the candidate.

With --json the rewritten résumé model is printed instead of rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnhance,
}

var enhanceOptions struct {
	jobFile  string
	outFile  string
	asJSON   bool
	aiPolish bool
}

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceOptions.jobFile, "job", "j", "", "Job description file (required)")
	enhanceCmd.Flags().StringVarP(&enhanceOptions.outFile, "out", "o", "", "Output path (default: <Name>_Enhanced_Resume.pdf)")
	enhanceCmd.Flags().BoolVar(&enhanceOptions.asJSON, "json", false, "Print the rewritten résumé as JSON instead of a PDF")
	enhanceCmd.Flags().BoolVar(&enhanceOptions.aiPolish, "ai-polish", false, "Polish the rewrite with the generator")
	_ = enhanceCmd.MarkFlagRequired("job")
}

func runEnhance(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, config.FeaturesConfig{AIPolish: enhanceOptions.aiPolish})
	if err != nil {
		return err
	}

	in, err := env.files.LoadInputs(cmd.Context(), args[0], enhanceOptions.jobFile)
	if err != nil {
		return err
	}
	if err := requireJobDescription(in); err != nil {
		return err
	}

	env.logger.Info("Enhancing résumé",
		"file", in.ResumeFile,
		"job_chars", len(in.JobDescription),
		"ai_polish", enhanceOptions.aiPolish)

	if enhanceOptions.asJSON {
		resume := env.pipeline.Rewrite(cmd.Context(), in.ResumeText, in.JobDescription, enhanceOptions.aiPolish)
		return env.files.Output.HandleOutput(resume, common.CommandConfig{
			OutputFile:   enhanceOptions.outFile,
			OutputFormat: "json",
		})
	}

	pdf, name, err := env.pipeline.EnhancePDF(cmd.Context(), in.ResumeText, in.JobDescription)
	if err != nil {
		return err
	}
	return env.files.Output.WriteDocument(documentPath(enhanceOptions.outFile, name), pdf)
}
