package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"atsresume/internal/config"
)

var convertCmd = &cobra.Command{
	Use:   "convert [resume-file]",
	Short: "Convert a résumé into a plain single column PDF",
	Long: `Convert a résumé into an ATS-friendly PDF without rewriting it: the
text is cleaned, multi-column layouts are linearized and section headings
are normalized. The output is named <original>_ATS_Friendly.pdf.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var convertOutFile string

func init() {
	convertCmd.Flags().StringVarP(&convertOutFile, "out", "o", "", "Output path (default: <original>_ATS_Friendly.pdf)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, config.FeaturesConfig{})
	if err != nil {
		return err
	}

	text, err := env.files.Files.ReadResume(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	env.logger.Info("Converting résumé", "file", args[0], "chars", len(text))
	pdf, name, err := env.pipeline.Convert(cmd.Context(), text, filepath.Base(args[0]))
	if err != nil {
		return err
	}
	return env.files.Output.WriteDocument(documentPath(convertOutFile, name), pdf)
}
