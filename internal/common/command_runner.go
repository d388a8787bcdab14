package common

import (
	"context"

	"atsresume/internal/errors"
)

// Inputs is what a file based command reads before running
type Inputs struct {
	ResumeFile     string
	ResumeText     string
	JobDescription string
}

// OperationFunc runs one pipeline operation over the loaded inputs
type OperationFunc[Output any] func(context.Context, Inputs) (Output, error)

// LogDetailsFunc logs the start of an operation
type LogDetailsFunc func(in Inputs, cfg CommandConfig)

// FileCommand bundles the helpers shared by the file based CLI commands
type FileCommand struct {
	Files  *FileProcessor
	Output *OutputHandler
	Logger *errors.Logger
}

// LoadInputs reads the résumé and, when jobFile is set, the job description
func (fc *FileCommand) LoadInputs(ctx context.Context, resumeFile, jobFile string) (Inputs, error) {
	text, err := fc.Files.ReadResume(ctx, resumeFile)
	if err != nil {
		return Inputs{}, err
	}

	in := Inputs{ResumeFile: resumeFile, ResumeText: text}
	if jobFile != "" {
		if in.JobDescription, err = fc.Files.ReadText(jobFile); err != nil {
			return Inputs{}, err
		}
	}
	return in, nil
}

// RunFileCommand loads the inputs, runs op and hands the result to the output handler
func RunFileCommand[Output any](
	ctx context.Context,
	fc *FileCommand,
	cfg CommandConfig,
	resumeFile, jobFile string,
	op OperationFunc[Output],
	logDetails LogDetailsFunc,
) error {
	in, err := fc.LoadInputs(ctx, resumeFile, jobFile)
	if err != nil {
		return err
	}

	if logDetails != nil {
		logDetails(in, cfg)
	}

	result, err := op(ctx, in)
	if err != nil {
		return err
	}

	return fc.Output.HandleOutput(result, cfg)
}
