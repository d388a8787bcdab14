package common

import (
	"context"
	"fmt"
	"io"
	"os"

	"atsresume/internal/errors"
	"atsresume/internal/utils"
)

// TextExtractor turns an uploaded document into plain text
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, error)
}

// FileProcessor handles common file operations
type FileProcessor struct {
	extractor TextExtractor
	maxSize   int64
	logger    *errors.Logger
}

// NewFileProcessor creates a new file processor instance. extractor may be nil
// when only text inputs are read. maxSize of zero means no limit.
func NewFileProcessor(extractor TextExtractor, maxSize int64, logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{extractor: extractor, maxSize: maxSize, logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// ReadResume returns the résumé text in filename. PDF and DOCX files go
// through the extractor, anything else is read as text.
func (fp *FileProcessor) ReadResume(ctx context.Context, filename string) (string, error) {
	if err := fp.validate(filename); err != nil {
		return "", err
	}

	data, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}

	if !utils.IsDocumentFile(filename) {
		if !utils.IsTextFile(filename) {
			fp.logger.Warn("File may not be a text file", "filename", filename)
		}
		return string(data), nil
	}

	if fp.extractor == nil {
		return "", errors.NewInternalError(errors.ErrCodeInternalError,
			"no document extractor configured", nil)
	}
	return fp.extractor.ExtractText(ctx, data, filename)
}

// ReadText validates and reads a plain text input such as a job description
func (fp *FileProcessor) ReadText(filename string) (string, error) {
	if err := fp.validate(filename); err != nil {
		return "", err
	}
	if !utils.IsTextFile(filename) {
		fp.logger.Warn("File may not be a text file", "filename", filename)
	}

	data, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFile writes content to a file, creating the directory if needed
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	if err := fp.ValidateOutputFile(filename); err != nil {
		return err
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.EnsureOutputDir(filename); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

func (fp *FileProcessor) validate(filename string) error {
	if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("Invalid file %s", filename), err)
	}
	return nil
}
