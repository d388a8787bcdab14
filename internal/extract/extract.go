// Package extract turns uploaded résumé documents into plain text
package extract

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"atsresume/internal/errors"
	"atsresume/internal/utils"
)

// ErrUnsupportedFileType is returned for any document that is not PDF or DOCX.
// It is a client error.
var ErrUnsupportedFileType = errors.NewValidationError(errors.ErrCodeInvalidFileType,
	"Unsupported file type. Only PDF and DOCX files are supported.", nil)

// TextExtractor converts document bytes into plain text, choosing the parser
// by filename suffix
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// Supported reports whether filename has an extension Extract can handle
func Supported(filename string) bool {
	switch utils.GetFileExtension(filename) {
	case ".pdf", ".docx":
		return true
	}
	return false
}

// Extractor reads PDF and DOCX documents
type Extractor struct {
	logger *errors.Logger
}

func New(logger *errors.Logger) *Extractor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Extractor{logger: logger}
}

// Extract returns the document text with one line per visual line or paragraph
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.NewValidationError(errors.ErrCodeMissingParameter, "File name is missing", nil)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		text string
		err  error
	)
	switch ext := utils.GetFileExtension(filename); ext {
	case ".pdf":
		text, err = e.pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		// the sentinel is shared, so context goes on a copy
		return "", errors.NewValidationError(ErrUnsupportedFileType.Code, ErrUnsupportedFileType.Message, nil).
			WithContext("extension", ext)
	}
	if err != nil {
		return "", errors.NewProcessingError(errors.ErrCodeProcessingError,
			fmt.Sprintf("Failed to read %s: %v", filename, err), err)
	}

	e.logger.Info("Extracted resume text",
		"file", filename,
		"size", utils.FormatFileSize(int64(len(data))),
		"chars", len(text))
	return text, nil
}

// pdfText reads page rows top to bottom. The PDF library panics on some
// malformed inputs, so a panic becomes an error.
func (e *Extractor) pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.Warn("Skipping unreadable PDF page", "page", i, "error", err)
			continue
		}
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Position > rows[b].Position })
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			b.WriteString(strings.TrimRight(line.String(), " "))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}
