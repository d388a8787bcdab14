package common

import (
	"fmt"
	"slices"

	"atsresume/internal/errors"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveOutputFormat picks the requested format, or defaultFormat when none
// was given, and checks it against supportedFormats
func ResolveOutputFormat(requested, defaultFormat string, supportedFormats []string) (string, error) {
	format := requested
	if format == "" {
		format = defaultFormat
	}
	if format == "" {
		format = "json"
	}

	if err := ValidateOutputFormat(format, supportedFormats); err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), err)
	}
	return format, nil
}
