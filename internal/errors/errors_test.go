package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	plain := NewValidationError(ErrCodeMissingParameter, "Required parameter 'resume' is missing.", nil)
	assert.Equal(t, "MISSING_PARAMETER: Required parameter 'resume' is missing.", plain.Error())

	cause := fmt.Errorf("boom")
	wrapped := NewProcessingError(ErrCodeProcessingError, "extraction failed", cause)
	assert.Contains(t, wrapped.Error(), "caused by: boom")
	assert.ErrorIs(t, wrapped, cause)
}

func TestAppErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("upload: %w", NewValidationError(ErrCodeFileTooLarge, "too big", nil))

	assert.True(t, stderrors.Is(err, &AppError{Code: ErrCodeFileTooLarge}))
	assert.False(t, stderrors.Is(err, &AppError{Code: ErrCodeInvalidFileType}))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
}

func TestLogErrorExpandsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, slog.LevelDebug)

	err := NewIOError(ErrCodeFileNotReadable, "cannot read", nil).WithContext("file", "cv.pdf")
	logger.LogError(err, "read failed", "attempt", 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "read failed", record["msg"])
	assert.Equal(t, "io", record["error_type"])
	assert.Equal(t, ErrCodeFileNotReadable, record["error_code"])
	assert.Equal(t, "cv.pdf", record["file"])
	assert.EqualValues(t, 1, record["attempt"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose")
	assert.Error(t, err)

	logger, err := New("WARN")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
