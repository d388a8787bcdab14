package extract

import (
	"archive/zip"
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/errors"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Asha Rao</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">SKILLS</w:t></w:r></w:p>
    <w:p><w:r><w:t>Languages:</w:t></w:r><w:r><w:tab/><w:t>Go, </w:t><w:t>Python</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	text, err := New(nil).Extract(context.Background(), data, "Resume.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao\nSKILLS\nLanguages:\tGo, Python\n\nLine one\nLine two", text)
}

func TestExtractRejectsUnsupportedTypes(t *testing.T) {
	e := New(nil)

	for _, name := range []string{"resume.txt", "resume.doc", "resume", "photo.png"} {
		t.Run(name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), []byte("data"), name)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, ErrUnsupportedFileType))

			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
		})
	}
	assert.Nil(t, ErrUnsupportedFileType.Context)
}

func TestExtractMissingFilename(t *testing.T) {
	_, err := New(nil).Extract(context.Background(), []byte("data"), " ")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeMissingParameter, appErr.Code)
}

func TestExtractCorruptDocuments(t *testing.T) {
	e := New(nil)

	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{name: "pdf garbage", data: []byte("definitely not a pdf"), filename: "cv.pdf"},
		{name: "empty pdf", data: nil, filename: "cv.pdf"},
		{name: "docx garbage", data: []byte("PK not really"), filename: "cv.docx"},
		{name: "docx without body", data: buildDocx(t, map[string]string{"word/styles.xml": "<x/>"}), filename: "cv.docx"},
		{name: "docx broken xml", data: buildDocx(t, map[string]string{"word/document.xml": "<w:p><w:t>open"}), filename: "cv.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Extract(context.Background(), tt.data, tt.filename)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeProcessingError, appErr.Code)
		})
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Extract(ctx, []byte("x"), "cv.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.pdf"))
	assert.True(t, Supported("A.PDF"))
	assert.True(t, Supported("b.docx"))
	assert.False(t, Supported("b.doc"))
}
