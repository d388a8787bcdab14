package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"atsresume/internal/errors"
	"atsresume/internal/extract"
)

const (
	resumeField         = "resume"
	jobDescriptionField = "jobDescription"
)

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// upload is a résumé document read from a multipart form
type upload struct {
	filename       string
	text           string
	jobDescription string
}

// readUpload parses the multipart form, checks the fields and the file type,
// then extracts the document text. Every check runs before extraction.
func (s *Server) readUpload(ctx context.Context, r *http.Request, requireJob bool) (*upload, error) {
	if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
		if isTooLarge(err) {
			return nil, s.fileTooLarge()
		}
		if stderrors.Is(err, http.ErrNotMultipart) || stderrors.Is(err, http.ErrMissingBoundary) {
			return nil, missingParameter(resumeField, "Please upload a resume file.")
		}
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Invalid multipart request", err)
	}
	defer func() {
		if r.MultipartForm != nil {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				requestLogger(ctx, s.Logger).Warn("Failed to remove multipart temp files", "error", err)
			}
		}
	}()

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		return nil, missingParameter(resumeField, "Please upload a resume file.")
	}
	defer func() {
		if err := file.Close(); err != nil {
			requestLogger(ctx, s.Logger).Warn("Failed to close uploaded file", "error", err)
		}
	}()

	jobDescription := r.FormValue(jobDescriptionField)
	if requireJob && strings.TrimSpace(jobDescription) == "" {
		return nil, missingParameter(jobDescriptionField, "")
	}

	if header.Size > s.MaxUploadSize {
		return nil, s.fileTooLarge()
	}
	if !extract.Supported(header.Filename) {
		return nil, errors.NewValidationError(extract.ErrUnsupportedFileType.Code, extract.ErrUnsupportedFileType.Message, nil)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read uploaded file", err)
	}

	text, err := s.Pipeline.ExtractText(ctx, data, header.Filename)
	if err != nil {
		return nil, err
	}

	return &upload{
		filename:       header.Filename,
		text:           text,
		jobDescription: jobDescription,
	}, nil
}

func (s *Server) fileTooLarge() error {
	limit := fmt.Sprintf("%d bytes", s.MaxUploadSize)
	if s.MaxUploadSize%(1<<20) == 0 {
		limit = fmt.Sprintf("%dMB", s.MaxUploadSize>>20)
	}
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		"File size exceeds the maximum allowed limit of "+limit+".", nil)
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return stderrors.As(err, &maxBytesErr) || stderrors.Is(err, http.ErrMessageTooLarge)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Content-Type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("Request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Failed to read request body", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Failed to parse JSON: "+err.Error(), err)
	}
	return nil
}

// writeJSONResponse writes v as JSON with the given status
func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes the standard error envelope
func writeErrorResponse(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSONResponse(w, statusCode, ErrorResponse{
		Success: false,
		Error:   ErrorBody{Code: code, Message: message},
	})
}

// writePDFResponse sends pdf as a download named filename
func writePDFResponse(w http.ResponseWriter, pdf []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, quoteEscaper.Replace(filename)))
	w.Header().Set("Content-Length", fmt.Sprint(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Printf("Failed to write PDF response: %v", err)
	}
}
