package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// limitUpload caps the request body before multipart parsing.
func limitUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
}

func uploadError(field string, err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return newValidationError(field, "file_too_large", "upload exceeds the size limit")
	}
	return newValidationError(field, "invalid_file", "a file is required")
}

func uploadContentType(fh *multipart.FileHeader) string {
	contentType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
