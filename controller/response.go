package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cafestaff/apperr"
	"cafestaff/logger"
	"cafestaff/service"
)

func respondError(c *gin.Context, log *logger.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "path", c.FullPath(), "kind", kind, "error", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"kind":    kind,
		"error":   apperr.Message(err),
	})
}

func warningBody(w *apperr.Error) gin.H {
	return gin.H{"kind": w.Kind, "error": w.Error()}
}

// formUpload returns the first file present under one of fields, or nil when the
// request carries none. The returned func closes the file.
func formUpload(c *gin.Context, fields ...string) (*service.Upload, func(), error) {
	for _, field := range fields {
		fh, err := c.FormFile(field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
				continue
			}
			return nil, func() {}, apperr.Validation("upload", "failed to get uploaded file", err)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, func() {}, apperr.Validation("upload", "failed to open uploaded file", err)
		}
		return &service.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}, func() { _ = f.Close() }, nil
	}
	return nil, func() {}, nil
}
