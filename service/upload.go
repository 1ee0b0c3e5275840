package service

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"cafestaff/apperr"
)

const DefaultMaxLogoBytes = 5 << 20

var (
	allowedLogoExts  = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	allowedLogoMIMEs = []string{"image/jpeg", "image/png"}
)

// Upload is an incoming file as handed over by the transport layer.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type preparedUpload struct {
	filename string
	data     []byte
}

// prepareLogo checks size, extension and sniffed content of an upload and buffers it
// so nothing is written to the asset store for an invalid file.
func prepareLogo(op string, up *Upload, maxBytes int64) (*preparedUpload, error) {
	if up == nil {
		return nil, nil
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxLogoBytes
	}
	if up.Size > maxBytes {
		return nil, apperr.Validation(op, fmt.Sprintf("file too large (max %dMB)", maxBytes>>20), nil)
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedLogoExts[ext] {
		return nil, apperr.Validation(op, "invalid file type, only JPG/JPEG/PNG allowed", nil)
	}
	if up.Content == nil {
		return nil, apperr.Validation(op, "empty upload", nil)
	}

	data, err := io.ReadAll(io.LimitReader(up.Content, maxBytes+1))
	if err != nil {
		return nil, apperr.Validation(op, "failed to read uploaded file", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperr.Validation(op, fmt.Sprintf("file too large (max %dMB)", maxBytes>>20), nil)
	}
	if len(data) == 0 {
		return nil, apperr.Validation(op, "empty upload", nil)
	}
	if !mimetype.EqualsAny(mimetype.Detect(data).String(), allowedLogoMIMEs...) {
		return nil, apperr.Validation(op, "uploaded file is not a JPG or PNG image", nil)
	}
	return &preparedUpload{filename: up.Filename, data: data}, nil
}

func (p *preparedUpload) reader() io.Reader {
	return bytes.NewReader(p.data)
}
