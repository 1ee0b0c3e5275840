package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Fetch and Delete when the referenced asset is absent.
var ErrNotFound = errors.New("asset not found")

// AssetStore keeps binary assets (cafe logos) outside the entity store. Refs are
// opaque flat names produced by Store.
type AssetStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
	Fetch(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// NewRef builds a random object name keeping the lowercased extension of filename.
func NewRef(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}

func checkRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) {
		return fmt.Errorf("invalid asset ref %q: %w", ref, ErrNotFound)
	}
	return nil
}
