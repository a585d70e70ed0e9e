package intake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload categories used as storage prefixes.
const (
	CategoryImage  = "images"
	CategoryReport = "reports"
)

// UploadStore persists an uploaded file and returns an opaque reference to
// it. The reference only needs to be meaningful to the estimator and
// extractor boundaries, which key off the filename.
type UploadStore interface {
	Save(ctx context.Context, category, filename string, content []byte) (string, error)
}

// DiskStore writes uploads under a local directory, one subdirectory per
// category. File names get a short unique prefix to avoid collisions.
type DiskStore struct {
	root string
}

// NewDiskStore creates a disk-backed upload store rooted at dir.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{root: dir}
}

// Save implements UploadStore.
func (s *DiskStore) Save(ctx context.Context, category, filename string, content []byte) (string, error) {
	dir := filepath.Join(s.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("intake: create upload dir: %w", err)
	}

	unique := fmt.Sprintf("%s_%s", uuid.New().String()[:6], filepath.Base(filename))
	path := filepath.Join(dir, unique)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("intake: store upload: %w", err)
	}

	return strings.ReplaceAll(path, "\\", "/"), nil
}
