package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// imageSubdir separates product images from anything else that may land in
// the upload directory later.
const imageSubdir = "product_images"

// DiskStore writes image files under <baseDir>/product_images and serves
// them back by URL path. Single-file writes only; no atomicity beyond what
// the filesystem provides.
type DiskStore struct {
	baseDir string

	once    sync.Once
	initErr error
}

func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir}
}

// dir lazily creates the directory structure on first use. MkdirAll is
// idempotent, so concurrent first writes are safe.
func (s *DiskStore) dir() (string, error) {
	path := filepath.Join(s.baseDir, imageSubdir)
	s.once.Do(func() {
		s.initErr = os.MkdirAll(path, 0o755)
	})
	if s.initErr != nil {
		return "", fmt.Errorf("creating image directory: %w", s.initErr)
	}
	return path, nil
}

func (s *DiskStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	dir, err := s.dir()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image file: %w", err)
	}

	return "/uploads/" + imageSubdir + "/" + filename, nil
}

func (s *DiskStore) Delete(_ context.Context, filename string) (bool, error) {
	dir, err := s.dir()
	if err != nil {
		return false, err
	}

	err = os.Remove(filepath.Join(dir, filename))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("removing image file: %w", err)
	}
	return true, nil
}

// FilenameFromURL recovers the stored filename from a recorded URL path.
func FilenameFromURL(url string) string {
	name := filepath.Base(url)
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
