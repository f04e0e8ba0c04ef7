package gallery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrBlobNotFound = errors.New("gallery asset not found")

// BlobStore resolves painting and face-crop references to image bytes.
type BlobStore interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

// DirBlobStore serves references relative to a root directory.
type DirBlobStore struct {
	root string
}

var _ BlobStore = (*DirBlobStore)(nil)

func NewDirBlobStore(root string) (*DirBlobStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve gallery dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat gallery dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("gallery dir %s is not a directory", abs)
	}
	return &DirBlobStore{root: abs}, nil
}

func (s *DirBlobStore) Read(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

// Exists reports whether ref resolves to a readable file.
func (s *DirBlobStore) Exists(ref string) bool {
	path, err := s.resolve(ref)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (s *DirBlobStore) resolve(ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) {
		return "", fmt.Errorf("%w: invalid reference %q", ErrBlobNotFound, ref)
	}
	path := filepath.Join(s.root, filepath.Clean(ref))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: reference %q escapes gallery dir", ErrBlobNotFound, ref)
	}
	return path, nil
}
