package blob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FSStore stores objects as files under a root directory. Object paths use
// forward slashes regardless of platform.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns the store.
func NewFSStore(root string) (*FSStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: abs}, nil
}

func (s *FSStore) filePath(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) Read(_ context.Context, path string) ([]byte, error) {
	fp, err := s.filePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fp)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotExist)
	}
	return data, err
}

// Write stores data at path. The content type is accepted for interface
// parity with bucket-backed stores; the filesystem has nowhere to keep it.
func (s *FSStore) Write(_ context.Context, path string, data []byte, _ string) error {
	fp, err := s.filePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return os.Rename(tmp, fp)
}

// List returns every object path under prefix, sorted.
func (s *FSStore) List(_ context.Context, prefix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		obj := filepath.ToSlash(rel)
		if strings.HasPrefix(obj, prefix) && !strings.HasSuffix(obj, ".tmp") {
			out = append(out, obj)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Strings(out)
	return out, nil
}

func (s *FSStore) Exists(_ context.Context, path string) (bool, error) {
	fp, err := s.filePath(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(fp); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *FSStore) Copy(ctx context.Context, src, dst string) error {
	data, err := s.Read(ctx, src)
	if err != nil {
		return err
	}
	return s.Write(ctx, dst, data, "")
}
