package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalReader serves locations from a directory tree: the bucket is a
// directory below root and the key a path inside it.
type LocalReader struct {
	root string
}

// NewLocalReader creates a reader rooted at dir.
func NewLocalReader(dir string) (*LocalReader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: local storage requires a root directory", ErrInvalidConfig)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	return &LocalReader{root: abs}, nil
}

// ReadText implements Reader.
func (r *LocalReader) ReadText(ctx context.Context, loc Location) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: read %s", ErrOperationCanceled, loc)
	}

	path, err := r.resolve(loc)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is confined to the storage root
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if _, statErr := os.Stat(filepath.Join(r.root, loc.Bucket)); errors.Is(statErr, fs.ErrNotExist) {
				return "", fmt.Errorf("%w: %s", ErrBucketNotFound, loc.Bucket)
			}
			return "", fmt.Errorf("%w: %s", ErrObjectNotFound, loc)
		case errors.Is(err, fs.ErrPermission):
			return "", fmt.Errorf("%w: %s", ErrAccessDenied, loc)
		default:
			return "", fmt.Errorf("failed to read %s: %w", loc, err)
		}
	}
	return string(data), nil
}

// resolve maps a location to a file path, refusing keys that escape the root.
func (r *LocalReader) resolve(loc Location) (string, error) {
	if loc.Bucket == "" || loc.Key == "" {
		return "", fmt.Errorf("%w: %s", ErrObjectNotFound, loc)
	}
	path := filepath.Join(r.root, loc.Bucket, filepath.FromSlash(loc.Key))
	if path != r.root && !strings.HasPrefix(path, r.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes storage root", ErrInvalidRoute, loc)
	}
	return path, nil
}
