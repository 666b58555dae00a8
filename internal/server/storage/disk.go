package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/placekeeper/placekeeper/internal/filex"
)

// PublicPathPrefix is the URL prefix uploaded photos are served under when
// the disk backend is active.
const PublicPathPrefix = "/uploads/"

// DiskStore keeps photos as plain files in a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore ensures dir exists and returns a store rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &DiskStore{dir: abs}, nil
}

// Dir returns the absolute directory photos are stored in. The HTTP layer
// serves it statically under PublicPathPrefix.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(ctx context.Context, name string, contentType string, r io.Reader) error {
	if err := validateName(name); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}

	return f.Close()
}

func (s *DiskStore) URL(ctx context.Context, name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return PublicPathPrefix + name, nil
}

// validateName rejects anything that could escape the uploads directory.
func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid photo name %q", name)
	}
	return nil
}
