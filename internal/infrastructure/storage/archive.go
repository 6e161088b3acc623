// Package storage archives exported reports on local disk.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/report"
)

// DiskArchive writes each report to <dir>/<file name>, replacing the previous
// copy. Files are written to a temp file first and renamed into place, so a
// reader never sees a half-written report.
type DiskArchive struct {
	dir string
}

// NewDiskArchive creates dir if needed.
func NewDiskArchive(dir string) (*DiskArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &DiskArchive{dir: dir}, nil
}

func (a *DiskArchive) Store(ctx context.Context, file *report.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(a.dir, "."+file.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("archive %s: %w: %w", file.Name, domain.ErrStorage, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(file.Data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("archive %s: %w: %w", file.Name, domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("archive %s: %w: %w", file.Name, domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, filepath.Join(a.dir, file.Name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("archive %s: %w: %w", file.Name, domain.ErrStorage, err)
	}
	return nil
}
