package export

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o640
)

// Sharer hands a written export file to something outside the application.
type Sharer interface {
	// Name identifies the share target in logs
	Name() string
	// Available reports whether Share can be used right now
	Available() bool
	Share(ctx context.Context, fs afero.Fs, path string) error
}

// DirectorySharer shares files by copying them into a directory, such as a
// synced folder or a mounted removable drive.
type DirectorySharer struct {
	Fs  afero.Fs
	Dir string
}

// NewDirectorySharer creates a sharer copying into dir on fs.
func NewDirectorySharer(fs afero.Fs, dir string) *DirectorySharer {
	return &DirectorySharer{Fs: fs, Dir: dir}
}

func (s *DirectorySharer) Name() string {
	return "directory"
}

// Available reports whether the share directory exists or can be created.
func (s *DirectorySharer) Available() bool {
	if s == nil || s.Fs == nil || s.Dir == "" {
		return false
	}
	if err := s.Fs.MkdirAll(s.Dir, dirPermissions); err != nil {
		GetLogger().Debug("share directory unavailable",
			logger.String("dir", s.Dir),
			logger.Error(err))
		return false
	}
	info, err := s.Fs.Stat(s.Dir)
	return err == nil && info.IsDir()
}

// Share copies path from src into the share directory, replacing any file
// with the same name. The copy goes through a temporary file and a rename.
func (s *DirectorySharer) Share(ctx context.Context, src afero.Fs, path string) error {
	if err := ctx.Err(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryExport).
			Context("operation", "share").
			Build()
	}

	srcFile, err := src.Open(path)
	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "open_export").
			FileContext(path).
			Build()
	}
	defer func() {
		if cerr := srcFile.Close(); cerr != nil {
			GetLogger().Warn("failed to close export file", logger.Error(cerr))
		}
	}()

	dst := filepath.Join(s.Dir, filepath.Base(path))
	return atomicWriteFile(s.Fs, dst, func(w io.Writer) error {
		_, err := io.Copy(w, srcFile)
		return err
	})
}

// atomicWriteFile writes to a temporary file next to target, then renames it.
func atomicWriteFile(fs afero.Fs, target string, write func(io.Writer) error) error {
	dir := filepath.Dir(target)
	if err := fs.MkdirAll(dir, dirPermissions); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "create_directory").
			Context("dir", dir).
			Build()
	}

	tempFile, err := afero.TempFile(fs, dir, "export-*.tmp")
	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "create_temp_file").
			Context("dir", dir).
			Build()
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = tempFile.Close()
			_ = fs.Remove(tempPath)
		}
	}()

	if err := write(tempFile); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "write_temp_file").
			FileContext(target).
			Build()
	}
	if err := tempFile.Sync(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "sync_temp_file").
			FileContext(target).
			Build()
	}
	if err := tempFile.Close(); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "close_temp_file").
			FileContext(target).
			Build()
	}
	if err := fs.Chmod(tempPath, os.FileMode(filePermissions)); err != nil {
		GetLogger().Debug("failed to set export file permissions",
			logger.String("path", tempPath),
			logger.Error(err))
	}
	if err := fs.Rename(tempPath, target); err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("operation", "rename_temp_file").
			FileContext(target).
			Build()
	}

	success = true
	return nil
}
