package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/filex"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// LocalStorage keeps namespaces as directories <root>/<ownerID> on an
// afero filesystem.
type LocalStorage struct {
	fs afero.Fs
}

// NewLocalStorage roots the store at dir on the OS filesystem.
func NewLocalStorage(dir string) *LocalStorage {
	return NewLocalStorageFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewLocalStorageFs uses fsys as the storage root.
func NewLocalStorageFs(fsys afero.Fs) *LocalStorage {
	return &LocalStorage{fs: fsys}
}

func namespace(ownerID int64) string {
	return "/" + strconv.FormatInt(ownerID, 10)
}

func (s *LocalStorage) resolve(ownerID int64, relPath string) (string, error) {
	rel, err := filex.CleanRelative(relPath)
	if err != nil {
		return "", err
	}
	return path.Join(namespace(ownerID), rel), nil
}

// Save writes to a temp file next to the target and renames it into place,
// so readers never see a partially written file.
func (s *LocalStorage) Save(ctx context.Context, ownerID int64, relPath string, r io.Reader) error {
	target, err := s.resolve(ownerID, relPath)
	if err != nil {
		return err
	}
	if strings.HasPrefix(path.Base(target), common.TempFilePrefix) {
		return fmt.Errorf("%w: reserved file name %q", common.ErrorInvalidInput, path.Base(target))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := path.Dir(target)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create namespace: %w", err)
	}

	tmp := path.Join(dir, common.TempFilePrefix+uuid.NewString())
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close file: %w", err)
	}

	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Read(ctx context.Context, ownerID int64, relPath string) ([]byte, error) {
	target, err := s.resolve(ownerID, relPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := afero.ReadFile(s.fs, target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}

func (s *LocalStorage) List(ctx context.Context, ownerID int64) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := afero.ReadDir(s.fs, namespace(ownerID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list namespace: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), common.TempFilePrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
