package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStorage() (*LocalStorage, afero.Fs) {
	fsys := afero.NewMemMapFs()
	return NewLocalStorageFs(fsys), fsys
}

func TestLocal_SaveReadList(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemStorage()

	require.NoError(t, s.Save(ctx, 1, "report.csv", strings.NewReader("a,b\n1,2\n")))
	require.NoError(t, s.Save(ctx, 1, "report_analysis.txt", strings.NewReader("ok")))
	require.NoError(t, s.Save(ctx, 2, "other.csv", strings.NewReader("x")))

	b, err := s.Read(ctx, 1, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))

	names, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.csv", "report_analysis.txt"}, names)

	names, err = s.List(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"other.csv"}, names)
}

func TestLocal_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newMemStorage()

	require.NoError(t, s.Save(ctx, 1, "f.txt", strings.NewReader("first, longer content")))
	require.NoError(t, s.Save(ctx, 1, "f.txt", strings.NewReader("second")))

	b, err := s.Read(ctx, 1, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
}

func TestLocal_ReadMissing(t *testing.T) {
	s, _ := newMemStorage()

	_, err := s.Read(context.Background(), 1, "nope.txt")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLocal_ListAbsentNamespace(t *testing.T) {
	s, _ := newMemStorage()

	names, err := s.List(context.Background(), 77)
	require.NoError(t, err)
	assert.NotNil(t, names)
	assert.Empty(t, names)
}

func TestLocal_RejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s, fsys := newMemStorage()

	for _, p := range []string{"../2/evil.txt", "/etc/passwd", "", "a/../../x"} {
		err := s.Save(ctx, 1, p, strings.NewReader("x"))
		assert.ErrorIs(t, err, common.ErrorInvalidInput, p)

		_, err = s.Read(ctx, 1, p)
		assert.ErrorIs(t, err, common.ErrorInvalidInput, p)
	}

	exists, err := afero.DirExists(fsys, "/2")
	require.NoError(t, err)
	assert.False(t, exists)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("client went away") }

func TestLocal_FailedWriteLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	s, fsys := newMemStorage()

	err := s.Save(ctx, 1, "broken.csv", failingReader{})
	require.Error(t, err)

	names, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, names)

	entries, err := afero.ReadDir(fsys, "/1")
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}

func TestLocal_ListSkipsDirectoriesAndTempFiles(t *testing.T) {
	ctx := context.Background()
	s, fsys := newMemStorage()

	require.NoError(t, fsys.MkdirAll("/1/nested", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/1/.tmp-abc", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/1/b.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/1/a.txt", []byte("x"), 0o644))

	names, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)
}

func TestLocal_SaveRejectsTempPrefix(t *testing.T) {
	ctx := context.Background()
	s, fsys := newMemStorage()

	err := s.Save(ctx, 1, common.TempFilePrefix+"report.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrorInvalidInput)

	exists, err := afero.DirExists(fsys, "/1")
	require.NoError(t, err)
	assert.False(t, exists, "rejected save must not create the namespace")
}

func TestLocal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, _ := newMemStorage()

	assert.ErrorIs(t, s.Save(ctx, 1, "a.txt", strings.NewReader("x")), context.Canceled)
}

func TestNewLocalStorage_OnDisk(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	require.NoError(t, s.Save(ctx, 3, "disk.txt", strings.NewReader("on disk")))
	b, err := s.Read(ctx, 3, "disk.txt")
	require.NoError(t, err)
	assert.Equal(t, "on disk", string(b))
}
