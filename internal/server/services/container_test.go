package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, e *env, email string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), email, "pw")
	require.NoError(t, err)
	return u
}

func TestUpload_StoresThenRecords(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")

	c, err := e.containers.Upload(ctx, alice, "report.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.UserID)
	assert.Equal(t, "report.csv", c.FilePath)
	assert.NotEmpty(t, c.ContentType)

	b, err := e.store.Read(ctx, alice.ID, "report.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))

	list, err := e.containers.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)
}

func TestUpload_DetectsContentType(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	c, err := e.containers.Upload(ctx, alice, "pic.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "image/png", c.ContentType)

	stored, err := e.store.Read(ctx, alice.ID, "pic.png")
	require.NoError(t, err)
	assert.Equal(t, png, stored, "sniffed bytes must still be written")
}

func TestUpload_LargerThanSniffWindow(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")

	data := strings.Repeat("x", sniffLen*3+7)
	_, err := e.containers.Upload(ctx, alice, "big.txt", strings.NewReader(data))
	require.NoError(t, err)

	stored, err := e.store.Read(ctx, alice.ID, "big.txt")
	require.NoError(t, err)
	assert.Equal(t, len(data), len(stored))
}

func TestUpload_SanitizesName(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")

	c, err := e.containers.Upload(ctx, alice, `..\..\etc\report.csv`, strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "report.csv", c.FilePath)

	_, err = e.containers.Upload(ctx, alice, "..", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
	_, err = e.containers.Upload(ctx, alice, "", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

type brokenReader struct{ after int }

func (b *brokenReader) Read(p []byte) (int, error) {
	if b.after <= 0 {
		return 0, errors.New("connection reset")
	}
	n := copy(p, bytes.Repeat([]byte("y"), b.after))
	b.after -= n
	return n, nil
}

func TestUpload_StorageFailureCreatesNoContainer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")

	_, err := e.containers.Upload(ctx, alice, "r.csv", io.MultiReader(strings.NewReader(strings.Repeat("z", sniffLen)), &brokenReader{}))
	require.Error(t, err)

	list, err := e.containers.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAuthorizeAccess_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	c := &models.Container{ID: 1, UserID: 10}

	assert.NoError(t, e.containers.AuthorizeAccess(c, &models.User{ID: 10}))
	assert.ErrorIs(t, e.containers.AuthorizeAccess(c, &models.User{ID: 11}), common.ErrorForbidden)
	assert.ErrorIs(t, e.containers.AuthorizeAccess(c, &models.User{ID: 11, IsAdmin: true}), common.ErrorForbidden,
		"admins get no bypass")
	assert.ErrorIs(t, e.containers.AuthorizeAccess(c, nil), common.ErrorForbidden)
}

func TestDownloadResult(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := register(t, e, "alice@example.com")
	bob := register(t, e, "bob@example.com")

	c, err := e.containers.Upload(ctx, alice, "report.csv", strings.NewReader("a,b"))
	require.NoError(t, err)

	_, _, err = e.containers.DownloadResult(ctx, alice, c.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound, "no artifact yet")

	require.NoError(t, e.store.Save(ctx, alice.ID, "report_analysis.txt", strings.NewReader("rows: 1\n")))

	name, content, err := e.containers.DownloadResult(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "report_analysis.txt", name)
	assert.Equal(t, "rows: 1\n", string(content))

	_, _, err = e.containers.DownloadResult(ctx, bob, c.ID)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	_, _, err = e.containers.DownloadResult(ctx, alice, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreateContainer_UnknownOwner(t *testing.T) {
	svc := NewContainerService(nil, memory.NewRepositoryManager(), newEnv(t).store, logging.NewDiscardLogger())

	_, err := svc.CreateContainer(context.Background(), &models.Container{UserID: 5, FilePath: "x"}, 0)
	assert.Error(t, err)
}
