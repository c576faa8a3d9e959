package services

import (
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/cryptox"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/auth"
	"github.com/dmitrijs2005/containerhub/internal/server/mailer"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/containerhub/internal/server/storage"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	cryptox.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type env struct {
	rm         *memory.RepositoryManager
	fs         afero.Fs
	store      *storage.LocalStorage
	mail       *mailer.LogMailer
	tokens     *auth.Issuer
	users      *UserService
	containers *ContainerService
	admin      *AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := logging.NewDiscardLogger()
	rm := memory.NewRepositoryManager()
	fs := afero.NewMemMapFs()
	st := storage.NewLocalStorageFs(fs)
	ml := mailer.NewLogMailer(log)
	tokens := auth.NewIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	return &env{
		rm:         rm,
		fs:         fs,
		store:      st,
		mail:       ml,
		tokens:     tokens,
		users:      NewUserService(nil, rm, tokens, log),
		containers: NewContainerService(nil, rm, st, log),
		admin:      NewAdminService(nil, rm, st, ml, log),
	}
}
