// Package memory holds process-local repositories used when the server runs
// with DatabaseDSN "memory" and by HTTP tests. They ignore the DBTX they are
// handed, so dbx.WithTx provides no isolation here.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/containers"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/users"
)

// Store keeps users and containers behind one mutex.
type Store struct {
	mu            sync.Mutex
	users         map[int64]*models.User
	containers    map[int64]*models.Container
	nextUser      int64
	nextContainer int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*models.User),
		containers: make(map[int64]*models.Container),
	}
}

// RepositoryManager satisfies repomanager.RepositoryManager.
type RepositoryManager struct {
	store *Store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{store: NewStore()}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository { return (*userRepo)(m.store) }

func (m *RepositoryManager) Containers(dbx.DBTX) containers.Repository {
	return (*containerRepo)(m.store)
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		t := *u.RefreshToken
		c.RefreshToken = &t
	}
	return &c
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}

	r.nextUser++
	user.ID = r.nextUser
	user.CreatedAt = time.Now()
	r.users[user.ID] = copyUser(user)
	return user, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return copyUser(u), nil
}

func (r *userRepo) List(_ context.Context, emailFilter string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(emailFilter)
	result := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		if needle != "" && !strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		result = append(result, copyUser(u))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepo) SetRefreshToken(_ context.Context, id int64, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if token == nil {
		u.RefreshToken = nil
		return nil
	}
	t := *token
	u.RefreshToken = &t
	return nil
}

func (r *userRepo) SetAdmin(_ context.Context, email string, isAdmin bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			u.IsAdmin = isAdmin
			return nil
		}
	}
	return common.ErrorNotFound
}

type containerRepo Store

func (r *containerRepo) Create(_ context.Context, c *models.Container) (*models.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[c.UserID]; !ok {
		return nil, common.ErrorNotFound
	}

	r.nextContainer++
	c.ID = r.nextContainer
	c.CreatedAt = time.Now()
	stored := *c
	r.containers[c.ID] = &stored
	return c, nil
}

func (r *containerRepo) GetByID(_ context.Context, id int64) (*models.Container, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.containers[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (r *containerRepo) ListByUser(_ context.Context, userID int64) ([]*models.Container, error) {
	return r.filter(func(c *models.Container) bool { return c.UserID == userID }), nil
}

func (r *containerRepo) ListAll(context.Context) ([]*models.Container, error) {
	return r.filter(func(*models.Container) bool { return true }), nil
}

func (r *containerRepo) filter(keep func(*models.Container) bool) []*models.Container {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Container, 0)
	for _, c := range r.containers {
		if keep(c) {
			out := *c
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
