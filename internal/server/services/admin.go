package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/mailer"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/containerhub/internal/server/storage"
)

// AdminService backs the admin endpoints. Every method requires an admin
// requester.
type AdminService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	mailer      mailer.Mailer
	logger      logging.Logger
}

func NewAdminService(db dbx.DBTX, m repomanager.RepositoryManager, st storage.Storage, ml mailer.Mailer, logger logging.Logger) *AdminService {
	return &AdminService{
		db:          db,
		repomanager: m,
		storage:     st,
		mailer:      ml,
		logger:      logger.With("module", "admin"),
	}
}

func requireAdmin(u *models.User) error {
	if u == nil || !u.IsAdmin {
		return common.ErrorForbidden
	}
	return nil
}

// ListUsersWithFiles lists users ordered by id with the names in their
// namespaces. nameFilter, when set, keeps users whose email contains it
// regardless of case.
func (s *AdminService) ListUsersWithFiles(ctx context.Context, requester *models.User, nameFilter string) ([]*models.UserWithFiles, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}

	users, err := s.repomanager.Users(s.db).List(ctx, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	result := make([]*models.UserWithFiles, 0, len(users))
	for _, u := range users {
		files, err := s.storage.List(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing files of user %d: %w", u.ID, err)
		}
		result = append(result, &models.UserWithFiles{ID: u.ID, Email: u.Email, Files: files})
	}
	return result, nil
}

// TriggerEmail mails the first .txt file (by name) of the target user's
// namespace to that user.
func (s *AdminService) TriggerEmail(ctx context.Context, requester *models.User, targetUserID int64) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}

	target, err := s.repomanager.Users(s.db).GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: user %d", common.ErrorNotFound, targetUserID)
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	files, err := s.storage.List(ctx, target.ID)
	if err != nil {
		return fmt.Errorf("error listing files: %w", err)
	}

	var name string
	for _, f := range files {
		if strings.HasSuffix(f, ".txt") {
			name = f
			break
		}
	}
	if name == "" {
		return fmt.Errorf("%w: no text file for user %d", common.ErrorNotFound, target.ID)
	}

	content, err := s.storage.Read(ctx, target.ID, name)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}

	msg := mailer.Message{
		To:          target.Email,
		Subject:     fmt.Sprintf("User %d File", target.ID),
		Body:        fmt.Sprintf("Dear %s,\n\nPlease find the attached file for user %d.", target.Email, target.ID),
		Attachments: []mailer.Attachment{{Name: name, Content: content}},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}

	s.logger.Info(ctx, "admin email sent", "admin_id", requester.ID, "user_id", target.ID, "file", name)
	return nil
}
