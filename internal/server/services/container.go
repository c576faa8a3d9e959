package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/filex"
	"github.com/dmitrijs2005/containerhub/internal/logging"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
	"github.com/dmitrijs2005/containerhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/containerhub/internal/server/storage"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are used for content type detection.
const sniffLen = 3072

// ContainerService owns uploads and the owner-only access rule.
type ContainerService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	logger      logging.Logger
}

func NewContainerService(db dbx.DBTX, m repomanager.RepositoryManager, st storage.Storage, logger logging.Logger) *ContainerService {
	return &ContainerService{
		db:          db,
		repomanager: m,
		storage:     st,
		logger:      logger.With("module", "containers"),
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Upload stores the file in the owner's namespace and then records the
// container. When the bytes cannot be stored no container is created.
func (s *ContainerService) Upload(ctx context.Context, owner *models.User, fileName string, r io.Reader) (*models.Container, error) {
	name, err := filex.SanitizeFileName(fileName)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	body := &countingReader{r: io.MultiReader(bytes.NewReader(head), r)}
	if err := s.storage.Save(ctx, owner.ID, name, body); err != nil {
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	return s.CreateContainer(ctx, &models.Container{
		UserID:      owner.ID,
		FilePath:    name,
		ContentType: contentType,
	}, body.n)
}

// CreateContainer records an already stored file. size is used for logging only.
func (s *ContainerService) CreateContainer(ctx context.Context, c *models.Container, size int64) (*models.Container, error) {
	created, err := s.repomanager.Containers(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error creating container: %w", err)
	}

	s.logger.Info(ctx, "container created",
		"container_id", created.ID,
		"user_id", created.UserID,
		"content_type", created.ContentType,
		"size", humanize.Bytes(uint64(size)),
	)
	return created, nil
}

func (s *ContainerService) GetContainer(ctx context.Context, id int64) (*models.Container, error) {
	return s.repomanager.Containers(s.db).GetByID(ctx, id)
}

// ListByUser returns the user's containers in upload order.
func (s *ContainerService) ListByUser(ctx context.Context, userID int64) ([]*models.Container, error) {
	return s.repomanager.Containers(s.db).ListByUser(ctx, userID)
}

// AuthorizeAccess allows only the owner. Admin status grants nothing here.
func (s *ContainerService) AuthorizeAccess(c *models.Container, user *models.User) error {
	if c == nil || user == nil || c.UserID != user.ID {
		return common.ErrorForbidden
	}
	return nil
}

// DownloadResult returns the analysis artifact of a container owned by user
// together with the file name it should be served under.
func (s *ContainerService) DownloadResult(ctx context.Context, user *models.User, containerID int64) (string, []byte, error) {
	c, err := s.GetContainer(ctx, containerID)
	if err != nil {
		return "", nil, err
	}
	if err := s.AuthorizeAccess(c, user); err != nil {
		return "", nil, err
	}

	name := filex.AnalysisName(c.FilePath)
	content, err := s.storage.Read(ctx, c.UserID, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, fmt.Errorf("%w: analysis result is not ready", common.ErrorNotFound)
		}
		return "", nil, fmt.Errorf("error reading result: %w", err)
	}

	return name, content, nil
}
