package containers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/containerhub/internal/common"
	"github.com/dmitrijs2005/containerhub/internal/dbx"
	"github.com/dmitrijs2005/containerhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Container) (*models.Container, error) {
	query :=
		`INSERT INTO containers (user_id, file_path, content_type)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.UserID, c.FilePath, c.ContentType).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Container, error) {
	query := `SELECT id, user_id, file_path, content_type, created_at FROM containers WHERE id = $1`

	c := &models.Container{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.FilePath, &c.ContentType, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return c, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Container, error) {
	return r.list(ctx,
		`SELECT id, user_id, file_path, content_type, created_at FROM containers WHERE user_id = $1 ORDER BY id`,
		userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Container, error) {
	return r.list(ctx, `SELECT id, user_id, file_path, content_type, created_at FROM containers ORDER BY id`)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Container, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Container, 0)
	for rows.Next() {
		c := &models.Container{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.FilePath, &c.ContentType, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
