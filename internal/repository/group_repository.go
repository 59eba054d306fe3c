package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// GroupRepository handles persistence for ocserv group definitions.
// The database rows mirror the group files written to the ocserv group directory.
type GroupRepository struct {
	*BaseRepository[models.OcservGroup]
}

// NewGroupRepository creates a repository for the ocserv_groups table.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{
		BaseRepository: NewBaseRepository[models.OcservGroup](db, "ocserv_groups"),
	}
}

// GetByName retrieves a group by its name.
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*models.OcservGroup, error) {
	q := r.getQueryable(ctx)

	var group models.OcservGroup
	err := q.GetContext(ctx, &group, "SELECT * FROM ocserv_groups WHERE name = ?", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, ParseDBError(err)
	}

	return &group, nil
}

// Create inserts a new group and returns its ID.
func (r *GroupRepository) Create(ctx context.Context, group *models.OcservGroup) (int64, error) {
	q := r.getQueryable(ctx)

	result, err := q.ExecContext(ctx,
		"INSERT INTO ocserv_groups (name, config) VALUES (?, ?)",
		group.Name, group.Config,
	)
	if err != nil {
		return 0, ParseDBError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, ParseDBError(err)
	}
	return id, nil
}

// UpdateConfig replaces a group's configuration map.
func (r *GroupRepository) UpdateConfig(ctx context.Context, id int64, cfg models.ConfigMap) error {
	q := r.getQueryable(ctx)

	result, err := q.ExecContext(ctx,
		"UPDATE ocserv_groups SET config = ? WHERE id = ?", cfg, id)
	if err != nil {
		return ParseDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ParseDBError(err)
	}
	if affected == 0 {
		exists, existsErr := r.Exists(ctx, id)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return ErrNotFound
		}
	}

	return nil
}

// ListNames returns all group names in alphabetical order.
func (r *GroupRepository) ListNames(ctx context.Context) ([]string, error) {
	q := r.getQueryable(ctx)

	var names []string
	if err := q.SelectContext(ctx, &names, "SELECT name FROM ocserv_groups ORDER BY name ASC"); err != nil {
		return nil, ParseDBError(err)
	}

	return names, nil
}
