package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// OcservUserRepository handles persistence for VPN user accounts.
type OcservUserRepository struct {
	*BaseRepository[models.OcservUser]
}

// NewOcservUserRepository creates a repository for the ocserv_users table.
func NewOcservUserRepository(db *sqlx.DB) *OcservUserRepository {
	return &OcservUserRepository{
		BaseRepository: NewBaseRepository[models.OcservUser](db, "ocserv_users"),
	}
}

// OcservUserUpdates contains optional field updates for a VPN user.
// Nil pointers leave the column untouched.
type OcservUserUpdates struct {
	Password    *string
	GroupName   *string
	ExpireDate  *time.Time
	TrafficType *string
	TrafficGB   *int
	Description *string
}

// GetByUsername retrieves a VPN user by username.
func (r *OcservUserRepository) GetByUsername(ctx context.Context, username string) (*models.OcservUser, error) {
	q := r.getQueryable(ctx)

	var user models.OcservUser
	err := q.GetContext(ctx, &user, "SELECT * FROM ocserv_users WHERE username = ?", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, ParseDBError(err)
	}

	return &user, nil
}

// Create inserts a new VPN user and returns its ID.
func (r *OcservUserRepository) Create(ctx context.Context, user *models.OcservUser) (int64, error) {
	q := r.getQueryable(ctx)

	result, err := q.ExecContext(ctx,
		`INSERT INTO ocserv_users
		 (username, password, group_name, active, expire_date, traffic_type, traffic_gb, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Password, user.GroupName, user.Active,
		user.ExpireDate, user.TrafficType, user.TrafficGB, user.Description,
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

// Update applies the non-nil fields of updates to a VPN user.
func (r *OcservUserRepository) Update(ctx context.Context, id int64, updates OcservUserUpdates) error {
	var setClauses []string
	var args []interface{}

	addFieldUpdate(&setClauses, &args, "password", updates.Password)
	addFieldUpdate(&setClauses, &args, "group_name", updates.GroupName)
	addFieldUpdate(&setClauses, &args, "expire_date", updates.ExpireDate)
	addFieldUpdate(&setClauses, &args, "traffic_type", updates.TrafficType)
	addFieldUpdate(&setClauses, &args, "traffic_gb", updates.TrafficGB)
	addFieldUpdate(&setClauses, &args, "description", updates.Description)

	if len(setClauses) == 0 {
		return nil
	}

	q := r.getQueryable(ctx)
	query := "UPDATE ocserv_users SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return ParseDBError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ParseDBError(err)
	}
	if affected == 0 {
		// The row may exist with identical values; distinguish from a missing row
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

// SetActive flips the active flag. Deactivation records the timestamp,
// reactivation clears it.
func (r *OcservUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	q := r.getQueryable(ctx)

	query := "UPDATE ocserv_users SET active = ?, deactivated_at = NOW() WHERE id = ?"
	if active {
		query = "UPDATE ocserv_users SET active = ?, deactivated_at = NULL WHERE id = ?"
	}

	result, err := q.ExecContext(ctx, query, active, id)
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

// AddTraffic accumulates RX/TX byte counters for a user.
func (r *OcservUserRepository) AddTraffic(ctx context.Context, id int64, rx, tx uint64) error {
	q := r.getQueryable(ctx)

	_, err := q.ExecContext(ctx,
		"UPDATE ocserv_users SET rx_bytes = rx_bytes + ?, tx_bytes = tx_bytes + ? WHERE id = ?",
		rx, tx, id,
	)
	return ParseDBError(err)
}

// ResetMonthlyTraffic zeroes the byte counters of all monthly-quota users.
// Returns the number of users reset.
func (r *OcservUserRepository) ResetMonthlyTraffic(ctx context.Context) (int64, error) {
	q := r.getQueryable(ctx)

	result, err := q.ExecContext(ctx,
		"UPDATE ocserv_users SET rx_bytes = 0, tx_bytes = 0 WHERE traffic_type = ?",
		models.TrafficMonthly,
	)
	if err != nil {
		return 0, ParseDBError(err)
	}

	return result.RowsAffected()
}

// ListExpired returns active users whose expire date has passed.
func (r *OcservUserRepository) ListExpired(ctx context.Context, now time.Time) ([]models.OcservUser, error) {
	q := r.getQueryable(ctx)

	var users []models.OcservUser
	err := q.SelectContext(ctx, &users,
		"SELECT * FROM ocserv_users WHERE active = 1 AND expire_date IS NOT NULL AND expire_date < ?",
		now,
	)
	if err != nil {
		return nil, ParseDBError(err)
	}

	return users, nil
}

// ListOverQuota returns active quota-limited users whose accumulated traffic
// exceeds their allowance.
func (r *OcservUserRepository) ListOverQuota(ctx context.Context) ([]models.OcservUser, error) {
	q := r.getQueryable(ctx)

	var users []models.OcservUser
	err := q.SelectContext(ctx, &users,
		`SELECT * FROM ocserv_users
		 WHERE active = 1 AND traffic_type != ?
		 AND rx_bytes + tx_bytes > CAST(traffic_gb AS UNSIGNED) * 1024 * 1024 * 1024`,
		models.TrafficFree,
	)
	if err != nil {
		return nil, ParseDBError(err)
	}

	return users, nil
}
