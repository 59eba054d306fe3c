package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ocserv-tools/ocserv-panel/internal/models"
)

// TrafficRepository handles the per-day traffic accounting table.
type TrafficRepository struct {
	*BaseRepository[models.TrafficStat]
}

// NewTrafficRepository creates a repository for the traffic_stats table.
func NewTrafficRepository(db *sqlx.DB) *TrafficRepository {
	return &TrafficRepository{
		BaseRepository: NewBaseRepository[models.TrafficStat](db, "traffic_stats"),
	}
}

// AddUsage accumulates RX/TX bytes into the stat row for (user, day),
// creating the row on first use of the day.
func (r *TrafficRepository) AddUsage(ctx context.Context, userID int64, day time.Time, rx, tx uint64) error {
	q := r.getQueryable(ctx)

	_, err := q.ExecContext(ctx,
		`INSERT INTO traffic_stats (ocserv_user_id, date, rx_bytes, tx_bytes)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE rx_bytes = rx_bytes + VALUES(rx_bytes), tx_bytes = tx_bytes + VALUES(tx_bytes)`,
		userID, day.Format("2006-01-02"), rx, tx,
	)
	return ParseDBError(err)
}

// UserHistory returns the daily stats for a user within [from, to], newest first.
func (r *TrafficRepository) UserHistory(ctx context.Context, userID int64, from, to time.Time) ([]models.TrafficStat, error) {
	q := r.getQueryable(ctx)

	var stats []models.TrafficStat
	err := q.SelectContext(ctx, &stats,
		`SELECT * FROM traffic_stats
		 WHERE ocserv_user_id = ? AND date BETWEEN ? AND ?
		 ORDER BY date DESC`,
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, ParseDBError(err)
	}

	return stats, nil
}

// DailyTotals returns aggregate panel-wide usage per day within [from, to],
// joined with usernames for display.
func (r *TrafficRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]models.TrafficStat, error) {
	q := r.getQueryable(ctx)

	var stats []models.TrafficStat
	err := q.SelectContext(ctx, &stats,
		`SELECT t.id, t.ocserv_user_id, t.date, t.rx_bytes, t.tx_bytes, u.username
		 FROM traffic_stats t
		 JOIN ocserv_users u ON t.ocserv_user_id = u.id
		 WHERE t.date BETWEEN ? AND ?
		 ORDER BY t.date DESC, u.username ASC`,
		from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, ParseDBError(err)
	}

	return stats, nil
}
