package repository

import (
	"context"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RewardRepository serves the daily-login streak table.
type RewardRepository struct {
	db *pgxpool.Pool
}

func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// ListDailyLogins returns the streak table ordered by day ascending.
func (r *RewardRepository) ListDailyLogins(ctx context.Context) ([]*domain.DailyLoginReward, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, day, reward, special_day FROM rewards_daily_logins ORDER BY day`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.DailyLoginReward
	for rows.Next() {
		var d domain.DailyLoginReward
		if err := rows.Scan(&d.ID, &d.Day, &d.Reward, &d.SpecialDay); err != nil {
			return nil, err
		}
		res = append(res, &d)
	}
	return res, rows.Err()
}
