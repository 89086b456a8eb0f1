package repository

import (
	"context"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LevelRepository struct {
	db *pgxpool.Pool
}

func NewLevelRepository(db *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{db: db}
}

// List returns the full level ladder ordered by level ascending.
func (r *LevelRepository) List(ctx context.Context) ([]*domain.UserLevel, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, level, name, balance_reward, required_balance, profit_per_hour
		 FROM user_levels ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.UserLevel
	for rows.Next() {
		var l domain.UserLevel
		if err := rows.Scan(&l.ID, &l.Level, &l.Name, &l.BalanceReward, &l.RequiredBalance, &l.ProfitPerHour); err != nil {
			return nil, err
		}
		res = append(res, &l)
	}
	return res, rows.Err()
}
