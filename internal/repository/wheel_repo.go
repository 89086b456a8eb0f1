package repository

import (
	"context"
	"encoding/json"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WheelRepository struct {
	db *pgxpool.Pool
}

func NewWheelRepository(db *pgxpool.Pool) *WheelRepository {
	return &WheelRepository{db: db}
}

// List returns the wheel items in index order. The reward payload is
// stored as jsonb.
func (r *WheelRepository) List(ctx context.Context) ([]*domain.FortuneWheelItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, item_index, title, type, chance, reward, created_at, updated_at
		 FROM fortune_wheel ORDER BY item_index`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.FortuneWheelItem
	for rows.Next() {
		var item domain.FortuneWheelItem
		var reward []byte
		if err := rows.Scan(&item.ID, &item.Index, &item.Title, &item.Type, &item.Chance,
			&reward, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if len(reward) > 0 {
			if err := json.Unmarshal(reward, &item.Reward); err != nil {
				return nil, err
			}
		}
		res = append(res, &item)
	}
	return res, rows.Err()
}
