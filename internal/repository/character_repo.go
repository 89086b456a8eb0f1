package repository

import (
	"context"
	"errors"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCharacterNotFound = errors.New("character not found")

type CharacterRepository struct {
	db *pgxpool.Pool
}

func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// List returns all characters with their level ladders, rank ascending.
func (r *CharacterRepository) List(ctx context.Context) ([]*domain.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, rank, name, price, max_level FROM characters ORDER BY rank`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Character
	byID := make(map[int64]*domain.Character)
	for rows.Next() {
		var c domain.Character
		if err := rows.Scan(&c.ID, &c.Rank, &c.Name, &c.Price, &c.MaxLevel); err != nil {
			return nil, err
		}
		res = append(res, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := r.db.Query(ctx,
		`SELECT id, character_id, level, price, profit_per_hour
		 FROM character_levels ORDER BY character_id, level`)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()

	for lrows.Next() {
		var cl domain.CharacterLevel
		if err := lrows.Scan(&cl.ID, &cl.CharacterID, &cl.Level, &cl.Price, &cl.ProfitPerHour); err != nil {
			return nil, err
		}
		if c, ok := byID[cl.CharacterID]; ok {
			c.Levels = append(c.Levels, &cl)
		}
	}
	return res, lrows.Err()
}

// GetByRank returns one character with its ladder.
func (r *CharacterRepository) GetByRank(ctx context.Context, rank int) (*domain.Character, error) {
	var c domain.Character
	err := r.db.QueryRow(ctx,
		`SELECT id, rank, name, price, max_level FROM characters WHERE rank = $1`, rank,
	).Scan(&c.ID, &c.Rank, &c.Name, &c.Price, &c.MaxLevel)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, character_id, level, price, profit_per_hour
		 FROM character_levels WHERE character_id = $1 ORDER BY level`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cl domain.CharacterLevel
		if err := rows.Scan(&cl.ID, &cl.CharacterID, &cl.Level, &cl.Price, &cl.ProfitPerHour); err != nil {
			return nil, err
		}
		c.Levels = append(c.Levels, &cl)
	}
	return &c, rows.Err()
}
