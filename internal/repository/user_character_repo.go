package repository

import (
	"context"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserCharacterRepository struct {
	db *pgxpool.Pool
}

func NewUserCharacterRepository(db *pgxpool.Pool) *UserCharacterRepository {
	return &UserCharacterRepository{db: db}
}

// CreateTx inserts an ownership row at ladder level 0.
func (r *UserCharacterRepository) CreateTx(ctx context.Context, tx pgx.Tx, userID, characterID int64) (*domain.UserCharacter, error) {
	uc := domain.UserCharacter{UserID: userID, CharacterID: characterID, CurrentLevel: 0}
	err := tx.QueryRow(ctx,
		`INSERT INTO user_characters (user_id, character_id, current_level)
		 VALUES ($1, $2, 0) RETURNING id`,
		userID, characterID,
	).Scan(&uc.ID)
	if err != nil {
		return nil, err
	}
	return &uc, nil
}

// SetLevelTx advances an ownership row to a new ladder level.
func (r *UserCharacterRepository) SetLevelTx(ctx context.Context, tx pgx.Tx, id int64, level int) error {
	_, err := tx.Exec(ctx,
		`UPDATE user_characters SET current_level = $1 WHERE id = $2`, level, id)
	return err
}
