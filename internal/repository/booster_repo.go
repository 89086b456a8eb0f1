package repository

import (
	"context"
	"errors"
	"fmt"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBoosterLevelNotFound = errors.New("booster level not found")

type BoosterRepository struct {
	db *pgxpool.Pool
}

func NewBoosterRepository(db *pgxpool.Pool) *BoosterRepository {
	return &BoosterRepository{db: db}
}

func boosterTable(t domain.BoosterType) (string, error) {
	switch t {
	case domain.BoosterEnergyLimit:
		return "energy_limit_boosters", nil
	case domain.BoosterClickPower:
		return "click_power_boosters", nil
	}
	return "", fmt.Errorf("unknown booster type %q", t)
}

// List returns the tier ladder of one booster type, level ascending.
func (r *BoosterRepository) List(ctx context.Context, t domain.BoosterType) ([]*domain.BoosterLevel, error) {
	table, err := boosterTable(t)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, level, price FROM `+table+` ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.BoosterLevel
	for rows.Next() {
		var b domain.BoosterLevel
		if err := rows.Scan(&b.ID, &b.Level, &b.Price); err != nil {
			return nil, err
		}
		b.Type = t
		res = append(res, &b)
	}
	return res, rows.Err()
}

// GetLevelTx fetches one tier by level number inside a transaction,
// used for the "tier N+1" upgrade lookup.
func (r *BoosterRepository) GetLevelTx(ctx context.Context, tx pgx.Tx, t domain.BoosterType, level int) (*domain.BoosterLevel, error) {
	table, err := boosterTable(t)
	if err != nil {
		return nil, err
	}

	var b domain.BoosterLevel
	err = tx.QueryRow(ctx, `SELECT id, level, price FROM `+table+` WHERE level = $1`, level).
		Scan(&b.ID, &b.Level, &b.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoosterLevelNotFound
		}
		return nil, err
	}
	b.Type = t
	return &b, nil
}

// GetLevel is GetLevelTx outside a transaction (user creation path runs
// its own tx and passes it; catalog reads use the pool).
func (r *BoosterRepository) GetLevel(ctx context.Context, t domain.BoosterType, level int) (*domain.BoosterLevel, error) {
	table, err := boosterTable(t)
	if err != nil {
		return nil, err
	}

	var b domain.BoosterLevel
	err = r.db.QueryRow(ctx, `SELECT id, level, price FROM `+table+` WHERE level = $1`, level).
		Scan(&b.ID, &b.Level, &b.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBoosterLevelNotFound
		}
		return nil, err
	}
	b.Type = t
	return &b, nil
}

// CreateUserBoostersTx inserts the booster ownership row for a new user.
func (r *BoosterRepository) CreateUserBoostersTx(ctx context.Context, tx pgx.Tx, userID, energyLimitID, clickPowerID int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO user_boosters (user_id, energy_limit_booster_id, click_power_booster_id)
		 VALUES ($1, $2, $3)`,
		userID, energyLimitID, clickPowerID)
	return err
}

// SetUserBoosterTx advances one booster of the user to a new tier.
func (r *BoosterRepository) SetUserBoosterTx(ctx context.Context, tx pgx.Tx, userID int64, t domain.BoosterType, boosterID int64) error {
	column := "energy_limit_booster_id"
	if t == domain.BoosterClickPower {
		column = "click_power_booster_id"
	}
	tag, err := tx.Exec(ctx,
		`UPDATE user_boosters SET `+column+` = $1 WHERE user_id = $2`, boosterID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
