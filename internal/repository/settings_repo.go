package repository

import (
	"context"
	"errors"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSettingsMissing means the singleton settings row was never seeded.
var ErrSettingsMissing = errors.New("settings row not found")

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the singleton settings row (id = 1).
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	err := r.db.QueryRow(ctx,
		`SELECT id, COALESCE(telegram_channel_id, ''), user_starting_balance,
		        max_daily_energy_replenishment, max_offline_profit_hours,
		        referral_reward, daily_reward, starting_energy_limit,
		        energy_limit_per_character, energy_limit_per_level, energy_limit_per_booster
		 FROM settings WHERE id = 1`,
	).Scan(&s.ID, &s.TelegramChannelID, &s.UserStartingBalance,
		&s.MaxDailyEnergyReplenishment, &s.MaxOfflineProfitHours,
		&s.ReferralReward, &s.DailyReward, &s.StartingEnergyLimit,
		&s.EnergyLimitPerCharacter, &s.EnergyLimitPerLevel, &s.EnergyLimitPerBooster)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsMissing
		}
		return nil, err
	}
	return &s, nil
}
