package domain

// UserLevel is a row of the level ladder. RequiredBalance is strictly
// increasing across levels and level 0 requires 0.
type UserLevel struct {
	ID              int64  `db:"id" json:"id"`
	Level           int    `db:"level" json:"level"`
	Name            string `db:"name" json:"name"`
	BalanceReward   int64  `db:"balance_reward" json:"balance_reward"`
	RequiredBalance int64  `db:"required_balance" json:"required_balance"`
	ProfitPerHour   int64  `db:"profit_per_hour" json:"profit_per_hour"`
}

// Character is a collectible unlocked in strict rank order. Level 0 of
// its ladder is free and defines the base profit contribution.
type Character struct {
	ID       int64             `db:"id" json:"id"`
	Rank     int               `db:"rank" json:"rank"`
	Name     string            `db:"name" json:"name"`
	Price    int64             `db:"price" json:"price"`
	MaxLevel int               `db:"max_level" json:"max_level"`
	Levels   []*CharacterLevel `db:"-" json:"levels,omitempty"`
}

// LevelByNumber returns the ladder row for the given level, or nil.
func (c *Character) LevelByNumber(level int) *CharacterLevel {
	for _, l := range c.Levels {
		if l.Level == level {
			return l
		}
	}
	return nil
}

type CharacterLevel struct {
	ID            int64 `db:"id" json:"id"`
	CharacterID   int64 `db:"character_id" json:"character_id"`
	Level         int   `db:"level" json:"level"`
	Price         int64 `db:"price" json:"price"`
	ProfitPerHour int64 `db:"profit_per_hour" json:"profit_per_hour"`
}

// BoosterType - тип бустера
type BoosterType string

const (
	BoosterEnergyLimit BoosterType = "energy_limit"
	BoosterClickPower  BoosterType = "click_power"
)

// BoosterLevel is one tier of a booster ladder. Both booster catalogs
// (energy limit, click power) share the shape; Type tells them apart.
type BoosterLevel struct {
	ID    int64       `db:"id" json:"id"`
	Type  BoosterType `db:"-" json:"type"`
	Level int         `db:"level" json:"level"`
	Price int64       `db:"price" json:"price"`
}

// UserBoosters is the pair of booster tiers a user currently owns.
type UserBoosters struct {
	UserID      int64         `db:"user_id" json:"-"`
	EnergyLimit *BoosterLevel `db:"-" json:"energy_limit"`
	ClickPower  *BoosterLevel `db:"-" json:"click_power"`
}

// UserCharacter tracks one user's ownership of one character.
type UserCharacter struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"-"`
	CharacterID  int64      `db:"character_id" json:"-"`
	CurrentLevel int        `db:"current_level" json:"current_level"`
	Character    *Character `db:"-" json:"character,omitempty"`
}

// DailyLoginReward is a row of the login streak table, day 1..N.
type DailyLoginReward struct {
	ID         int64 `db:"id" json:"id"`
	Day        int   `db:"day" json:"day"`
	Reward     int64 `db:"reward" json:"reward"`
	SpecialDay bool  `db:"special_day" json:"special_day"`
}

// Settings is the single admin-managed configuration row.
type Settings struct {
	ID                          int64  `db:"id" json:"id"`
	TelegramChannelID           string `db:"telegram_channel_id" json:"telegram_channel_id"`
	UserStartingBalance         int64  `db:"user_starting_balance" json:"user_starting_balance"`
	MaxDailyEnergyReplenishment int    `db:"max_daily_energy_replenishment" json:"max_daily_energy_replenishment"`
	MaxOfflineProfitHours       int    `db:"max_offline_profit_hours" json:"max_offline_profit_hours"`
	ReferralReward              int64  `db:"referral_reward" json:"referral_reward"`
	DailyReward                 int64  `db:"daily_reward" json:"daily_reward"`
	StartingEnergyLimit         int    `db:"starting_energy_limit" json:"starting_energy_limit"`
	EnergyLimitPerCharacter     int    `db:"energy_limit_per_character" json:"energy_limit_per_character"`
	EnergyLimitPerLevel         int    `db:"energy_limit_per_level" json:"energy_limit_per_level"`
	EnergyLimitPerBooster       int    `db:"energy_limit_per_booster" json:"energy_limit_per_booster"`
}
