package domain

import "time"

// UserRole - роль пользователя
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// User is the aggregate root of the progression engine. Balance, level,
// energy and all derived fields live on this row; everything else hangs
// off it (owned characters, boosters, referral linkage).
//
// EnergyLimit, BalancePerClick and ProfitPerHour are derived values and
// must only be written by the recompute step, never by handlers.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Version   int64     `db:"version" json:"-"` // bumped on every aggregate write
	TgID      int64     `db:"tg_id" json:"tg_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  *string   `db:"last_name" json:"last_name,omitempty"`
	Username  *string   `db:"username" json:"username,omitempty"`
	PhotoURL  *string   `db:"photo_url" json:"photo_url,omitempty"`
	Country   string    `db:"country" json:"country"`
	IP        string    `db:"ip" json:"-"`
	Role      UserRole  `db:"role" json:"role"`
	IsBanned  bool      `db:"is_banned" json:"is_banned"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	LevelID int64      `db:"level_id" json:"-"`
	Level   *UserLevel `db:"-" json:"level"`

	Balance                int64     `db:"balance" json:"balance"`
	BalancePerClick        int       `db:"balance_per_click" json:"balance_per_click"`
	TotalClaimedBalance    int64     `db:"total_claimed_balance" json:"total_claimed_balance"`
	TotalBalanceFromClicks int64     `db:"total_balance_from_clicks" json:"total_balance_from_clicks"`
	TotalClicks            int64     `db:"total_clicks" json:"total_clicks"`
	LastClickSyncTime      time.Time `db:"last_click_sync_time" json:"-"`

	ProfitPerHour      int64     `db:"profit_per_hour" json:"profit_per_hour"`
	LastProfitSyncTime time.Time `db:"last_profit_sync_time" json:"-"`

	Energy                 int       `db:"energy" json:"energy"`
	EnergyLimit            int       `db:"energy_limit" json:"energy_limit"`
	LastEnergyModifiedTime time.Time `db:"last_energy_modified_time" json:"-"`

	DailyEnergyReplenishmentUsed      int        `db:"daily_energy_replenishment_used" json:"daily_energy_replenishment_used"`
	DailyEnergyReplenishmentClaimedAt *time.Time `db:"daily_energy_replenishment_claimed_at" json:"-"`

	// Daily login streak. LastDailyLoginClaimedDay holds the local
	// midnight of the last claim, nil before the first claim.
	LastLoginRewardDay        int        `db:"last_login_reward_day" json:"last_login_reward_day"`
	LastDailyLoginClaimedDay  *time.Time `db:"last_daily_login_claimed_day" json:"-"`
	LastDailyRewardClaimedDay *time.Time `db:"last_daily_reward_claimed_day" json:"-"`

	ReferredByID         *int64 `db:"referred_by_id" json:"-"` // id of the user whose code was used at sign up
	ReferralsCount       int    `db:"referrals_count" json:"referrals_count"`
	TotalReferralRewards int64  `db:"total_referral_rewards" json:"total_referral_rewards"`

	SelectedCharacterID *int64 `db:"selected_character_id" json:"-"`

	// Loaded with the aggregate, not columns of users.
	OwnedCharacters      []*UserCharacter `db:"-" json:"owned_characters,omitempty"`
	SelectedCharacter    *UserCharacter   `db:"-" json:"selected_character,omitempty"`
	Boosters             *UserBoosters    `db:"-" json:"boosters,omitempty"`
	ReferredSignupReward int64            `db:"-" json:"-"` // sign_up action reward on the referral that referred this user
}

// IncreaseBalance credits the balance and the lifetime claimed total.
func (u *User) IncreaseBalance(amount int64) {
	u.TotalClaimedBalance += amount
	u.Balance += amount
}

// DecreaseBalance debits the balance. Callers must check funds first.
func (u *User) DecreaseBalance(amount int64) {
	u.Balance -= amount
	if u.Balance < 0 {
		u.Balance = 0
	}
}

// SetEnergy clamps energy into [0, EnergyLimit] and stamps the
// modification time.
func (u *User) SetEnergy(energy int, now time.Time) {
	if energy > u.EnergyLimit {
		energy = u.EnergyLimit
	}
	if energy < 0 {
		energy = 0
	}
	u.Energy = energy
	u.LastEnergyModifiedTime = now
}

// HighestOwnedCharacter returns the owned character with the highest
// catalog rank, or nil if the user owns none. Every user gets the
// rank-1 character at sign up, so nil means broken data.
func (u *User) HighestOwnedCharacter() *UserCharacter {
	var highest *UserCharacter
	for _, uc := range u.OwnedCharacters {
		if uc.Character == nil {
			continue
		}
		if highest == nil || uc.Character.Rank > highest.Character.Rank {
			highest = uc
		}
	}
	return highest
}

// OwnedCharacterByRank returns the owned character of the given catalog
// rank, or nil.
func (u *User) OwnedCharacterByRank(rank int) *UserCharacter {
	for _, uc := range u.OwnedCharacters {
		if uc.Character != nil && uc.Character.Rank == rank {
			return uc
		}
	}
	return nil
}
