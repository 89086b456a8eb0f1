package repository

import (
	"context"
	"errors"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrVersionConflict   = errors.New("user aggregate version conflict")
)

const userColumns = `id, version, tg_id, first_name, last_name, username, photo_url, country, ip,
	role, is_banned, created_at, updated_at,
	level_id, balance, balance_per_click, total_claimed_balance, total_balance_from_clicks,
	total_clicks, last_click_sync_time, profit_per_hour, last_profit_sync_time,
	energy, energy_limit, last_energy_modified_time,
	daily_energy_replenishment_used, daily_energy_replenishment_claimed_at,
	last_login_reward_day, last_daily_login_claimed_day, last_daily_reward_claimed_day,
	referred_by_id, referrals_count, total_referral_rewards, selected_character_id`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Version, &u.TgID, &u.FirstName, &u.LastName, &u.Username, &u.PhotoURL, &u.Country, &u.IP,
		&u.Role, &u.IsBanned, &u.CreatedAt, &u.UpdatedAt,
		&u.LevelID, &u.Balance, &u.BalancePerClick, &u.TotalClaimedBalance, &u.TotalBalanceFromClicks,
		&u.TotalClicks, &u.LastClickSyncTime, &u.ProfitPerHour, &u.LastProfitSyncTime,
		&u.Energy, &u.EnergyLimit, &u.LastEnergyModifiedTime,
		&u.DailyEnergyReplenishmentUsed, &u.DailyEnergyReplenishmentClaimedAt,
		&u.LastLoginRewardDay, &u.LastDailyLoginClaimedDay, &u.LastDailyRewardClaimedDay,
		&u.ReferredByID, &u.ReferralsCount, &u.TotalReferralRewards, &u.SelectedCharacterID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByTgID returns the bare user row without aggregate children.
func (r *UserRepository) GetByTgID(ctx context.Context, tgID int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID))
}

// GetByID returns the bare user row without aggregate children.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetAggregateForUpdateTx loads the full user aggregate inside tx with
// the user row locked, so a whole mutation (validate, mutate,
// recompute, persist) runs against a stable snapshot.
func (r *UserRepository) GetAggregateForUpdateTx(ctx context.Context, tx pgx.Tx, tgID int64) (*domain.User, error) {
	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1 FOR UPDATE`, tgID))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, tx, u)
}

// GetAggregateByIDForUpdateTx is GetAggregateForUpdateTx keyed on the
// internal id (used for cross-user referral crediting).
func (r *UserRepository) GetAggregateByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	u, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, tx, u)
}

// GetAggregate loads the aggregate without locking, for read-only
// endpoints like /me.
func (r *UserRepository) GetAggregate(ctx context.Context, tgID int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE tg_id = $1`, tgID))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, r.db, u)
}

func (r *UserRepository) loadChildren(ctx context.Context, q querier, u *domain.User) (*domain.User, error) {
	// Level
	var lvl domain.UserLevel
	err := q.QueryRow(ctx,
		`SELECT id, level, name, balance_reward, required_balance, profit_per_hour
		 FROM user_levels WHERE id = $1`, u.LevelID,
	).Scan(&lvl.ID, &lvl.Level, &lvl.Name, &lvl.BalanceReward, &lvl.RequiredBalance, &lvl.ProfitPerHour)
	if err != nil {
		return nil, err
	}
	u.Level = &lvl

	// Owned characters, rank ascending
	rows, err := q.Query(ctx,
		`SELECT uc.id, uc.user_id, uc.character_id, uc.current_level,
		        c.id, c.rank, c.name, c.price, c.max_level
		 FROM user_characters uc
		 JOIN characters c ON c.id = uc.character_id
		 WHERE uc.user_id = $1
		 ORDER BY c.rank`, u.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var uc domain.UserCharacter
		var ch domain.Character
		if err := rows.Scan(&uc.ID, &uc.UserID, &uc.CharacterID, &uc.CurrentLevel,
			&ch.ID, &ch.Rank, &ch.Name, &ch.Price, &ch.MaxLevel); err != nil {
			return nil, err
		}
		uc.Character = &ch
		u.OwnedCharacters = append(u.OwnedCharacters, &uc)
		if u.SelectedCharacterID != nil && uc.ID == *u.SelectedCharacterID {
			u.SelectedCharacter = &uc
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Ladder of the selected character, needed for the profit recompute.
	if u.SelectedCharacter != nil {
		lrows, err := q.Query(ctx,
			`SELECT id, character_id, level, price, profit_per_hour
			 FROM character_levels WHERE character_id = $1 ORDER BY level`,
			u.SelectedCharacter.CharacterID)
		if err != nil {
			return nil, err
		}
		defer lrows.Close()
		for lrows.Next() {
			var cl domain.CharacterLevel
			if err := lrows.Scan(&cl.ID, &cl.CharacterID, &cl.Level, &cl.Price, &cl.ProfitPerHour); err != nil {
				return nil, err
			}
			u.SelectedCharacter.Character.Levels = append(u.SelectedCharacter.Character.Levels, &cl)
		}
		if err := lrows.Err(); err != nil {
			return nil, err
		}
	}

	// Boosters
	var b domain.UserBoosters
	var el, cp domain.BoosterLevel
	err = q.QueryRow(ctx,
		`SELECT ub.user_id, el.id, el.level, el.price, cp.id, cp.level, cp.price
		 FROM user_boosters ub
		 JOIN energy_limit_boosters el ON el.id = ub.energy_limit_booster_id
		 JOIN click_power_boosters cp ON cp.id = ub.click_power_booster_id
		 WHERE ub.user_id = $1`, u.ID,
	).Scan(&b.UserID, &el.ID, &el.Level, &el.Price, &cp.ID, &cp.Level, &cp.Price)
	if err == nil {
		el.Type = domain.BoosterEnergyLimit
		cp.Type = domain.BoosterClickPower
		b.EnergyLimit = &el
		b.ClickPower = &cp
		u.Boosters = &b
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Referral inputs for the profit recompute.
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`, u.ID,
	).Scan(&u.ReferralsCount); err != nil {
		return nil, err
	}
	if u.ReferredByID != nil {
		err := q.QueryRow(ctx,
			`SELECT ra.reward_amount FROM referral_actions ra
			 JOIN referrals ref ON ref.id = ra.referral_id
			 WHERE ref.referred_id = $1 AND ra.action_type = $2
			 ORDER BY ra.id LIMIT 1`,
			u.ID, domain.ReferralActionSignUp,
		).Scan(&u.ReferredSignupReward)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	return u, nil
}

// CreateTx inserts the user row and fills in id/created_at/version.
// A concurrent first login hitting the tg_id unique constraint comes
// back as ErrUserAlreadyExists so callers can fall back to the read
// path.
func (r *UserRepository) CreateTx(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO users (
			tg_id, first_name, last_name, username, photo_url, country, ip, role, is_banned,
			level_id, balance, balance_per_click, total_claimed_balance, total_balance_from_clicks,
			total_clicks, last_click_sync_time, profit_per_hour, last_profit_sync_time,
			energy, energy_limit, last_energy_modified_time,
			daily_energy_replenishment_used, last_login_reward_day,
			referred_by_id, referrals_count, total_referral_rewards
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
		 RETURNING id, version, created_at, updated_at`,
		u.TgID, u.FirstName, u.LastName, u.Username, u.PhotoURL, u.Country, u.IP, u.Role, u.IsBanned,
		u.LevelID, u.Balance, u.BalancePerClick, u.TotalClaimedBalance, u.TotalBalanceFromClicks,
		u.TotalClicks, u.LastClickSyncTime, u.ProfitPerHour, u.LastProfitSyncTime,
		u.Energy, u.EnergyLimit, u.LastEnergyModifiedTime,
		u.DailyEnergyReplenishmentUsed, u.LastLoginRewardDay,
		u.ReferredByID, u.ReferralsCount, u.TotalReferralRewards,
	).Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateTx persists every mutable aggregate field and bumps the
// version. The row is already locked, so a version mismatch means a
// programming error rather than a lost race; it is still surfaced.
func (r *UserRepository) UpdateTx(ctx context.Context, tx pgx.Tx, u *domain.User) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET
			version = version + 1, updated_at = NOW(),
			first_name = $1, last_name = $2, username = $3, photo_url = $4, country = $5, ip = $6,
			role = $7, is_banned = $8,
			level_id = $9, balance = $10, balance_per_click = $11,
			total_claimed_balance = $12, total_balance_from_clicks = $13, total_clicks = $14,
			last_click_sync_time = $15, profit_per_hour = $16, last_profit_sync_time = $17,
			energy = $18, energy_limit = $19, last_energy_modified_time = $20,
			daily_energy_replenishment_used = $21, daily_energy_replenishment_claimed_at = $22,
			last_login_reward_day = $23, last_daily_login_claimed_day = $24, last_daily_reward_claimed_day = $25,
			referred_by_id = $26, referrals_count = $27, total_referral_rewards = $28,
			selected_character_id = $29
		 WHERE id = $30 AND version = $31`,
		u.FirstName, u.LastName, u.Username, u.PhotoURL, u.Country, u.IP,
		u.Role, u.IsBanned,
		u.LevelID, u.Balance, u.BalancePerClick,
		u.TotalClaimedBalance, u.TotalBalanceFromClicks, u.TotalClicks,
		u.LastClickSyncTime, u.ProfitPerHour, u.LastProfitSyncTime,
		u.Energy, u.EnergyLimit, u.LastEnergyModifiedTime,
		u.DailyEnergyReplenishmentUsed, u.DailyEnergyReplenishmentClaimedAt,
		u.LastLoginRewardDay, u.LastDailyLoginClaimedDay, u.LastDailyRewardClaimedDay,
		u.ReferredByID, u.ReferralsCount, u.TotalReferralRewards,
		u.SelectedCharacterID,
		u.ID, u.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	u.Version++
	return nil
}

// SetBanned flips the ban flag (admin bot).
func (r *UserRepository) SetBanned(ctx context.Context, tgID int64, banned bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_banned = $1, version = version + 1, updated_at = NOW() WHERE tg_id = $2`,
		banned, tgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the number of registered users (admin bot stats).
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// LeaderboardEntry is one row of the balance leaderboard.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	TgID          int64   `json:"tg_id"`
	FirstName     string  `json:"first_name"`
	Username      *string `json:"username,omitempty"`
	Balance       int64   `json:"balance"`
	LevelName     string  `json:"level_name"`
	ProfitPerHour int64   `json:"profit_per_hour"`
}

// TopByBalance returns the top users ordered by balance.
func (r *UserRepository) TopByBalance(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.tg_id, u.first_name, u.username, u.balance, l.name, u.profit_per_hour
		 FROM users u
		 JOIN user_levels l ON l.id = u.level_id
		 WHERE u.is_banned = false
		 ORDER BY u.balance DESC, u.id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.TgID, &e.FirstName, &e.Username, &e.Balance, &e.LevelName, &e.ProfitPerHour); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		res = append(res, e)
	}
	return res, rows.Err()
}
