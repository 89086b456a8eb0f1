package service

import (
	"context"
	"errors"
	"time"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/domain"
	"clicker_webapp/internal/game"
	"clicker_webapp/internal/logger"
	"clicker_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrClockOutOfTolerance means the client timestamp on a sync request
// disagrees with server time beyond the allowed window. The request is
// rejected without any mutation.
var ErrClockOutOfTolerance = errors.New("client timestamp out of tolerance")

// UserService owns the user lifecycle: first-login creation (with
// referral crediting), profile refresh, state reads and click sync.
type UserService struct {
	db        *pgxpool.Pool
	users     *repository.UserRepository
	userChars *repository.UserCharacterRepository
	boosters  *repository.BoosterRepository
	referrals *repository.ReferralRepository
	catalog   *catalog.Store
}

func NewUserService(db *pgxpool.Pool, store *catalog.Store) *UserService {
	return &UserService{
		db:        db,
		users:     repository.NewUserRepository(db),
		userChars: repository.NewUserCharacterRepository(db),
		boosters:  repository.NewBoosterRepository(db),
		referrals: repository.NewReferralRepository(db),
		catalog:   store,
	}
}

// AuthInput is the profile payload extracted from validated Telegram
// init data plus request metadata.
type AuthInput struct {
	TgID         int64
	FirstName    string
	LastName     *string
	Username     *string
	PhotoURL     *string
	Country      string
	IP           string
	ReferrerTgID *int64
}

// GetOrCreate returns the user for a validated login, creating the
// account on first contact. Existing users get their profile fields
// refreshed and a time reconcile. Two concurrent first logins can both
// miss the read; the loser of the insert race falls back to the read
// path.
func (s *UserService) GetOrCreate(ctx context.Context, in AuthInput) (*domain.User, error) {
	u, err := s.refresh(ctx, in)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	u, err = s.create(ctx, in)
	if err == nil {
		return u, nil
	}
	if errors.Is(err, repository.ErrUserAlreadyExists) {
		logger.Warn("first login raced a concurrent create, reloading", "tg_id", in.TgID)
		return s.refresh(ctx, in)
	}
	return nil, err
}

// refresh updates profile fields and applies elapsed-time effects on an
// existing account.
func (s *UserService) refresh(ctx context.Context, in AuthInput) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, in.TgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			u.FirstName = in.FirstName
			u.LastName = in.LastName
			u.Username = in.Username
			u.PhotoURL = in.PhotoURL
			if in.Country != "" {
				u.Country = in.Country
			}
			if in.IP != "" {
				u.IP = in.IP
			}
			reconcileTime(u, snap, now)
			return nil
		})
}

// create builds the starting aggregate: starting balance, level 0,
// rank-1 character unlocked and selected, both boosters at tier 0,
// energy at full capacity. When a referral code resolves, the referrer
// row is credited in the same transaction, so a new user without a
// credited referrer can never be committed.
func (s *UserService) create(ctx context.Context, in AuthInput) (*domain.User, error) {
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}

	var level0 *domain.UserLevel
	for _, l := range snap.Levels {
		if l.Level == 0 {
			level0 = l
			break
		}
	}
	rank1 := snap.CharacterByRank(1)
	energyTier0 := snap.BoosterLevel(domain.BoosterEnergyLimit, 0)
	clickTier0 := snap.BoosterLevel(domain.BoosterClickPower, 0)
	if level0 == nil || rank1 == nil || energyTier0 == nil || clickTier0 == nil {
		logger.Error("catalog is missing a starting row",
			"level0", level0 != nil, "rank1", rank1 != nil,
			"energy_tier0", energyTier0 != nil, "click_tier0", clickTier0 != nil)
		return nil, ErrCatalogMisconfigured
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()

	var referrer *domain.User
	if in.ReferrerTgID != nil && *in.ReferrerTgID != in.TgID {
		referrer, err = s.users.GetAggregateForUpdateTx(ctx, tx, *in.ReferrerTgID)
		if err != nil {
			if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, err
			}
			logger.Warn("referral code points at unknown user",
				"referrer_tg_id", *in.ReferrerTgID, "tg_id", in.TgID)
			referrer = nil
		}
	}

	u := &domain.User{
		TgID:      in.TgID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		PhotoURL:  in.PhotoURL,
		Country:   in.Country,
		IP:        in.IP,
		Role:      domain.UserRoleUser,

		LevelID:            level0.ID,
		Balance:            snap.Settings.UserStartingBalance,
		LastClickSyncTime:  now,
		LastProfitSyncTime: now,

		LastEnergyModifiedTime: now,
	}
	if referrer != nil {
		u.ReferredByID = &referrer.ID
	}
	if err := s.users.CreateTx(ctx, tx, u); err != nil {
		return nil, err
	}

	uc, err := s.userChars.CreateTx(ctx, tx, u.ID, rank1.ID)
	if err != nil {
		return nil, err
	}
	if err := s.boosters.CreateUserBoostersTx(ctx, tx, u.ID, energyTier0.ID, clickTier0.ID); err != nil {
		return nil, err
	}
	u.SelectedCharacterID = &uc.ID

	if referrer != nil {
		ref, err := s.referrals.CreateTx(ctx, tx, referrer.ID, u.ID)
		if err != nil {
			return nil, err
		}
		reward := snap.Settings.ReferralReward
		action := &domain.ReferralAction{
			ReferralID:   ref.ID,
			ActionType:   domain.ReferralActionSignUp,
			RewardAmount: reward,
		}
		if err := s.referrals.CreateActionTx(ctx, tx, action); err != nil {
			return nil, err
		}

		referrer.IncreaseBalance(reward)
		referrer.ReferralsCount++
		referrer.TotalReferralRewards += reward
		res, err := game.Recompute(referrer, snap.Game(), now)
		if err != nil {
			return nil, err
		}
		for _, stepErr := range res.Errs {
			logger.Warn("referrer recompute sub-step skipped",
				"tg_id", referrer.TgID, "error", stepErr)
		}
		if err := s.users.UpdateTx(ctx, tx, referrer); err != nil {
			return nil, err
		}
		logger.Info("referral credited",
			"referrer_tg_id", referrer.TgID, "referred_tg_id", u.TgID, "reward", reward)
	}

	// Reload with children so the recompute sees the starting character
	// and boosters, then persist derived fields and full energy.
	u, err = s.users.GetAggregateByIDForUpdateTx(ctx, tx, u.ID)
	if err != nil {
		return nil, err
	}
	res, err := game.Recompute(u, snap.Game(), now)
	if err != nil {
		return nil, ErrCatalogMisconfigured
	}
	for _, stepErr := range res.Errs {
		logger.Warn("recompute sub-step skipped", "tg_id", u.TgID, "error", stepErr)
	}
	u.SetEnergy(u.EnergyLimit, now)
	if err := s.users.UpdateTx(ctx, tx, u); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Info("user created", "tg_id", u.TgID, "referred", referrer != nil)
	return u, nil
}

// Me reconciles elapsed time (energy regen, passive profit) and
// returns the fresh aggregate.
func (s *UserService) Me(ctx context.Context, tgID int64) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			reconcileTime(u, snap, now)
			return nil
		})
}

// SyncResult reports what one sync applied. Reason is set when the
// reported clicks yielded no balance; that is an expected outcome, not
// an error.
type SyncResult struct {
	User         *domain.User `json:"user"`
	AddedEnergy  int          `json:"added_energy"`
	ValidClicks  int          `json:"valid_clicks"`
	AddedBalance int64        `json:"added_balance"`
	AddedProfit  int64        `json:"added_profit"`
	Reason       string       `json:"reason,omitempty"`
}

const (
	syncReasonNoEnergy      = "no_energy"
	syncReasonNoValidClicks = "no_valid_clicks"
)

// applyClicks validates and credits one reported click batch. The sync
// window only advances on a credit, so a rejected batch does not
// shrink the next one.
func applyClicks(u *domain.User, clicks int, now time.Time) (valid int, gained int64, reason string) {
	valid = game.ValidClicks(u.LastClickSyncTime, now, clicks, u.Energy)
	if valid > 0 {
		gained = int64(valid) * int64(u.BalancePerClick)
		u.IncreaseBalance(gained)
		u.TotalBalanceFromClicks += gained
		u.TotalClicks += int64(valid)
		u.SetEnergy(u.Energy-valid, now)
		u.LastClickSyncTime = now
		return valid, gained, ""
	}
	if clicks > 0 {
		if u.Energy <= 0 {
			reason = syncReasonNoEnergy
		} else {
			reason = syncReasonNoValidClicks
		}
	}
	return 0, 0, reason
}

// Sync validates and applies a batch of client-reported clicks.
// Requests whose client timestamp is outside the tolerance window are
// rejected outright and logged for abuse monitoring.
func (s *UserService) Sync(ctx context.Context, tgID int64, clicks int, clientTime time.Time) (*SyncResult, error) {
	skew := time.Since(clientTime)
	if skew < 0 {
		skew = -skew
	}
	if skew > game.MaxClickToleranceSeconds*time.Second {
		logger.Warn("sync rejected, client clock out of tolerance",
			"tg_id", tgID, "skew", skew.String(), "clicks", clicks)
		return nil, ErrClockOutOfTolerance
	}

	var result SyncResult
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			addedEnergy := game.ChargedEnergy(u.LastEnergyModifiedTime, now, u.Energy, u.EnergyLimit)
			if addedEnergy > 0 {
				u.SetEnergy(u.Energy+addedEnergy, now)
			}
			result.AddedEnergy = addedEnergy

			valid, gained, reason := applyClicks(u, clicks, now)
			result.ValidClicks = valid
			result.AddedBalance = gained
			result.Reason = reason

			profit := game.AccruedProfit(u.LastProfitSyncTime, now,
				u.ProfitPerHour, snap.Settings.MaxOfflineProfitHours)
			if profit > 0 {
				u.IncreaseBalance(profit)
			}
			if now.Sub(u.LastProfitSyncTime) > 5*time.Second {
				u.LastProfitSyncTime = now
			}
			result.AddedProfit = profit
			return nil
		})
	if err != nil {
		return nil, err
	}
	result.User = u
	return &result, nil
}

// Referrals lists the users this user brought in.
func (s *UserService) Referrals(ctx context.Context, tgID int64) ([]repository.ReferredUser, error) {
	u, err := s.users.GetByTgID(ctx, tgID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.referrals.ListReferredUsers(ctx, u.ID)
}

// Leaderboard returns the top users by balance.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.users.TopByBalance(ctx, limit)
}
