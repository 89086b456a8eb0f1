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

var (
	ErrAlreadyClaimedToday  = errors.New("already claimed today")
	ErrEnergyAlreadyFull    = errors.New("energy is already full")
	ErrReplenishmentTooSoon = errors.New("free replenishment available once per hour")
	ErrReplenishmentLimit   = errors.New("daily replenishment limit reached")
	ErrStreakTableExhausted = errors.New("no reward row for next streak day")

	ErrTaskNotFound            = errors.New("task not found")
	ErrTaskAlreadyCompleted    = errors.New("task already completed")
	ErrTaskRequirementsNotMet  = errors.New("task requirements not met")
	ErrVerificationUnavailable = errors.New("channel verification unavailable, try again")
)

// ChannelMembershipChecker verifies that a Telegram user joined the
// given channel. Implementations must time-bound the call.
type ChannelMembershipChecker interface {
	IsChannelMember(ctx context.Context, channelID string, tgID int64) (bool, error)
}

// RewardService owns every one-shot credit: daily login streak, fixed
// daily reward, free energy replenishment, task completions and the
// fortune wheel.
type RewardService struct {
	db         *pgxpool.Pool
	users      *repository.UserRepository
	tasks      *repository.TaskRepository
	catalog    *catalog.Store
	membership ChannelMembershipChecker
	randFn     game.RandFunc
}

// NewRewardService wires the reward flows. membership may be nil in
// tests; telegram_join completions then fail closed.
func NewRewardService(db *pgxpool.Pool, store *catalog.Store, membership ChannelMembershipChecker) *RewardService {
	return &RewardService{
		db:         db,
		users:      repository.NewUserRepository(db),
		tasks:      repository.NewTaskRepository(db),
		catalog:    store,
		membership: membership,
		randFn:     game.CryptoRand,
	}
}

// ClaimResult is the shared response of the claim endpoints.
type ClaimResult struct {
	User   *domain.User `json:"user"`
	Reward int64        `json:"reward"`
	Day    int          `json:"day,omitempty"`
}

// dailyLoginGuard judges a streak claim against already-reset state and
// returns the reward row for the next day. Callers run the daily resets
// first.
func dailyLoginGuard(u *domain.User, cat *game.Catalog, now time.Time) (*domain.DailyLoginReward, error) {
	today := game.Midnight(now)
	if u.LastDailyLoginClaimedDay != nil && u.LastDailyLoginClaimedDay.Equal(today) {
		return nil, ErrAlreadyClaimedToday
	}
	row := cat.LoginRewardForDay(u.LastLoginRewardDay + 1)
	if row == nil {
		return nil, ErrStreakTableExhausted
	}
	return row, nil
}

// replenishmentGuard judges a free energy refill: full energy and
// claims less than an hour apart are rejected before the daily counter
// is consulted.
func replenishmentGuard(u *domain.User, settings *domain.Settings, now time.Time) error {
	if u.Energy >= u.EnergyLimit {
		return ErrEnergyAlreadyFull
	}
	if u.DailyEnergyReplenishmentClaimedAt != nil &&
		now.Sub(*u.DailyEnergyReplenishmentClaimedAt) < time.Hour {
		return ErrReplenishmentTooSoon
	}
	if u.DailyEnergyReplenishmentUsed > settings.MaxDailyEnergyReplenishment {
		return ErrReplenishmentLimit
	}
	return nil
}

// ClaimDailyLogin advances the login streak by one day and credits the
// catalog reward for that day. One claim per calendar day.
func (s *RewardService) ClaimDailyLogin(ctx context.Context, tgID int64) (*ClaimResult, error) {
	var result ClaimResult
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			// The recompute in the runner happens after this closure, so
			// apply the streak reset here before judging the claim.
			cat := snap.Game()
			if _, err := game.Recompute(u, cat, now); err != nil {
				return ErrCatalogMisconfigured
			}

			row, err := dailyLoginGuard(u, cat, now)
			if err != nil {
				if errors.Is(err, ErrStreakTableExhausted) {
					// The streak reset is supposed to prevent this state.
					logger.Error("login streak points past the reward table",
						"tg_id", tgID, "next_day", u.LastLoginRewardDay+1)
				}
				return err
			}

			today := game.Midnight(now)
			u.IncreaseBalance(row.Reward)
			u.LastLoginRewardDay = row.Day
			u.LastDailyLoginClaimedDay = &today
			result.Reward = row.Reward
			result.Day = row.Day
			return nil
		})
	if err != nil {
		return nil, err
	}
	result.User = u
	return &result, nil
}

// ClaimDailyReward credits the fixed daily reward, keyed purely on the
// calendar day of the last claim. No streak.
func (s *RewardService) ClaimDailyReward(ctx context.Context, tgID int64) (*ClaimResult, error) {
	var result ClaimResult
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			today := game.Midnight(now)
			if u.LastDailyRewardClaimedDay != nil && u.LastDailyRewardClaimedDay.Equal(today) {
				return ErrAlreadyClaimedToday
			}
			u.IncreaseBalance(snap.Settings.DailyReward)
			u.LastDailyRewardClaimedDay = &today
			result.Reward = snap.Settings.DailyReward
			return nil
		})
	if err != nil {
		return nil, err
	}
	result.User = u
	return &result, nil
}

// ClaimEnergyReplenishment refills energy to the limit, bounded by the
// daily free-replenishment counter, at most once per hour and never
// when energy is already full. The counter resets at the midnight after
// the last claim (recompute step).
func (s *RewardService) ClaimEnergyReplenishment(ctx context.Context, tgID int64) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			cat := snap.Game()
			if _, err := game.Recompute(u, cat, now); err != nil {
				return ErrCatalogMisconfigured
			}
			if err := replenishmentGuard(u, snap.Settings, now); err != nil {
				return err
			}
			u.SetEnergy(u.EnergyLimit, now)
			u.DailyEnergyReplenishmentUsed++
			u.DailyEnergyReplenishmentClaimedAt = &now
			return nil
		})
}

// DailyStatus is the read-only view of the caller's daily claims.
type DailyStatus struct {
	LoginStreakDay          int   `json:"login_streak_day"`
	NextLoginDay            int   `json:"next_login_day"`
	NextLoginReward         int64 `json:"next_login_reward"`
	LoginClaimedToday       bool  `json:"login_claimed_today"`
	DailyReward             int64 `json:"daily_reward"`
	DailyRewardClaimedToday bool  `json:"daily_reward_claimed_today"`
	ReplenishmentUsed       int   `json:"replenishment_used"`
	ReplenishmentMax        int   `json:"replenishment_max"`
}

// GetDailyStatus reports claim availability without persisting anything.
// The daily resets are applied to an in-memory copy so a lapsed streak
// shows as lapsed even before the next write.
func (s *RewardService) GetDailyStatus(ctx context.Context, tgID int64) (*DailyStatus, error) {
	u, err := s.users.GetAggregate(ctx, tgID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cat := snap.Game()
	if _, err := game.Recompute(u, cat, now); err != nil {
		return nil, ErrCatalogMisconfigured
	}

	today := game.Midnight(now)
	st := &DailyStatus{
		LoginStreakDay:    u.LastLoginRewardDay,
		NextLoginDay:      u.LastLoginRewardDay + 1,
		DailyReward:       snap.Settings.DailyReward,
		ReplenishmentUsed: u.DailyEnergyReplenishmentUsed,
		ReplenishmentMax:  snap.Settings.MaxDailyEnergyReplenishment,
	}
	if row := cat.LoginRewardForDay(st.NextLoginDay); row != nil {
		st.NextLoginReward = row.Reward
	}
	if u.LastDailyLoginClaimedDay != nil && u.LastDailyLoginClaimedDay.Equal(today) {
		st.LoginClaimedToday = true
	}
	if u.LastDailyRewardClaimedDay != nil && u.LastDailyRewardClaimedDay.Equal(today) {
		st.DailyRewardClaimedToday = true
	}
	return st, nil
}

// SpinResult reports the selected wheel item and the state after its
// reward was applied.
type SpinResult struct {
	User *domain.User             `json:"user"`
	Item *domain.FortuneWheelItem `json:"item"`
}

// SpinWheel draws one weighted-random wheel item and applies its
// reward: nothing, a balance credit, or an energy top-up capped at the
// energy limit.
func (s *RewardService) SpinWheel(ctx context.Context, tgID int64) (*SpinResult, error) {
	var result SpinResult
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			wheel := game.NewWheel(snap.WheelItems, s.randFn)
			item, err := wheel.Spin()
			if err != nil {
				logger.Error("fortune wheel catalog unusable", "error", err)
				return ErrCatalogMisconfigured
			}
			result.Item = item

			switch item.Type {
			case domain.WheelItemBalance:
				u.IncreaseBalance(item.Reward.Balance)
			case domain.WheelItemEnergyReplenishment:
				u.SetEnergy(u.Energy+item.Reward.Charges, now)
			case domain.WheelItemNothing:
			}
			logger.Info("fortune wheel spun",
				"tg_id", tgID, "item", item.Title, "type", string(item.Type))
			return nil
		})
	if err != nil {
		return nil, err
	}
	result.User = u
	return &result, nil
}

// TaskView is one task row plus this user's completion state.
type TaskView struct {
	*domain.EarnTask
	Completed bool `json:"completed"`
}

// ListTasks returns all tasks with the user's completion flags.
func (s *RewardService) ListTasks(ctx context.Context, tgID int64) ([]TaskView, error) {
	u, err := s.users.GetByTgID(ctx, tgID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	doneIDs, err := s.tasks.ListCompletedIDs(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	done := make(map[int64]bool, len(doneIDs))
	for _, id := range doneIDs {
		done[id] = true
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{EarnTask: t, Completed: done[t.ID]})
	}
	return views, nil
}

// CompleteTask verifies the type-specific requirement, inserts the
// exactly-once completion row and credits the reward, all in one
// transaction.
func (s *RewardService) CompleteTask(ctx context.Context, tgID, taskID int64) (*ClaimResult, error) {
	var result ClaimResult
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			task, err := s.tasks.GetByIDTx(ctx, tx, taskID)
			if err != nil {
				if errors.Is(err, repository.ErrTaskNotFound) {
					return ErrTaskNotFound
				}
				return err
			}
			if !task.UserCanComplete {
				return ErrTaskRequirementsNotMet
			}

			completed, err := s.tasks.IsCompletedTx(ctx, tx, u.ID, task.ID)
			if err != nil {
				return err
			}
			if completed {
				return ErrTaskAlreadyCompleted
			}

			if err := s.verifyTask(ctx, u, task, snap); err != nil {
				return err
			}

			completion := &domain.EarnTaskCompletion{
				UserID:       u.ID,
				TaskID:       task.ID,
				RewardAmount: task.Reward,
			}
			if err := s.tasks.CreateCompletionTx(ctx, tx, completion); err != nil {
				if errors.Is(err, repository.ErrTaskAlreadyCompleted) {
					return ErrTaskAlreadyCompleted
				}
				return err
			}
			u.IncreaseBalance(task.Reward)
			result.Reward = task.Reward
			logger.Info("task completed", "tg_id", tgID, "task_id", task.ID, "reward", task.Reward)
			return nil
		})
	if err != nil {
		return nil, err
	}
	result.User = u
	return &result, nil
}

// verifyTask runs the type-specific requirement check. The channel
// membership call fails closed: an unavailable verifier rejects the
// completion as retryable instead of handing out the reward.
func (s *RewardService) verifyTask(ctx context.Context, u *domain.User, task *domain.EarnTask, snap *catalog.Snapshot) error {
	switch task.Type {
	case domain.EarnTaskTelegramJoin:
		if s.membership == nil {
			return ErrVerificationUnavailable
		}
		member, err := s.membership.IsChannelMember(ctx, snap.Settings.TelegramChannelID, u.TgID)
		if err != nil {
			logger.Warn("channel membership check failed",
				"tg_id", u.TgID, "task_id", task.ID, "error", err)
			return ErrVerificationUnavailable
		}
		if !member {
			return ErrTaskRequirementsNotMet
		}
		return nil

	case domain.EarnTaskInviteFriends:
		if u.ReferralsCount < task.RequiredInvites() {
			return ErrTaskRequirementsNotMet
		}
		return nil

	case domain.EarnTaskFacebookJoin, domain.EarnTaskXFollow, domain.EarnTaskInstagramFollow:
		// No verifiable signal for these; following the link is taken
		// on trust.
		return nil
	}
	return ErrTaskRequirementsNotMet
}
