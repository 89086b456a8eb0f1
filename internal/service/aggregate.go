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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserBanned           = errors.New("user is banned")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrCatalogMisconfigured = errors.New("catalog misconfigured")

	// ErrTryAgain covers transient failures (lock contention, version
	// conflict after retries). Handlers map it to 503, not 400.
	ErrTryAgain = errors.New("temporary failure, try again")
)

const mutateRetries = 3

// mutateFn runs inside the user transaction with the aggregate row
// locked. Mutate the aggregate in place; the runner recomputes derived
// fields and persists afterwards.
type mutateFn func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error

// mutateUser is the single write path for the user aggregate:
// load FOR UPDATE, validate, mutate, recompute, persist, all in one
// transaction. A version conflict re-runs the whole cycle a bounded
// number of times before surfacing as transient.
func mutateUser(
	ctx context.Context,
	db *pgxpool.Pool,
	users *repository.UserRepository,
	store *catalog.Store,
	tgID int64,
	fn mutateFn,
) (*domain.User, error) {
	snap, err := store.Get(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < mutateRetries; attempt++ {
		u, err := mutateUserOnce(ctx, db, users, snap, tgID, fn)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		logger.Warn("user aggregate version conflict, retrying",
			"tg_id", tgID, "attempt", attempt+1)
	}
	logger.Error("user aggregate update kept conflicting", "tg_id", tgID, "error", lastErr)
	return nil, ErrTryAgain
}

func mutateUserOnce(
	ctx context.Context,
	db *pgxpool.Pool,
	users *repository.UserRepository,
	snap *catalog.Snapshot,
	tgID int64,
	fn mutateFn,
) (*domain.User, error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u, err := users.GetAggregateForUpdateTx(ctx, tx, tgID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.IsBanned {
		return nil, ErrUserBanned
	}

	now := time.Now()
	if err := fn(tx, u, snap, now); err != nil {
		return nil, err
	}

	res, err := game.Recompute(u, snap.Game(), now)
	if err != nil {
		logger.Error("recompute failed", "tg_id", tgID, "error", err)
		return nil, ErrCatalogMisconfigured
	}
	for _, stepErr := range res.Errs {
		logger.Warn("recompute sub-step skipped", "tg_id", tgID, "error", stepErr)
	}
	if res.LeveledUp {
		logger.Info("user leveled up",
			"tg_id", tgID, "level", u.Level.Level, "reward", res.LevelReward)
	}

	if err := users.UpdateTx(ctx, tx, u); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// reconcileTime applies elapsed-time effects (energy regeneration and
// passive profit) to the aggregate. Shared by /me and sync.
func reconcileTime(u *domain.User, snap *catalog.Snapshot, now time.Time) (addedEnergy int, addedProfit int64) {
	addedEnergy = game.ChargedEnergy(u.LastEnergyModifiedTime, now, u.Energy, u.EnergyLimit)
	if addedEnergy > 0 {
		u.SetEnergy(u.Energy+addedEnergy, now)
	}

	addedProfit = game.AccruedProfit(u.LastProfitSyncTime, now,
		u.ProfitPerHour, snap.Settings.MaxOfflineProfitHours)
	if addedProfit > 0 {
		u.IncreaseBalance(addedProfit)
	}
	if now.Sub(u.LastProfitSyncTime) > 5*time.Second {
		u.LastProfitSyncTime = now
	}
	return addedEnergy, addedProfit
}
