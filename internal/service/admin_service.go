package service

import (
	"context"
	"errors"
	"time"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/domain"
	"clicker_webapp/internal/logger"
	"clicker_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminService backs the admin bot: aggregate stats, bans and manual
// balance corrections.
type AdminService struct {
	db      *pgxpool.Pool
	users   *repository.UserRepository
	catalog *catalog.Store
}

func NewAdminService(db *pgxpool.Pool, store *catalog.Store) *AdminService {
	return &AdminService{
		db:      db,
		users:   repository.NewUserRepository(db),
		catalog: store,
	}
}

// Stats is a platform snapshot for the admin bot.
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	NewUsersToday    int64 `json:"new_users_today"`
	ActiveUsersToday int64 `json:"active_users_today"`
	BannedUsers      int64 `json:"banned_users"`
	TotalBalance     int64 `json:"total_balance"`
	TotalClicks      int64 `json:"total_clicks"`
	ReferralsTotal   int64 `json:"referrals_total"`
	TasksCompleted   int64 `json:"tasks_completed"`
}

// GetStats collects counters across the whole user base. Individual
// scan failures are ignored so one broken query does not blank the
// whole report.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	today := time.Now().Truncate(24 * time.Hour)

	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, today).
		Scan(&stats.NewUsersToday)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE last_click_sync_time >= $1`, today).
		Scan(&stats.ActiveUsersToday)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_banned`).Scan(&stats.BannedUsers)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM users`).Scan(&stats.TotalBalance)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(total_clicks), 0) FROM users`).Scan(&stats.TotalClicks)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM referrals`).Scan(&stats.ReferralsTotal)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM task_completions`).Scan(&stats.TasksCompleted)

	return stats, nil
}

// SetBanned bans or unbans a user by Telegram id.
func (s *AdminService) SetBanned(ctx context.Context, tgID int64, banned bool) error {
	err := s.users.SetBanned(ctx, tgID, banned)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	logger.Info("ban flag changed", "tg_id", tgID, "banned", banned)
	return nil
}

// AddBalance credits a manual correction and recomputes, so a grant
// that crosses a level threshold behaves like any other credit.
func (s *AdminService) AddBalance(ctx context.Context, tgID, amount int64) (*domain.User, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	u, err := mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			u.IncreaseBalance(amount)
			return nil
		})
	if err != nil {
		return nil, err
	}
	logger.Info("manual balance credit", "tg_id", tgID, "amount", amount)
	return u, nil
}

// AllUserTgIDs returns every non-banned user's Telegram id, for
// broadcasts.
func (s *AdminService) AllUserTgIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT tg_id FROM users WHERE NOT is_banned ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InvalidateCatalog drops the catalog cache after admin edits.
func (s *AdminService) InvalidateCatalog() {
	s.catalog.Invalidate()
}
