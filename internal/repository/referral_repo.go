package repository

import (
	"context"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReferralRepository struct {
	db *pgxpool.Pool
}

func NewReferralRepository(db *pgxpool.Pool) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateTx inserts the referrer→referred pair. Runs inside the same
// transaction that creates the referred user, so a failed credit rolls
// back the whole sign-up.
func (r *ReferralRepository) CreateTx(ctx context.Context, tx pgx.Tx, referrerID, referredID int64) (*domain.Referral, error) {
	ref := domain.Referral{ReferrerID: referrerID, ReferredID: referredID}
	err := tx.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referred_id)
		 VALUES ($1, $2) RETURNING id, created_at`,
		referrerID, referredID,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// CreateActionTx appends a reward event to the referral ledger.
func (r *ReferralRepository) CreateActionTx(ctx context.Context, tx pgx.Tx, a *domain.ReferralAction) error {
	return tx.QueryRow(ctx,
		`INSERT INTO referral_actions (referral_id, action_type, reward_amount)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.ReferralID, a.ActionType, a.RewardAmount,
	).Scan(&a.ID, &a.CreatedAt)
}

// ReferredUser is one row of the "my referrals" listing.
type ReferredUser struct {
	TgID      int64   `json:"tg_id"`
	FirstName string  `json:"first_name"`
	Username  *string `json:"username,omitempty"`
	Balance   int64   `json:"balance"`
}

// ListReferredUsers returns the users brought in by a referrer.
func (r *ReferralRepository) ListReferredUsers(ctx context.Context, referrerID int64) ([]ReferredUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.tg_id, u.first_name, u.username, u.balance
		 FROM referrals ref
		 JOIN users u ON u.id = ref.referred_id
		 WHERE ref.referrer_id = $1
		 ORDER BY ref.created_at DESC`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ReferredUser
	for rows.Next() {
		var ru ReferredUser
		if err := rows.Scan(&ru.TgID, &ru.FirstName, &ru.Username, &ru.Balance); err != nil {
			return nil, err
		}
		res = append(res, ru)
	}
	return res, rows.Err()
}

// CountByReferrer returns how many users a referrer brought in.
func (r *ReferralRepository) CountByReferrer(ctx context.Context, referrerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM referrals WHERE referrer_id = $1`, referrerID).Scan(&n)
	return n, err
}
