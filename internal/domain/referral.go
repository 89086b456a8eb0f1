package domain

import "time"

// ReferralActionType - тип события по рефералу
type ReferralActionType string

const (
	ReferralActionSignUp ReferralActionType = "sign_up"
)

// Referral is one referrer→referred pair, created once when the
// referred user signs up with the referrer's code.
type Referral struct {
	ID         int64     `db:"id" json:"id"`
	ReferrerID int64     `db:"referrer_id" json:"referrer_id"`
	ReferredID int64     `db:"referred_id" json:"referred_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ReferralAction is an append-only ledger entry of a reward event on a
// referral. Only sign_up exists today.
type ReferralAction struct {
	ID           int64              `db:"id" json:"id"`
	ReferralID   int64              `db:"referral_id" json:"referral_id"`
	ActionType   ReferralActionType `db:"action_type" json:"action_type"`
	RewardAmount int64              `db:"reward_amount" json:"reward_amount"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}
