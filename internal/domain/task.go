package domain

import "time"

// EarnTaskType - тип задания
type EarnTaskType string

const (
	EarnTaskTelegramJoin    EarnTaskType = "telegram_join"
	EarnTaskFacebookJoin    EarnTaskType = "facebook_join"
	EarnTaskXFollow         EarnTaskType = "x_follow"
	EarnTaskInstagramFollow EarnTaskType = "instagram_follow"
	EarnTaskInviteFriends   EarnTaskType = "invite_friends"
)

// EarnTask is a one-time reward task from the catalog. Requirements is
// a type-specific payload: a "url" for join/follow tasks, a "count" for
// invite_friends.
type EarnTask struct {
	ID              int64                  `db:"id" json:"id"`
	Title           string                 `db:"title" json:"title"`
	Type            EarnTaskType           `db:"type" json:"type"`
	Reward          int64                  `db:"reward" json:"reward"`
	Requirements    map[string]interface{} `db:"requirements" json:"requirements"`
	UserCanComplete bool                   `db:"user_can_complete" json:"user_can_complete"`
	CreatedAt       time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time              `db:"updated_at" json:"updated_at"`
}

// RequiredInvites reads the invite_friends requirement count.
func (t *EarnTask) RequiredInvites() int {
	v, ok := t.Requirements["count"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64: // json numbers decode as float64
		return int(n)
	case int:
		return n
	}
	return 0
}

// EarnTaskCompletion is the exactly-once record of a user finishing a
// task, unique per (user, task).
type EarnTaskCompletion struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	TaskID       int64     `db:"task_id" json:"task_id"`
	RewardAmount int64     `db:"reward_amount" json:"reward_amount"`
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
}
