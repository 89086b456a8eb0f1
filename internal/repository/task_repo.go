package repository

import (
	"context"
	"encoding/json"
	"errors"

	"clicker_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, title, type, reward, requirements, user_can_complete, created_at, updated_at`

func scanTask(row pgx.Row) (*domain.EarnTask, error) {
	var t domain.EarnTask
	var reqs []byte
	err := row.Scan(&t.ID, &t.Title, &t.Type, &t.Reward, &reqs, &t.UserCanComplete, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	if len(reqs) > 0 {
		if err := json.Unmarshal(reqs, &t.Requirements); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// List returns all earn tasks.
func (r *TaskRepository) List(ctx context.Context) ([]*domain.EarnTask, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM earn_tasks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.EarnTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// GetByIDTx fetches one task inside the completion transaction.
func (r *TaskRepository) GetByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.EarnTask, error) {
	return scanTask(tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM earn_tasks WHERE id = $1`, id))
}

// IsCompletedTx reports whether the user already has a completion row.
func (r *TaskRepository) IsCompletedTx(ctx context.Context, tx pgx.Tx, userID, taskID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM task_completions WHERE user_id = $1 AND task_id = $2)`,
		userID, taskID,
	).Scan(&exists)
	return exists, err
}

// CreateCompletionTx inserts the exactly-once completion row. The
// unique (user_id, task_id) constraint turns a concurrent duplicate
// into ErrTaskAlreadyCompleted instead of a second reward.
func (r *TaskRepository) CreateCompletionTx(ctx context.Context, tx pgx.Tx, c *domain.EarnTaskCompletion) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO task_completions (user_id, task_id, reward_amount)
		 VALUES ($1, $2, $3) RETURNING id, completed_at`,
		c.UserID, c.TaskID, c.RewardAmount,
	).Scan(&c.ID, &c.CompletedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTaskAlreadyCompleted
		}
		return err
	}
	return nil
}

// ListCompletedIDs returns the ids of tasks the user finished.
func (r *TaskRepository) ListCompletedIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT task_id FROM task_completions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		res = append(res, id)
	}
	return res, rows.Err()
}
