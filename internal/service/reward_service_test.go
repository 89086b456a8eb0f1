package service

import (
	"errors"
	"testing"
	"time"

	"clicker_webapp/internal/domain"
	"clicker_webapp/internal/game"
)

var claimNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestReplenishmentGuard(t *testing.T) {
	settings := &domain.Settings{MaxDailyEnergyReplenishment: 6}
	ago := func(d time.Duration) *time.Time {
		t := claimNow.Add(-d)
		return &t
	}

	cases := []struct {
		name      string
		energy    int
		used      int
		claimedAt *time.Time
		wantErr   error
	}{
		{"first claim of the day", 50, 0, nil, nil},
		{"energy already full", 100, 0, nil, ErrEnergyAlreadyFull},
		{"energy over full", 150, 0, nil, ErrEnergyAlreadyFull},
		{"claimed half an hour ago", 50, 1, ago(30 * time.Minute), ErrReplenishmentTooSoon},
		{"claimed just under an hour ago", 50, 1, ago(time.Hour - time.Second), ErrReplenishmentTooSoon},
		{"claimed over an hour ago", 50, 1, ago(2 * time.Hour), nil},
		{"counter at max still allowed", 50, 6, ago(2 * time.Hour), nil},
		{"counter past max rejected", 50, 7, ago(2 * time.Hour), ErrReplenishmentLimit},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := &domain.User{
				Energy:                            c.energy,
				EnergyLimit:                       100,
				DailyEnergyReplenishmentUsed:      c.used,
				DailyEnergyReplenishmentClaimedAt: c.claimedAt,
			}
			err := replenishmentGuard(u, settings, claimNow)
			if !errors.Is(err, c.wantErr) {
				t.Errorf("replenishmentGuard() = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestReplenishmentGuardBlocksBackToBack(t *testing.T) {
	// The sequence a spammer produces: claim, then claim again right
	// away. The second claim must fail on the hour gate even though the
	// daily counter still has room.
	settings := &domain.Settings{MaxDailyEnergyReplenishment: 6}
	u := &domain.User{Energy: 10, EnergyLimit: 100}

	if err := replenishmentGuard(u, settings, claimNow); err != nil {
		t.Fatalf("first claim rejected: %v", err)
	}
	u.SetEnergy(u.EnergyLimit, claimNow)
	u.DailyEnergyReplenishmentUsed++
	u.DailyEnergyReplenishmentClaimedAt = &claimNow

	err := replenishmentGuard(u, settings, claimNow.Add(time.Second))
	if err == nil {
		t.Fatal("immediate second claim was allowed")
	}

	// Even with energy spent again, the hour gate still holds.
	u.SetEnergy(10, claimNow)
	if err := replenishmentGuard(u, settings, claimNow.Add(time.Minute)); !errors.Is(err, ErrReplenishmentTooSoon) {
		t.Errorf("second claim after a minute = %v, want %v", err, ErrReplenishmentTooSoon)
	}
}

func TestDailyLoginGuard(t *testing.T) {
	cat := &game.Catalog{
		DailyLoginRewards: []*domain.DailyLoginReward{
			{Day: 1, Reward: 500},
			{Day: 2, Reward: 1000},
		},
	}
	today := game.Midnight(claimNow)
	yesterday := today.AddDate(0, 0, -1)

	t.Run("first claim pays day one", func(t *testing.T) {
		u := &domain.User{}
		row, err := dailyLoginGuard(u, cat, claimNow)
		if err != nil {
			t.Fatal(err)
		}
		if row.Day != 1 || row.Reward != 500 {
			t.Errorf("got day %d reward %d, want day 1 reward 500", row.Day, row.Reward)
		}
	})

	t.Run("second claim same day rejected", func(t *testing.T) {
		u := &domain.User{LastLoginRewardDay: 1, LastDailyLoginClaimedDay: &today}
		if _, err := dailyLoginGuard(u, cat, claimNow); !errors.Is(err, ErrAlreadyClaimedToday) {
			t.Errorf("got %v, want %v", err, ErrAlreadyClaimedToday)
		}
	})

	t.Run("next day advances the streak", func(t *testing.T) {
		u := &domain.User{LastLoginRewardDay: 1, LastDailyLoginClaimedDay: &yesterday}
		row, err := dailyLoginGuard(u, cat, claimNow)
		if err != nil {
			t.Fatal(err)
		}
		if row.Day != 2 {
			t.Errorf("got day %d, want 2", row.Day)
		}
	})

	t.Run("streak past the table rejected", func(t *testing.T) {
		u := &domain.User{LastLoginRewardDay: 2, LastDailyLoginClaimedDay: &yesterday}
		if _, err := dailyLoginGuard(u, cat, claimNow); !errors.Is(err, ErrStreakTableExhausted) {
			t.Errorf("got %v, want %v", err, ErrStreakTableExhausted)
		}
	})
}
