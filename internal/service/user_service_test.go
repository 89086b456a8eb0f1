package service

import (
	"testing"
	"time"

	"clicker_webapp/internal/domain"
)

func TestApplyClicks(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastSync := now.Add(-5 * time.Second)

	t.Run("valid batch credits and advances the window", func(t *testing.T) {
		u := &domain.User{
			Energy:            100,
			EnergyLimit:       100,
			BalancePerClick:   2,
			LastClickSyncTime: lastSync,
		}
		valid, gained, reason := applyClicks(u, 30, now)
		if valid != 30 || gained != 60 || reason != "" {
			t.Fatalf("applyClicks = (%d, %d, %q), want (30, 60, \"\")", valid, gained, reason)
		}
		if u.Balance != 60 || u.Energy != 70 {
			t.Errorf("balance=%d energy=%d, want 60 and 70", u.Balance, u.Energy)
		}
		if !u.LastClickSyncTime.Equal(now) {
			t.Errorf("LastClickSyncTime = %v, want advanced to %v", u.LastClickSyncTime, now)
		}
	})

	t.Run("zero-energy batch keeps the window open", func(t *testing.T) {
		u := &domain.User{
			Energy:            0,
			EnergyLimit:       100,
			BalancePerClick:   2,
			LastClickSyncTime: lastSync,
		}
		valid, gained, reason := applyClicks(u, 30, now)
		if valid != 0 || gained != 0 {
			t.Fatalf("applyClicks = (%d, %d), want (0, 0)", valid, gained)
		}
		if reason != syncReasonNoEnergy {
			t.Errorf("reason = %q, want %q", reason, syncReasonNoEnergy)
		}
		// A rejected batch must not shrink the next accumulation window.
		if !u.LastClickSyncTime.Equal(lastSync) {
			t.Errorf("LastClickSyncTime moved to %v on a rejected batch", u.LastClickSyncTime)
		}
	})

	t.Run("stale window batch reports no valid clicks", func(t *testing.T) {
		u := &domain.User{
			Energy:            100,
			EnergyLimit:       100,
			BalancePerClick:   2,
			LastClickSyncTime: now, // no time elapsed
		}
		_, _, reason := applyClicks(u, 30, now)
		if reason != syncReasonNoValidClicks {
			t.Errorf("reason = %q, want %q", reason, syncReasonNoValidClicks)
		}
		if !u.LastClickSyncTime.Equal(now) {
			t.Errorf("LastClickSyncTime = %v, want untouched", u.LastClickSyncTime)
		}
	})

	t.Run("no clicks reported gives no reason", func(t *testing.T) {
		u := &domain.User{Energy: 100, EnergyLimit: 100, LastClickSyncTime: lastSync}
		_, _, reason := applyClicks(u, 0, now)
		if reason != "" {
			t.Errorf("reason = %q, want empty", reason)
		}
	})
}
