package game

import (
	"errors"
	"fmt"
	"time"

	"clicker_webapp/internal/domain"
)

// ErrNoLevelForBalance means the level ladder has no row with
// required_balance <= balance, i.e. level 0 is missing from the
// catalog. That is operator-facing misconfiguration, not user error.
var ErrNoLevelForBalance = errors.New("no catalog level matches balance")

// Catalog is the immutable snapshot of reference data the progression
// math reads. Levels are ordered by level ascending, login rewards by
// day ascending.
type Catalog struct {
	Levels            []*domain.UserLevel
	DailyLoginRewards []*domain.DailyLoginReward
	Settings          domain.Settings
}

// LevelForBalance returns the highest level whose required balance is
// covered, or nil when even the first level is out of reach.
func (c *Catalog) LevelForBalance(balance int64) *domain.UserLevel {
	var best *domain.UserLevel
	for _, l := range c.Levels {
		if l.RequiredBalance <= balance {
			best = l
		}
	}
	return best
}

// LoginRewardForDay returns the streak table row for the given day, or
// nil when the table is exhausted.
func (c *Catalog) LoginRewardForDay(day int) *domain.DailyLoginReward {
	for _, r := range c.DailyLoginRewards {
		if r.Day == day {
			return r
		}
	}
	return nil
}

// RecomputeResult reports what a recompute pass did. Errs holds
// sub-step failures that were skipped over; the caller logs them.
type RecomputeResult struct {
	LeveledUp   bool
	LevelReward int64
	Errs        []error
}

// Recompute derives every dependent field of the user aggregate from
// its primary state and the catalog. It runs after every mutation.
//
// Step order matters: the level ratchet can credit a reward and the
// energy refill on level-up needs the freshly computed energy limit.
// The later steps read disjoint fields, so a failure in one of them is
// recorded and the rest still run.
func Recompute(u *domain.User, cat *Catalog, now time.Time) (RecomputeResult, error) {
	var res RecomputeResult

	// 1. Level ratchet: level only ever goes up, even if balance later
	// drops below the threshold (purchases don't demote).
	lvl := cat.LevelForBalance(u.Balance)
	if lvl == nil {
		return res, ErrNoLevelForBalance
	}
	if u.Level == nil || lvl.Level > u.Level.Level {
		if u.Level != nil {
			res.LeveledUp = true
			res.LevelReward = lvl.BalanceReward
			u.IncreaseBalance(lvl.BalanceReward)
		}
		u.Level = lvl
		u.LevelID = lvl.ID
	}

	// 2. Balance per click.
	perClick := u.Level.Level + len(u.OwnedCharacters)
	if u.Boosters != nil && u.Boosters.ClickPower != nil {
		perClick += u.Boosters.ClickPower.Level
	} else {
		res.Errs = append(res.Errs, errors.New("click power booster not loaded"))
	}
	u.BalancePerClick = perClick

	// 3. Energy limit.
	limit := cat.Settings.StartingEnergyLimit +
		len(u.OwnedCharacters)*cat.Settings.EnergyLimitPerCharacter +
		u.Level.Level*cat.Settings.EnergyLimitPerLevel
	if u.Boosters != nil && u.Boosters.EnergyLimit != nil {
		limit += u.Boosters.EnergyLimit.Level * cat.Settings.EnergyLimitPerBooster
	} else {
		res.Errs = append(res.Errs, errors.New("energy limit booster not loaded"))
	}
	u.EnergyLimit = limit
	if u.Energy > u.EnergyLimit {
		u.Energy = u.EnergyLimit
	}

	// Crossing a level refills energy to the new full capacity.
	if res.LeveledUp {
		u.SetEnergy(u.EnergyLimit, now)
	}

	// 4. Profit per hour.
	profit := u.Level.ProfitPerHour +
		u.ReferredSignupReward +
		int64(u.ReferralsCount)*cat.Settings.ReferralReward
	if u.SelectedCharacter != nil && u.SelectedCharacter.Character != nil {
		charLvl := u.SelectedCharacter.Character.LevelByNumber(u.SelectedCharacter.CurrentLevel)
		if charLvl != nil {
			profit += charLvl.ProfitPerHour
		} else {
			res.Errs = append(res.Errs, fmt.Errorf("character %d has no ladder row for level %d",
				u.SelectedCharacter.CharacterID, u.SelectedCharacter.CurrentLevel))
		}
	} else {
		res.Errs = append(res.Errs, errors.New("selected character not loaded"))
	}
	u.ProfitPerHour = profit

	// 5. Daily free replenishment resets after the midnight following
	// the last claim.
	resetDailyReplenishment(u, now)

	// 6. Login streak reset with a one-day grace window.
	if err := resetLoginStreak(u, cat, now); err != nil {
		res.Errs = append(res.Errs, err)
	}

	return res, nil
}

func resetDailyReplenishment(u *domain.User, now time.Time) {
	if u.DailyEnergyReplenishmentClaimedAt != nil &&
		NextMidnight(*u.DailyEnergyReplenishmentClaimedAt).After(now) {
		return
	}
	u.DailyEnergyReplenishmentUsed = 0
	u.DailyEnergyReplenishmentClaimedAt = nil
}

// resetLoginStreak zeroes the streak when more than one day was missed.
// A user who claimed yesterday keeps the streak for one more day, but
// only while the table still has a next-day reward to hand out.
func resetLoginStreak(u *domain.User, cat *Catalog, now time.Time) error {
	today := Midnight(now)

	days := 0
	if u.LastDailyLoginClaimedDay != nil {
		days = int(today.Sub(Midnight(*u.LastDailyLoginClaimedDay)).Hours() / 24)
	}
	if days < 0 {
		return fmt.Errorf("daily login claim day %v is in the future", *u.LastDailyLoginClaimedDay)
	}

	if days == 0 || days == 1 {
		if u.LastLoginRewardDay == 0 {
			return nil
		}
		if days == 0 {
			return nil
		}
		// days == 1: the streak survives while an unclaimed next day
		// still exists in the catalog.
		if cat.LoginRewardForDay(u.LastLoginRewardDay+1) != nil {
			return nil
		}
	}

	u.LastLoginRewardDay = 0
	u.LastDailyLoginClaimedDay = nil
	return nil
}
