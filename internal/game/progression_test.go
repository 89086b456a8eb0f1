package game

import (
	"testing"
	"time"

	"clicker_webapp/internal/domain"
)

func testCatalog() *Catalog {
	return &Catalog{
		Levels: []*domain.UserLevel{
			{ID: 1, Level: 0, Name: "Rookie", RequiredBalance: 0},
			{ID: 2, Level: 1, Name: "Amateur", BalanceReward: 5000, RequiredBalance: 10000, ProfitPerHour: 100},
			{ID: 3, Level: 2, Name: "Hustler", BalanceReward: 10000, RequiredBalance: 50000, ProfitPerHour: 300},
		},
		DailyLoginRewards: []*domain.DailyLoginReward{
			{Day: 1, Reward: 500},
			{Day: 2, Reward: 1000},
			{Day: 3, Reward: 2500},
		},
		Settings: domain.Settings{
			StartingEnergyLimit:     100,
			EnergyLimitPerCharacter: 100,
			EnergyLimitPerLevel:     100,
			EnergyLimitPerBooster:   100,
			ReferralReward:          5000,
		},
	}
}

func testUser(cat *Catalog) *domain.User {
	char := &domain.Character{
		ID: 1, Rank: 1, MaxLevel: 2,
		Levels: []*domain.CharacterLevel{
			{CharacterID: 1, Level: 0, ProfitPerHour: 50},
			{CharacterID: 1, Level: 1, Price: 2000, ProfitPerHour: 120},
			{CharacterID: 1, Level: 2, Price: 5000, ProfitPerHour: 250},
		},
	}
	uc := &domain.UserCharacter{ID: 1, UserID: 1, CharacterID: 1, Character: char}
	return &domain.User{
		ID:      1,
		Level:   cat.Levels[0],
		LevelID: cat.Levels[0].ID,
		Boosters: &domain.UserBoosters{
			EnergyLimit: &domain.BoosterLevel{Level: 0},
			ClickPower:  &domain.BoosterLevel{Level: 0},
		},
		OwnedCharacters:   []*domain.UserCharacter{uc},
		SelectedCharacter: uc,
	}
}

func TestRecomputeDerivedFields(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.Balance = 500

	res, err := Recompute(u, cat, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errs) != 0 {
		t.Fatalf("unexpected sub-step errors: %v", res.Errs)
	}
	if res.LeveledUp {
		t.Error("level up reported below the first threshold")
	}

	// level 0 + one character + booster tier 0
	if u.BalancePerClick != 1 {
		t.Errorf("BalancePerClick = %d, want 1", u.BalancePerClick)
	}
	// 100 base + 100 for the character + 0 for level 0
	if u.EnergyLimit != 200 {
		t.Errorf("EnergyLimit = %d, want 200", u.EnergyLimit)
	}
	// character ladder level 0
	if u.ProfitPerHour != 50 {
		t.Errorf("ProfitPerHour = %d, want 50", u.ProfitPerHour)
	}
}

func TestRecomputeLevelUp(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.Balance = 12000
	u.Energy = 10
	u.EnergyLimit = 200

	res, err := Recompute(u, cat, base)
	if err != nil {
		t.Fatal(err)
	}
	if !res.LeveledUp {
		t.Fatal("expected level up at balance 12000")
	}
	if res.LevelReward != 5000 {
		t.Errorf("LevelReward = %d, want 5000", res.LevelReward)
	}
	if u.Level.Level != 1 {
		t.Errorf("Level = %d, want 1", u.Level.Level)
	}
	if u.Balance != 17000 {
		t.Errorf("Balance = %d, want 17000 (12000 + reward)", u.Balance)
	}
	// 100 base + 100 character + 100 for level 1
	if u.EnergyLimit != 300 {
		t.Errorf("EnergyLimit = %d, want 300", u.EnergyLimit)
	}
	// level up refills energy to the new cap
	if u.Energy != u.EnergyLimit {
		t.Errorf("Energy = %d, want full %d after level up", u.Energy, u.EnergyLimit)
	}
	// level 1 profit + character level 0 profit
	if u.ProfitPerHour != 150 {
		t.Errorf("ProfitPerHour = %d, want 150", u.ProfitPerHour)
	}
}

func TestRecomputeLevelRatchet(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.Balance = 12000

	if _, err := Recompute(u, cat, base); err != nil {
		t.Fatal(err)
	}
	if u.Level.Level != 1 {
		t.Fatalf("setup: Level = %d, want 1", u.Level.Level)
	}

	// Spending back below the threshold must not demote.
	u.DecreaseBalance(16000)
	res, err := Recompute(u, cat, base)
	if err != nil {
		t.Fatal(err)
	}
	if res.LeveledUp {
		t.Error("level up reported with no threshold crossed")
	}
	if u.Level.Level != 1 {
		t.Errorf("Level = %d after spend, want 1 (ratchet)", u.Level.Level)
	}
}

func TestRecomputeSkippingLevels(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.Balance = 60000

	res, err := Recompute(u, cat, base)
	if err != nil {
		t.Fatal(err)
	}
	if u.Level.Level != 2 {
		t.Errorf("Level = %d, want 2", u.Level.Level)
	}
	// Only the landing level's reward is paid, intermediate levels are
	// skipped over.
	if res.LevelReward != 10000 {
		t.Errorf("LevelReward = %d, want 10000", res.LevelReward)
	}
}

func TestRecomputeEnergyClamp(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.Energy = 10000

	if _, err := Recompute(u, cat, base); err != nil {
		t.Fatal(err)
	}
	if u.Energy != u.EnergyLimit {
		t.Errorf("Energy = %d, want clamped to limit %d", u.Energy, u.EnergyLimit)
	}
}

func TestRecomputeReferralProfit(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	u.ReferralsCount = 3
	u.ReferredSignupReward = 1000

	if _, err := Recompute(u, cat, base); err != nil {
		t.Fatal(err)
	}
	// character 50 + own signup bonus 1000 + 3 referrals * 5000
	if u.ProfitPerHour != 16050 {
		t.Errorf("ProfitPerHour = %d, want 16050", u.ProfitPerHour)
	}
}

func TestRecomputeMissingLevelZero(t *testing.T) {
	cat := testCatalog()
	cat.Levels = cat.Levels[1:] // drop level 0
	u := testUser(cat)
	u.Balance = 100

	if _, err := Recompute(u, cat, base); err == nil {
		t.Error("expected error when no level matches the balance")
	}
}

func TestDailyReplenishmentReset(t *testing.T) {
	cat := testCatalog()

	claimed := time.Date(2025, 6, 14, 22, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		now      time.Time
		wantUsed int
	}{
		{"same day keeps counter", time.Date(2025, 6, 14, 23, 30, 0, 0, time.UTC), 4},
		{"after midnight resets", time.Date(2025, 6, 15, 0, 0, 1, 0, time.UTC), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := testUser(cat)
			at := claimed
			u.DailyEnergyReplenishmentUsed = 4
			u.DailyEnergyReplenishmentClaimedAt = &at

			if _, err := Recompute(u, cat, c.now); err != nil {
				t.Fatal(err)
			}
			if u.DailyEnergyReplenishmentUsed != c.wantUsed {
				t.Errorf("used = %d, want %d", u.DailyEnergyReplenishmentUsed, c.wantUsed)
			}
		})
	}
}

func TestLoginStreakReset(t *testing.T) {
	cat := testCatalog()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		t := time.Date(2025, 6, d, 8, 0, 0, 0, time.UTC)
		return &t
	}

	cases := []struct {
		name      string
		streakDay int
		claimedAt *time.Time
		wantDay   int
	}{
		{"never claimed", 0, nil, 0},
		{"claimed today", 2, day(15), 2},
		{"claimed yesterday keeps streak", 2, day(14), 2},
		{"missed a day resets", 2, day(13), 0},
		{"long gap resets", 2, day(1), 0},
		{"yesterday but table exhausted resets", 3, day(14), 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := testUser(cat)
			u.LastLoginRewardDay = c.streakDay
			u.LastDailyLoginClaimedDay = c.claimedAt

			if _, err := Recompute(u, cat, now); err != nil {
				t.Fatal(err)
			}
			if u.LastLoginRewardDay != c.wantDay {
				t.Errorf("LastLoginRewardDay = %d, want %d", u.LastLoginRewardDay, c.wantDay)
			}
			if c.wantDay == 0 && c.streakDay != 0 && u.LastDailyLoginClaimedDay != nil {
				t.Error("claimed-day marker should be cleared on reset")
			}
		})
	}
}

func TestLoginStreakFutureClaim(t *testing.T) {
	cat := testCatalog()
	u := testUser(cat)
	future := base.AddDate(0, 0, 2)
	u.LastLoginRewardDay = 1
	u.LastDailyLoginClaimedDay = &future

	res, err := Recompute(u, cat, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errs) == 0 {
		t.Error("expected a sub-step error for a future claim day")
	}
	// The bogus marker is left alone for the operator to inspect.
	if u.LastLoginRewardDay != 1 {
		t.Errorf("LastLoginRewardDay = %d, want untouched 1", u.LastLoginRewardDay)
	}
}
