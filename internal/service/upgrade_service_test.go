package service

import (
	"errors"
	"testing"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/domain"
)

func unlockFixture(currentLevel int, balance int64) (*domain.User, *catalog.Snapshot) {
	rank1 := &domain.Character{ID: 1, Rank: 1, MaxLevel: 3}
	rank2 := &domain.Character{ID: 2, Rank: 2, Price: 25000, MaxLevel: 3}
	snap := &catalog.Snapshot{Characters: []*domain.Character{rank1, rank2}}
	u := &domain.User{
		Balance: balance,
		OwnedCharacters: []*domain.UserCharacter{
			{ID: 10, CharacterID: rank1.ID, CurrentLevel: currentLevel, Character: rank1},
		},
	}
	return u, snap
}

func TestUnlockGuard(t *testing.T) {
	cases := []struct {
		name         string
		currentLevel int
		balance      int64
		targetRank   int
		wantErr      error
	}{
		{"next rank with maxed frontier", 3, 30000, 2, nil},
		{"skipping a rank", 3, 30000, 3, ErrWrongUnlockOrder},
		{"re-buying an owned rank", 3, 30000, 1, ErrWrongUnlockOrder},
		{"frontier not maxed", 2, 30000, 2, ErrCharacterNotMaxed},
		{"insufficient balance", 3, 24999, 2, ErrInsufficientFunds},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u, snap := unlockFixture(c.currentLevel, c.balance)
			char, err := unlockGuard(u, snap, c.targetRank)
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("unlockGuard(rank=%d) = %v, want %v", c.targetRank, err, c.wantErr)
			}
			if c.wantErr == nil && (char == nil || char.Rank != c.targetRank) {
				t.Errorf("unlockGuard returned %+v, want rank %d", char, c.targetRank)
			}
		})
	}
}

func TestUnlockGuardRankMissingFromCatalog(t *testing.T) {
	u, snap := unlockFixture(3, 100000)
	snap.Characters = snap.Characters[:1] // rank 2 removed

	if _, err := unlockGuard(u, snap, 2); !errors.Is(err, ErrWrongUnlockOrder) {
		t.Errorf("got %v, want %v", err, ErrWrongUnlockOrder)
	}
}
