// Package catalog caches the reference data (levels, characters,
// boosters, rewards, wheel, settings) that almost every request reads
// but only admins change.
package catalog

import (
	"context"
	"sync"
	"time"

	"clicker_webapp/internal/domain"
	"clicker_webapp/internal/game"
	"clicker_webapp/internal/repository"
)

const defaultTTL = 30 * time.Second

// Store serves catalog snapshots from memory, refreshing from Postgres
// after the TTL expires. Invalidate forces the next read to hit the DB.
type Store struct {
	levels     *repository.LevelRepository
	characters *repository.CharacterRepository
	boosters   *repository.BoosterRepository
	rewards    *repository.RewardRepository
	wheel      *repository.WheelRepository
	settings   *repository.SettingsRepository

	ttl time.Duration

	mu        sync.RWMutex
	snap      *Snapshot
	fetchedAt time.Time
}

// Snapshot is one consistent read of every catalog table.
type Snapshot struct {
	Levels              []*domain.UserLevel
	Characters          []*domain.Character
	EnergyLimitBoosters []*domain.BoosterLevel
	ClickPowerBoosters  []*domain.BoosterLevel
	DailyLoginRewards   []*domain.DailyLoginReward
	WheelItems          []*domain.FortuneWheelItem
	Settings            *domain.Settings
}

// Game shapes the snapshot into what the progression math consumes.
func (s *Snapshot) Game() *game.Catalog {
	return &game.Catalog{
		Levels:            s.Levels,
		DailyLoginRewards: s.DailyLoginRewards,
		Settings:          *s.Settings,
	}
}

// CharacterByRank returns the character with the given rank, or nil.
func (s *Snapshot) CharacterByRank(rank int) *domain.Character {
	for _, c := range s.Characters {
		if c.Rank == rank {
			return c
		}
	}
	return nil
}

// BoosterLevel returns the tier row of the given booster ladder, or nil.
func (s *Snapshot) BoosterLevel(t domain.BoosterType, level int) *domain.BoosterLevel {
	var ladder []*domain.BoosterLevel
	if t == domain.BoosterEnergyLimit {
		ladder = s.EnergyLimitBoosters
	} else {
		ladder = s.ClickPowerBoosters
	}
	for _, b := range ladder {
		if b.Level == level {
			return b
		}
	}
	return nil
}

func NewStore(
	levels *repository.LevelRepository,
	characters *repository.CharacterRepository,
	boosters *repository.BoosterRepository,
	rewards *repository.RewardRepository,
	wheel *repository.WheelRepository,
	settings *repository.SettingsRepository,
) *Store {
	return &Store{
		levels:     levels,
		characters: characters,
		boosters:   boosters,
		rewards:    rewards,
		wheel:      wheel,
		settings:   settings,
		ttl:        defaultTTL,
	}
}

// Get returns the cached snapshot, refreshing it when stale. A refresh
// failure with a warm cache falls back to the stale snapshot.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap, fetchedAt := s.snap, s.fetchedAt
	s.mu.RUnlock()

	if snap != nil && time.Since(fetchedAt) < s.ttl {
		return snap, nil
	}

	fresh, err := s.load(ctx)
	if err != nil {
		if snap != nil {
			return snap, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.snap = fresh
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return fresh, nil
}

// Invalidate drops the cache so admin edits show up immediately.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snap = nil
	s.mu.Unlock()
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	levels, err := s.levels.List(ctx)
	if err != nil {
		return nil, err
	}
	chars, err := s.characters.List(ctx)
	if err != nil {
		return nil, err
	}
	energyBoosters, err := s.boosters.List(ctx, domain.BoosterEnergyLimit)
	if err != nil {
		return nil, err
	}
	clickBoosters, err := s.boosters.List(ctx, domain.BoosterClickPower)
	if err != nil {
		return nil, err
	}
	rewards, err := s.rewards.ListDailyLogins(ctx)
	if err != nil {
		return nil, err
	}
	wheel, err := s.wheel.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Levels:              levels,
		Characters:          chars,
		EnergyLimitBoosters: energyBoosters,
		ClickPowerBoosters:  clickBoosters,
		DailyLoginRewards:   rewards,
		WheelItems:          wheel,
		Settings:            settings,
	}, nil
}
