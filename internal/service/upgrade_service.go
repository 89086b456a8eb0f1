package service

import (
	"context"
	"errors"
	"time"

	"clicker_webapp/internal/catalog"
	"clicker_webapp/internal/domain"
	"clicker_webapp/internal/logger"
	"clicker_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrMaxLevelReached     = errors.New("already at max level")
	ErrWrongUnlockOrder    = errors.New("characters unlock in rank order")
	ErrCharacterNotMaxed   = errors.New("current character must be maxed first")
	ErrCharacterNotOwned   = errors.New("character not owned")
	ErrCharacterNotLeveled = errors.New("only the highest owned character can be leveled")
)

// UpgradeService owns the purchase flows: booster tiers, character
// unlocks and character level-ups. Every purchase debits inside the
// aggregate transaction and triggers a recompute.
type UpgradeService struct {
	db        *pgxpool.Pool
	users     *repository.UserRepository
	userChars *repository.UserCharacterRepository
	boosters  *repository.BoosterRepository
	catalog   *catalog.Store
}

func NewUpgradeService(db *pgxpool.Pool, store *catalog.Store) *UpgradeService {
	return &UpgradeService{
		db:        db,
		users:     repository.NewUserRepository(db),
		userChars: repository.NewUserCharacterRepository(db),
		boosters:  repository.NewBoosterRepository(db),
		catalog:   store,
	}
}

// BoosterTierStatus is one booster ladder position: the owned tier and
// the next purchasable tier, nil when maxed.
type BoosterTierStatus struct {
	Level int                  `json:"level"`
	Next  *domain.BoosterLevel `json:"next,omitempty"`
}

// BoosterStatus pairs both ladders for the status endpoint.
type BoosterStatus struct {
	EnergyLimit BoosterTierStatus `json:"energy_limit"`
	ClickPower  BoosterTierStatus `json:"click_power"`
}

// GetBoosterStatus reports the caller's booster tiers and upgrade
// prices without mutating anything.
func (s *UpgradeService) GetBoosterStatus(ctx context.Context, tgID int64) (*BoosterStatus, error) {
	u, err := s.users.GetAggregate(ctx, tgID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Boosters == nil || u.Boosters.EnergyLimit == nil || u.Boosters.ClickPower == nil {
		return nil, ErrCatalogMisconfigured
	}
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		return nil, err
	}

	return &BoosterStatus{
		EnergyLimit: BoosterTierStatus{
			Level: u.Boosters.EnergyLimit.Level,
			Next:  snap.BoosterLevel(domain.BoosterEnergyLimit, u.Boosters.EnergyLimit.Level+1),
		},
		ClickPower: BoosterTierStatus{
			Level: u.Boosters.ClickPower.Level,
			Next:  snap.BoosterLevel(domain.BoosterClickPower, u.Boosters.ClickPower.Level+1),
		},
	}, nil
}

// UpgradeBooster advances one booster type by exactly one tier.
func (s *UpgradeService) UpgradeBooster(ctx context.Context, tgID int64, boosterType domain.BoosterType) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			if u.Boosters == nil {
				return ErrCatalogMisconfigured
			}
			current := u.Boosters.EnergyLimit
			if boosterType == domain.BoosterClickPower {
				current = u.Boosters.ClickPower
			}
			if current == nil {
				return ErrCatalogMisconfigured
			}

			next := snap.BoosterLevel(boosterType, current.Level+1)
			if next == nil {
				return ErrMaxLevelReached
			}
			if next.Price > u.Balance {
				return ErrInsufficientFunds
			}

			u.DecreaseBalance(next.Price)
			if err := s.boosters.SetUserBoosterTx(ctx, tx, u.ID, boosterType, next.ID); err != nil {
				return err
			}
			if boosterType == domain.BoosterClickPower {
				u.Boosters.ClickPower = next
			} else {
				u.Boosters.EnergyLimit = next
				// Refill to the new capacity. The recompute after this
				// closure raises the limit to exactly this value.
				u.Energy = u.EnergyLimit + snap.Settings.EnergyLimitPerBooster
				u.LastEnergyModifiedTime = now
			}
			logger.Info("booster upgraded",
				"tg_id", tgID, "type", string(boosterType), "level", next.Level, "price", next.Price)
			return nil
		})
}

// unlockGuard validates the strict unlock sequence: only the rank right
// above the highest owned character, and only once that character is
// maxed. Returns the catalog character to buy.
func unlockGuard(u *domain.User, snap *catalog.Snapshot, targetRank int) (*domain.Character, error) {
	highest := u.HighestOwnedCharacter()
	if highest == nil {
		return nil, ErrCatalogMisconfigured
	}
	if targetRank != highest.Character.Rank+1 {
		return nil, ErrWrongUnlockOrder
	}
	if highest.CurrentLevel < highest.Character.MaxLevel {
		return nil, ErrCharacterNotMaxed
	}

	char := snap.CharacterByRank(targetRank)
	if char == nil {
		return nil, ErrWrongUnlockOrder
	}
	if char.Price > u.Balance {
		return nil, ErrInsufficientFunds
	}
	return char, nil
}

// UnlockCharacter buys the next character in strict rank order. The
// current frontier character must be maxed; the new one starts at
// ladder level 0 and becomes the selected character.
func (s *UpgradeService) UnlockCharacter(ctx context.Context, tgID int64, targetRank int) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			char, err := unlockGuard(u, snap, targetRank)
			if err != nil {
				return err
			}

			u.DecreaseBalance(char.Price)
			uc, err := s.userChars.CreateTx(ctx, tx, u.ID, char.ID)
			if err != nil {
				return err
			}
			uc.Character = char
			u.OwnedCharacters = append(u.OwnedCharacters, uc)
			u.SelectedCharacterID = &uc.ID
			u.SelectedCharacter = uc
			// Unlocking grows the capacity; refill to the new full.
			u.Energy = u.EnergyLimit + snap.Settings.EnergyLimitPerCharacter
			u.LastEnergyModifiedTime = now
			logger.Info("character unlocked",
				"tg_id", tgID, "rank", targetRank, "price", char.Price)
			return nil
		})
}

// LevelUpCharacter advances the frontier character one ladder level.
func (s *UpgradeService) LevelUpCharacter(ctx context.Context, tgID int64, rank int) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			highest := u.HighestOwnedCharacter()
			if highest == nil {
				return ErrCatalogMisconfigured
			}
			if rank != highest.Character.Rank {
				return ErrCharacterNotLeveled
			}

			char := snap.CharacterByRank(rank)
			if char == nil {
				return ErrCatalogMisconfigured
			}
			next := char.LevelByNumber(highest.CurrentLevel + 1)
			if next == nil {
				return ErrMaxLevelReached
			}
			if next.Price > u.Balance {
				return ErrInsufficientFunds
			}

			u.DecreaseBalance(next.Price)
			if err := s.userChars.SetLevelTx(ctx, tx, highest.ID, next.Level); err != nil {
				return err
			}
			highest.CurrentLevel = next.Level
			highest.Character = char
			if u.SelectedCharacter != nil && u.SelectedCharacter.ID == highest.ID {
				u.SelectedCharacter = highest
			}
			logger.Info("character leveled up",
				"tg_id", tgID, "rank", rank, "level", next.Level, "price", next.Price)
			return nil
		})
}

// SelectCharacter switches which owned character contributes its
// profit. Free, no purchase involved.
func (s *UpgradeService) SelectCharacter(ctx context.Context, tgID int64, rank int) (*domain.User, error) {
	return mutateUser(ctx, s.db, s.users, s.catalog, tgID,
		func(tx pgx.Tx, u *domain.User, snap *catalog.Snapshot, now time.Time) error {
			uc := u.OwnedCharacterByRank(rank)
			if uc == nil {
				return ErrCharacterNotOwned
			}
			u.SelectedCharacterID = &uc.ID
			u.SelectedCharacter = uc
			// The recompute needs the ladder of the newly selected
			// character; the snapshot has it.
			if char := snap.CharacterByRank(rank); char != nil {
				uc.Character = char
			}
			return nil
		})
}
