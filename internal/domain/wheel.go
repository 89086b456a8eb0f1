package domain

import "time"

// FortuneWheelItemType - тип приза колеса фортуны
type FortuneWheelItemType string

const (
	WheelItemNothing             FortuneWheelItemType = "nothing"
	WheelItemBalance             FortuneWheelItemType = "balance"
	WheelItemEnergyReplenishment FortuneWheelItemType = "energy_replenishment"
)

// WheelReward is the json reward payload of a wheel item. Balance is
// set for balance items, Charges for energy replenishment items.
type WheelReward struct {
	Balance int64 `json:"balance,omitempty"`
	Charges int   `json:"charges,omitempty"`
}

// FortuneWheelItem is one slot on the wheel. Items are walked in Index
// order; Chance values of all active items sum to at most 100.
type FortuneWheelItem struct {
	ID        int64                `db:"id" json:"id"`
	Index     int                  `db:"item_index" json:"index"`
	Title     string               `db:"title" json:"title"`
	Type      FortuneWheelItemType `db:"type" json:"type"`
	Chance    float64              `db:"chance" json:"chance"`
	Reward    WheelReward          `db:"reward" json:"reward"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt time.Time            `db:"updated_at" json:"updated_at"`
}
