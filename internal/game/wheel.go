package game

import (
	"crypto/rand"
	"errors"
	"math/big"

	"clicker_webapp/internal/domain"
)

var ErrEmptyWheel = errors.New("fortune wheel has no items")

// RandFunc returns a uniform draw in [0, 1). Injectable so spin
// outcomes are reproducible in tests.
type RandFunc func() float64

// CryptoRand draws from crypto/rand with 1e-6 precision.
func CryptoRand() float64 {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		n = big.NewInt(500_000)
	}
	return float64(n.Int64()) / 1_000_000.0
}

// Wheel performs weighted random selection over an ordered item list.
type Wheel struct {
	items []*domain.FortuneWheelItem
	rand  RandFunc
}

// NewWheel builds a wheel over items (already ordered by index). A nil
// randFn falls back to CryptoRand.
func NewWheel(items []*domain.FortuneWheelItem, randFn RandFunc) *Wheel {
	if randFn == nil {
		randFn = CryptoRand
	}
	return &Wheel{items: items, rand: randFn}
}

// Spin draws r uniformly in [0, totalChance) and walks the items in
// order, selecting the first whose accumulated chance exceeds r.
func (w *Wheel) Spin() (*domain.FortuneWheelItem, error) {
	if len(w.items) == 0 {
		return nil, ErrEmptyWheel
	}

	total := 0.0
	for _, item := range w.items {
		total += item.Chance
	}
	if total <= 0 {
		return nil, ErrEmptyWheel
	}

	r := w.rand() * total

	accumulated := 0.0
	for _, item := range w.items {
		accumulated += item.Chance
		if r < accumulated {
			return item, nil
		}
	}

	// Floating point edge: r landed on the very end of the range.
	return w.items[len(w.items)-1], nil
}
