package game

import (
	"testing"
	"time"
)

var base = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestChargedEnergy(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		energy  int
		limit   int
		want    int
	}{
		{"zero elapsed", 0, 50, 100, 0},
		{"negative elapsed", -time.Minute, 50, 100, 0},
		{"already full", time.Hour, 100, 100, 0},
		{"over full", time.Hour, 150, 100, 0},
		{"full hour refills to cap", time.Hour, 0, 100, 100},
		{"half hour gives half cap", 30 * time.Minute, 0, 100, 50},
		{"caps at limit", 2 * time.Hour, 80, 100, 20},
		{"fractional floors", 36 * time.Second, 0, 100, 1},
		{"sub tick gives nothing", 35 * time.Second, 0, 100, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ChargedEnergy(base, base.Add(c.elapsed), c.energy, c.limit)
			if got != c.want {
				t.Errorf("ChargedEnergy(%v, energy=%d, limit=%d) = %d, want %d",
					c.elapsed, c.energy, c.limit, got, c.want)
			}
		})
	}
}

func TestAccruedProfit(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		pph     int64
		maxHrs  int
		want    int64
	}{
		{"below threshold", 4 * time.Second, 3600, 3, 0},
		{"at threshold", 5 * time.Second, 3600, 3, 0},
		{"just over threshold", 6 * time.Second, 3600, 3, 6},
		{"one hour", time.Hour, 1000, 3, 1000},
		{"capped at offline limit", 10 * time.Hour, 1000, 3, 3000},
		{"zero rate", time.Hour, 0, 3, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := AccruedProfit(base, base.Add(c.elapsed), c.pph, c.maxHrs)
			if got != c.want {
				t.Errorf("AccruedProfit(%v, pph=%d, max=%dh) = %d, want %d",
					c.elapsed, c.pph, c.maxHrs, got, c.want)
			}
		})
	}
}

func TestValidClicks(t *testing.T) {
	cases := []struct {
		name      string
		elapsed   time.Duration
		requested int
		energy    int
		want      int
	}{
		{"no clicks", 5 * time.Second, 0, 100, 0},
		{"negative clicks", 5 * time.Second, -3, 100, 0},
		{"no energy", 5 * time.Second, 30, 0, 0},
		{"within rate", 5 * time.Second, 30, 100, 30},
		{"rate capped", 2 * time.Second, 100, 100, 20},
		{"window capped", time.Minute, 500, 500, MaxClickAccumulationSeconds * MaxClicksPerSecond},
		{"energy capped", 10 * time.Second, 100, 7, 7},
		{"clock skew backwards", -time.Second, 10, 100, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ValidClicks(base, base.Add(c.elapsed), c.requested, c.energy)
			if got != c.want {
				t.Errorf("ValidClicks(%v, requested=%d, energy=%d) = %d, want %d",
					c.elapsed, c.requested, c.energy, got, c.want)
			}
		})
	}
}

func TestMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("tzdata not available")
	}
	at := time.Date(2025, 6, 15, 23, 59, 59, 0, loc)

	m := Midnight(at)
	if m.Hour() != 0 || m.Minute() != 0 || m.Second() != 0 {
		t.Errorf("Midnight(%v) = %v, not a midnight", at, m)
	}
	if m.Day() != 15 {
		t.Errorf("Midnight moved the calendar day: %v", m)
	}
	if m.Location() != loc {
		t.Errorf("Midnight changed the location to %v", m.Location())
	}

	n := NextMidnight(at)
	if !n.Equal(m.AddDate(0, 0, 1)) {
		t.Errorf("NextMidnight(%v) = %v, want %v", at, n, m.AddDate(0, 0, 1))
	}
}
