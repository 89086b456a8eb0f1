package game

import (
	"math"
	"time"
)

const (
	// MaxClicksPerSecond caps how many clicks a client may report per
	// second of elapsed window.
	MaxClicksPerSecond = 10

	// MaxClickAccumulationSeconds is the longest window clicks may be
	// accumulated for; client sync should run more often than this.
	MaxClickAccumulationSeconds = 10

	// MaxClickToleranceSeconds bounds client/server clock disagreement
	// on sync requests.
	MaxClickToleranceSeconds = MaxClickAccumulationSeconds * 2
)

// minProfitInterval avoids no-op balance churn on rapid syncs.
const minProfitInterval = 5 * time.Second

// ChargedEnergy returns how much energy regenerated between
// lastModified and now given the current energy and capacity. The
// regeneration rate is a full capacity per hour. Never overfills.
func ChargedEnergy(lastModified, now time.Time, energy, limit int) int {
	if energy >= limit {
		return 0
	}

	seconds := now.Sub(lastModified).Seconds()
	if seconds <= 0 {
		return 0
	}

	toAdd := int(math.Floor(seconds * float64(limit) / 3600))
	if energy+toAdd > limit {
		toAdd = limit - energy
	}
	return toAdd
}

// AccruedProfit returns passive income earned between lastSync and now,
// capped at maxOfflineHours worth of profit. Returns 0 when less than
// five seconds elapsed.
func AccruedProfit(lastSync, now time.Time, profitPerHour int64, maxOfflineHours int) int64 {
	elapsed := now.Sub(lastSync)
	if elapsed <= minProfitInterval {
		return 0
	}

	hours := elapsed.Hours()
	if hours > float64(maxOfflineHours) {
		hours = float64(maxOfflineHours)
	}

	profit := int64(math.Floor(hours * float64(profitPerHour)))
	if profit < 0 {
		return 0
	}
	return profit
}

// ValidClicks bounds a client-reported click count by the elapsed
// window, the click-rate cap and the user's current energy.
func ValidClicks(lastSync, now time.Time, requested, energy int) int {
	if requested <= 0 || energy <= 0 {
		return 0
	}

	window := now.Sub(lastSync).Seconds()
	if window < 0 {
		window = 0
	}
	if window > MaxClickAccumulationSeconds {
		window = MaxClickAccumulationSeconds
	}

	valid := int(math.Floor(window * MaxClicksPerSecond))
	if requested < valid {
		valid = requested
	}
	if energy < valid {
		valid = energy
	}
	if valid < 0 {
		valid = 0
	}
	return valid
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the first midnight strictly after t's day.
func NextMidnight(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, 1)
}
