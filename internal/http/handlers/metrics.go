package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// syncRejections counts sync requests that produced no clicks, by
	// reason. Spikes per reason are the abuse-monitoring signal.
	syncRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "click_sync_rejections_total",
			Help: "Click sync requests rejected or zeroed, by reason",
		},
		[]string{"reason"},
	)
	rewardClaims = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reward_claims_total",
			Help: "Successful reward claims, by kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(syncRejections)
	prometheus.MustRegister(rewardClaims)
}
