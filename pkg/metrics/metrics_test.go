package metrics_test

import (
	"betblocker/pkg/metrics"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterIsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.Register()
		metrics.Register()
	})
}

func TestObserveSign(t *testing.T) {
	before := testutil.ToFloat64(metrics.ProfileSignTotal.WithLabelValues(metrics.SignOutcomeFallback))
	metrics.ObserveSign(metrics.SignOutcomeFallback)
	after := testutil.ToFloat64(metrics.ProfileSignTotal.WithLabelValues(metrics.SignOutcomeFallback))
	require.InDelta(t, before+1, after, 0.0001)
}

func TestObserveUpstream(t *testing.T) {
	metrics.ObserveUpstream("denylist.list", 200, 25*time.Millisecond)
	require.Positive(t, testutil.CollectAndCount(metrics.UpstreamRequestDuration))
}
