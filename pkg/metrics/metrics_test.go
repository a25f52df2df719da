package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrementPerResult(t *testing.T) {
	before := testutil.ToFloat64(InvitationExchanges.WithLabelValues(ResultInvalid))
	InvitationExchanges.WithLabelValues(ResultInvalid).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(InvitationExchanges.WithLabelValues(ResultInvalid)))

	before = testutil.ToFloat64(Logouts)
	Logouts.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(Logouts))
}

func TestLatencyHistogramLabels(t *testing.T) {
	APILatency.WithLabelValues("GET", "/health", "200").Observe(0.01)
	require.GreaterOrEqual(t, testutil.CollectAndCount(APILatency), 1)
}
