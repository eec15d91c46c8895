package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDomainMetrics(t *testing.T) {
	MustRegisterDomainMetrics("parking_test", prometheus.NewRegistry())

	ObserveQuote("Centro", "ok", 12.5)
	ObserveQuote("Centro", "invalid_timestamp", 0)
	require.Equal(t, 1.0, testutil.ToFloat64(QuotesTotal.WithLabelValues("Centro", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(QuotesTotal.WithLabelValues("Centro", "invalid_timestamp")))
	require.Equal(t, 1, testutil.CollectAndCount(QuoteAmount))

	ObserveReload("ok", 4)
	require.Equal(t, 1.0, testutil.ToFloat64(FacilityReloadsTotal.WithLabelValues("ok")))
	require.Equal(t, 4.0, testutil.ToFloat64(FacilitiesLoaded))
}
