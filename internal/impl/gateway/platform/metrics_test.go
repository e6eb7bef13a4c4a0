package impl_platform

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusTransferMetrics_ObserveTransfer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusTransferMetrics(reg)

	m.ObserveTransfer("COMPLETED", "", 20*time.Millisecond)
	m.ObserveTransfer("COMPLETED", "", 30*time.Millisecond)
	m.ObserveTransfer("FAILED", "InsufficientFunds", time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.total.WithLabelValues("COMPLETED", "none")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.total.WithLabelValues("FAILED", "InsufficientFunds")))
	require.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestPlatformAdapters(t *testing.T) {
	at := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	require.Equal(t, at, FixedClock{At: at}.Now())
	require.Equal(t, time.UTC, SystemClock{}.Now().Location())

	ids := UUIDGenerator{}
	require.NotEqual(t, ids.NewUUID(), ids.NewUUID())
}
