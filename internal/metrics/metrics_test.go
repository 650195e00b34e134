package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPersistenceFailuresByPath(t *testing.T) {
	before := testutil.ToFloat64(PersistenceFailures.WithLabelValues(PathWrite))
	PersistenceFailures.WithLabelValues(PathWrite).Inc()

	if got := testutil.ToFloat64(PersistenceFailures.WithLabelValues(PathWrite)); got != before+1 {
		t.Errorf("write failures = %v, want %v", got, before+1)
	}
}

func TestCollectorsAreRegistered(t *testing.T) {
	if n := testutil.CollectAndCount(ExpensesRecorded); n != 1 {
		t.Errorf("ExpensesRecorded collected %d metrics, want 1", n)
	}
	RPCDuration.WithLabelValues("/test", "ok").Observe(0.01)
	if n := testutil.CollectAndCount(RPCDuration, "splitledger_rpc_request_duration_seconds"); n < 1 {
		t.Errorf("RPCDuration collected %d metrics, want at least 1", n)
	}
}
