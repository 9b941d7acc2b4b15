package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/pool", "200"))
	RecordHTTPRequest("GET", "/v1/pool", 200, 5*time.Millisecond)
	RecordHTTPRequest("GET", "/v1/pool", 200, 7*time.Millisecond)
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/pool", "200")); got != before+2 {
		t.Fatalf("requests = %v, want %v", got, before+2)
	}
}

func TestRecordRejection(t *testing.T) {
	RecordRejection("already-claimed")
	if got := testutil.ToFloat64(ledgerRejections.WithLabelValues("already-claimed")); got < 1 {
		t.Fatalf("rejections = %v", got)
	}
}

func TestRecordReconciliation(t *testing.T) {
	RecordReconciliation(12, 5_000_000, 2, false)
	if testutil.ToFloat64(ledgerHeight) != 12 || testutil.ToFloat64(poolTotal) != 5_000_000 ||
		testutil.ToFloat64(poolDepositors) != 2 || testutil.ToFloat64(reconcileConsistent) != 0 {
		t.Fatalf("gauges not updated")
	}
	RecordReconciliation(13, 5_000_000, 2, true)
	if testutil.ToFloat64(reconcileConsistent) != 1 {
		t.Fatalf("consistent gauge = %v", testutil.ToFloat64(reconcileConsistent))
	}
}
