package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitializeMetrics(t *testing.T) {
	// Must be safe to call repeatedly.
	InitializeMetrics()
	InitializeMetrics()

	if got := testutil.ToFloat64(IndexFilesTotal.WithLabelValues("indexed")); got != 0 {
		t.Errorf("pre-populated counter = %v, expected 0", got)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test", "go1.25")
	if got := testutil.ToFloat64(appInfo.WithLabelValues("test", "go1.25")); got != 1 {
		t.Errorf("build info gauge = %v, expected 1", got)
	}
}

func TestCounterIncrements(t *testing.T) {
	before := testutil.ToFloat64(SlideshowImagesServed)
	SlideshowImagesServed.Inc()
	after := testutil.ToFloat64(SlideshowImagesServed)
	if after != before+1 {
		t.Errorf("counter moved from %v to %v, expected +1", before, after)
	}
}
