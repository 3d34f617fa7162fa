package httpclient

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// LatencyRecorder is a response hook that accumulates request durations into
// an HDR histogram. One recorder may serve many concurrent requests.
type LatencyRecorder struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

// NewLatencyRecorder tracks durations from 1ms to 5 minutes at three
// significant figures.
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{
		hist: hdrhistogram.New(1, (5 * time.Minute).Milliseconds(), 3),
	}
}

// Hook returns the response hook feeding this recorder.
func (r *LatencyRecorder) Hook() ResponseHook {
	return func(resp *Response) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		// RecordValue only fails for values outside the histogram range;
		// clamp instead of surfacing a bookkeeping error into the request path.
		ms := resp.Duration.Milliseconds()
		if ms < 1 {
			ms = 1
		}
		_ = r.hist.RecordValue(ms)
		return nil
	}
}

// LatencySnapshot is a point-in-time percentile summary.
type LatencySnapshot struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
	Max   time.Duration
}

// Snapshot summarizes everything recorded so far.
func (r *LatencyRecorder) Snapshot() LatencySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return LatencySnapshot{
		Count: r.hist.TotalCount(),
		P50:   time.Duration(r.hist.ValueAtQuantile(50)) * time.Millisecond,
		P95:   time.Duration(r.hist.ValueAtQuantile(95)) * time.Millisecond,
		P99:   time.Duration(r.hist.ValueAtQuantile(99)) * time.Millisecond,
		Max:   time.Duration(r.hist.Max()) * time.Millisecond,
	}
}
