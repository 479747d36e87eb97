package series

import (
	"fmt"
	"sort"
	"time"
)

// Bar is a single OHLCV price bar. Volume is kept as a float because
// source files routinely carry fractional volumes.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a chronologically ordered run of price bars. Once built it is
// treated as immutable: the backtest that consumes it owns it exclusively.
type Series struct {
	Bars []Bar
}

// New sorts the bars ascending by timestamp and rejects duplicates.
func New(bars []Bar) (*Series, error) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Time.Equal(sorted[i-1].Time) {
			return nil, fmt.Errorf("duplicate timestamp %s", sorted[i].Time.Format(time.RFC3339))
		}
	}
	return &Series{Bars: sorted}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Closes returns the close prices in bar order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Start returns the timestamp of the first bar.
func (s *Series) Start() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Time
}

// End returns the timestamp of the last bar.
func (s *Series) End() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Time
}
