package indicator

// Cross tags the crossover state of two compared series at one bar.
type Cross int

const (
	CrossNone Cross = iota
	FastAboveSlow
	FastBelowSlow
)

func (c Cross) String() string {
	switch c {
	case FastAboveSlow:
		return "fast_above_slow"
	case FastBelowSlow:
		return "fast_below_slow"
	default:
		return "none"
	}
}

// Crossovers detects sign changes between the fast and slow series.
// A FastAboveSlow event at bar t requires fast[t-1] <= slow[t-1] and
// fast[t] > slow[t]; the mirror holds for FastBelowSlow. Bar 0 has no
// prior bar and never carries an event, and equal values on either side
// of the boundary produce no event until a strict inequality appears.
// The inputs are never mutated.
func Crossovers(fast, slow []float64) []Cross {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	out := make([]Cross, n)
	for t := 1; t < n; t++ {
		switch {
		case fast[t-1] <= slow[t-1] && fast[t] > slow[t]:
			out[t] = FastAboveSlow
		case fast[t-1] >= slow[t-1] && fast[t] < slow[t]:
			out[t] = FastBelowSlow
		}
	}
	return out
}
