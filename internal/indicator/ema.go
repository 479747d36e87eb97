package indicator

import (
	"fmt"

	"go.uber.org/zap"
)

// EMA computes an exponential moving average over closes using the
// unadjusted recursive form seeded at the first value:
//
//	ema[0] = closes[0]
//	ema[t] = alpha*closes[t] + (1-alpha)*ema[t-1],  alpha = 2/(period+1)
//
// This convention is deterministic across re-runs and is the reference
// against which the optimized engine is checked.
func EMA(closes []float64, period int) []float64 {
	if len(closes) == 0 || period < 1 {
		return nil
	}
	alpha := 2.0 / float64(period+1)

	out := make([]float64, len(closes))
	out[0] = closes[0]
	for t := 1; t < len(closes); t++ {
		out[t] = alpha*closes[t] + (1-alpha)*out[t-1]
	}
	return out
}

// Engine computes EMA series. Two variants exist: the standard reference
// recursion and an optimized single-pass implementation.
type Engine interface {
	Name() string
	EMA(closes []float64, period int) ([]float64, error)
}

const (
	EngineStandard  = "standard"
	EngineOptimized = "optimized"
)

type standardEngine struct{}

func (standardEngine) Name() string { return EngineStandard }

func (standardEngine) EMA(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("ema period must be >= 1, got %d", period)
	}
	return EMA(closes, period), nil
}

// optimizedEngine precomputes the smoothing coefficients and walks the
// slice with a fused multiply-add style loop. It must stay numerically
// equivalent to the standard recursion within floating-point tolerance.
type optimizedEngine struct{}

func (optimizedEngine) Name() string { return EngineOptimized }

func (optimizedEngine) EMA(closes []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, fmt.Errorf("ema period must be >= 1, got %d", period)
	}
	if len(closes) == 0 {
		return nil, nil
	}

	alpha := 2.0 / float64(period+1)
	decay := 1.0 - alpha

	out := make([]float64, len(closes))
	prev := closes[0]
	out[0] = prev
	for t, c := range closes[1:] {
		prev = decay*prev + alpha*c
		out[t+1] = prev
	}
	return out, nil
}

// probe is a fixed window used to verify the optimized engine against
// the reference recursion before handing it to a run.
var probe = []float64{10, 10.5, 11, 10.75, 10.25, 9.9, 10.1, 10.6, 11.2, 11.05}

const probeTolerance = 1e-9

// Select resolves an engine by name. An unknown name, or an optimized
// engine that fails its self-check against the standard recursion, falls
// back to the standard engine transparently; the degradation is reported
// through the logger, never as an error.
func Select(name string, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch name {
	case "", EngineStandard:
		return standardEngine{}
	case EngineOptimized:
		opt := optimizedEngine{}
		if err := verify(opt); err != nil {
			logger.Warn("optimized indicator engine unavailable, falling back to standard",
				zap.Error(err))
			return standardEngine{}
		}
		return opt
	default:
		logger.Warn("unknown indicator engine, falling back to standard",
			zap.String("engine", name))
		return standardEngine{}
	}
}

// verify runs the candidate engine over the probe window and compares it
// to the reference recursion.
func verify(e Engine) error {
	for _, period := range []int{2, 9, 26} {
		want := EMA(probe, period)
		got, err := e.EMA(probe, period)
		if err != nil {
			return fmt.Errorf("probe ema(%d): %w", period, err)
		}
		if len(got) != len(want) {
			return fmt.Errorf("probe ema(%d): length %d, want %d", period, len(got), len(want))
		}
		for i := range want {
			diff := got[i] - want[i]
			if diff < -probeTolerance || diff > probeTolerance {
				return fmt.Errorf("probe ema(%d): diverges at index %d by %g", period, i, diff)
			}
		}
	}
	return nil
}
