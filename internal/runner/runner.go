package runner

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/backtest"
	"github.com/pulkitch/strategy-backtester/internal/schema"
	"github.com/pulkitch/strategy-backtester/internal/series"
	"github.com/pulkitch/strategy-backtester/internal/strategy"
)

// ErrPeriodOrder rejects runs whose fast period is not strictly smaller
// than the slow period.
var ErrPeriodOrder = errors.New("fast period must be smaller than slow period")

// Cash bounds accepted for a run.
const (
	MinInitialCash = 1_000
	MaxInitialCash = 1_000_000_000
)

// Params collects everything a single backtest run needs beyond the
// price series itself.
type Params struct {
	Strategy        string
	Values          map[string]any
	TradeMode       string
	InitialCash     float64
	Commission      float64
	IndicatorEngine string
}

// Run validates the parameters, builds the strategy and executes the
// backtest. Every validation failure surfaces before the first bar is
// processed; identical inputs always produce the identical outcome.
func Run(p Params, s *series.Series, reg *strategy.Registry, logger *zap.Logger) (*backtest.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = strategy.Default()
	}

	adapter, ok := reg.Get(p.Strategy)
	if !ok {
		return nil, fmt.Errorf("strategy %q not found (registered: %v)", p.Strategy, reg.Names())
	}

	if err := adapter.ValidateParams(p.Values); err != nil {
		return nil, fmt.Errorf("invalid strategy parameters: %w", err)
	}

	merged := adapter.DefaultParams()
	for k, v := range p.Values {
		merged[k] = v
	}
	if err := checkPeriodOrder(merged); err != nil {
		return nil, err
	}

	if p.InitialCash < MinInitialCash || p.InitialCash > MaxInitialCash {
		return nil, fmt.Errorf("initial cash %v outside [%d, %d]",
			p.InitialCash, MinInitialCash, MaxInitialCash)
	}

	mode, err := strategy.ParseTradeMode(p.TradeMode)
	if err != nil {
		return nil, err
	}

	gen, err := adapter.NewSignalGenerator(merged, strategy.GeneratorOptions{
		TradeMode:       mode,
		IndicatorEngine: p.IndicatorEngine,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build signal generator: %w", err)
	}

	logger.Info("starting backtest",
		zap.String("strategy", adapter.Name()),
		zap.Stringer("trade_mode", mode),
		zap.Int("bars", s.Len()),
		zap.Float64("initial_cash", p.InitialCash))

	return backtest.Run(s, gen, backtest.Config{
		InitialCash: p.InitialCash,
		Commission:  p.Commission,
	}, logger)
}

// checkPeriodOrder applies the caller-level fast < slow guard for
// strategies that carry both period parameters.
func checkPeriodOrder(values map[string]any) error {
	fast, fastErr := schema.IntValue(values, "fast_period")
	slow, slowErr := schema.IntValue(values, "slow_period")
	if fastErr != nil || slowErr != nil {
		return nil // strategy without the period pair
	}
	if fast >= slow {
		return fmt.Errorf("%w: fast=%d slow=%d", ErrPeriodOrder, fast, slow)
	}
	return nil
}
