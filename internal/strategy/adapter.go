package strategy

import (
	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/schema"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

// Adapter is the uniform contract over concrete strategies. One adapter
// instance exists per strategy, is registered once at startup and is
// shared read-only by every backtest run.
type Adapter interface {
	// Name returns the unique, registry-visible name of the strategy.
	Name() string

	// ParamsSchema describes the strategy's tunable parameters.
	ParamsSchema() schema.Schema

	// ValidateParams checks candidate parameter values against the
	// schema. Unknown keys are tolerated.
	ValidateParams(values map[string]any) error

	// DefaultParams returns the parameters that declare defaults.
	DefaultParams() map[string]any

	// NewSignalGenerator builds the executable signal logic for one run.
	// The returned generator owns its position state exclusively.
	NewSignalGenerator(values map[string]any, opts GeneratorOptions) (SignalGenerator, error)
}

// GeneratorOptions carries per-run configuration that is not part of the
// strategy's parameter schema.
type GeneratorOptions struct {
	TradeMode       TradeMode
	IndicatorEngine string
	Logger          *zap.Logger
}

// SignalGenerator is the executable strategy the execution engine drives
// bar by bar. Init precomputes indicator series over the full run and
// Next is called once per bar index in ascending order, returning the
// bar's order intents in execution order (a flip lists Close before the
// new open). Generators are single-run, single-goroutine objects.
type SignalGenerator interface {
	Init(s *series.Series) error
	Next(i int) []Intent
	State() Position
}
