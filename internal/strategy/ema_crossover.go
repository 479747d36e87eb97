package strategy

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/indicator"
	"github.com/pulkitch/strategy-backtester/internal/schema"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

// EMACrossoverName is the registry name of the built-in EMA strategy.
const EMACrossoverName = "EMA Crossover"

// EMACrossover trades crossings of a fast and a slow exponential moving
// average over the close series.
type EMACrossover struct {
	schema schema.Schema
}

var _ Adapter = (*EMACrossover)(nil)

// NewEMACrossover builds the EMA crossover adapter.
func NewEMACrossover() *EMACrossover {
	return &EMACrossover{
		schema: schema.Schema{
			"fast_period": {
				Type:        schema.TypeInt,
				Default:     12,
				Min:         schema.Bound(1),
				Max:         schema.Bound(100),
				Description: "Fast EMA period",
			},
			"slow_period": {
				Type:        schema.TypeInt,
				Default:     26,
				Min:         schema.Bound(2),
				Max:         schema.Bound(200),
				Description: "Slow EMA period",
			},
		},
	}
}

func (a *EMACrossover) Name() string { return EMACrossoverName }

func (a *EMACrossover) ParamsSchema() schema.Schema { return a.schema }

func (a *EMACrossover) ValidateParams(values map[string]any) error {
	return schema.Validate(a.schema, values)
}

func (a *EMACrossover) DefaultParams() map[string]any {
	return schema.Defaults(a.schema)
}

func (a *EMACrossover) NewSignalGenerator(values map[string]any, opts GeneratorOptions) (SignalGenerator, error) {
	if err := a.ValidateParams(values); err != nil {
		return nil, fmt.Errorf("build %s generator: %w", a.Name(), err)
	}

	merged := a.DefaultParams()
	for k, v := range values {
		merged[k] = v
	}

	fast, err := schema.IntValue(merged, "fast_period")
	if err != nil {
		return nil, err
	}
	slow, err := schema.IntValue(merged, "slow_period")
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &emaCrossoverGenerator{
		fastPeriod: fast,
		slowPeriod: slow,
		mode:       opts.TradeMode,
		engine:     indicator.Select(opts.IndicatorEngine, logger),
		logger:     logger.Named("ema-crossover"),
	}, nil
}

// emaCrossoverGenerator is the per-run executable strategy. It owns its
// position state exclusively; state resets on every Init.
type emaCrossoverGenerator struct {
	fastPeriod int
	slowPeriod int
	mode       TradeMode
	engine     indicator.Engine
	logger     *zap.Logger

	events []indicator.Cross
	state  Position
}

func (g *emaCrossoverGenerator) Init(s *series.Series) error {
	closes := s.Closes()
	if len(closes) == 0 {
		return fmt.Errorf("empty price series")
	}

	fast, err := g.engine.EMA(closes, g.fastPeriod)
	if err != nil {
		return fmt.Errorf("fast ema: %w", err)
	}
	slow, err := g.engine.EMA(closes, g.slowPeriod)
	if err != nil {
		return fmt.Errorf("slow ema: %w", err)
	}

	g.events = indicator.Crossovers(fast, slow)
	g.state = Flat

	g.logger.Debug("signal generator initialized",
		zap.Int("bars", len(closes)),
		zap.Int("fast_period", g.fastPeriod),
		zap.Int("slow_period", g.slowPeriod),
		zap.String("engine", g.engine.Name()),
		zap.Stringer("trade_mode", g.mode))
	return nil
}

func (g *emaCrossoverGenerator) Next(i int) []Intent {
	if i < 0 || i >= len(g.events) {
		return nil
	}
	next, intents := transition(g.mode, g.state, g.events[i])
	g.state = next
	return intents
}

func (g *emaCrossoverGenerator) State() Position { return g.state }
