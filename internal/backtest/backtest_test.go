package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/series"
	"github.com/pulkitch/strategy-backtester/internal/strategy"
)

// scriptedGenerator replays a fixed intent script, one entry per bar.
type scriptedGenerator struct {
	script [][]strategy.Intent
	state  strategy.Position
}

func (g *scriptedGenerator) Init(*series.Series) error { return nil }

func (g *scriptedGenerator) Next(i int) []strategy.Intent {
	if i >= len(g.script) {
		return nil
	}
	for _, intent := range g.script[i] {
		switch intent {
		case strategy.OpenLong:
			g.state = strategy.Long
		case strategy.OpenShort:
			g.state = strategy.Short
		case strategy.Close:
			g.state = strategy.Flat
		}
	}
	return g.script[i]
}

func (g *scriptedGenerator) State() strategy.Position { return g.state }

func testSeries(t *testing.T, closes []float64) *series.Series {
	t.Helper()
	bars := make([]series.Bar, len(closes))
	for i, c := range closes {
		bars[i] = series.Bar{
			Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: c, High: c, Low: c, Close: c, Volume: 1,
		}
	}
	s, err := series.New(bars)
	require.NoError(t, err)
	return s
}

func TestRunLongRoundTripNoCommission(t *testing.T) {
	s := testSeries(t, []float64{100, 110, 121, 121, 121})
	gen := &scriptedGenerator{script: [][]strategy.Intent{
		{strategy.OpenLong}, nil, {strategy.Close}, nil, nil,
	}}

	res, err := Run(s, gen, Config{InitialCash: 1000}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, "long", tr.Side)
	assert.InDelta(t, 100.0, tr.Entry, 1e-9)
	assert.InDelta(t, 121.0, tr.Exit, 1e-9)
	assert.InDelta(t, 210.0, tr.NetPnL, 1e-9, "10 units, +21 each")
	assert.InDelta(t, 21.0, tr.ReturnPct, 1e-9)

	assert.InDelta(t, 1210.0, res.Equity[len(res.Equity)-1].Equity, 1e-9)
	assert.InDelta(t, 21.0, res.Metrics.ReturnPct, 1e-9)
	assert.Equal(t, 1, res.Metrics.NumTrades)
	assert.NotEmpty(t, res.RunID)
}

func TestRunShortRoundTrip(t *testing.T) {
	s := testSeries(t, []float64{100, 90, 80, 80})
	gen := &scriptedGenerator{script: [][]strategy.Intent{
		{strategy.OpenShort}, nil, {strategy.Close}, nil,
	}}

	res, err := Run(s, gen, Config{InitialCash: 1000}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.Equal(t, "short", tr.Side)
	assert.InDelta(t, 200.0, tr.NetPnL, 1e-9, "10 units, +20 each on the way down")
	assert.InDelta(t, 1200.0, res.Equity[len(res.Equity)-1].Equity, 1e-9)
}

func TestRunCommissionChargedBothSides(t *testing.T) {
	s := testSeries(t, []float64{100, 100, 100})
	gen := &scriptedGenerator{script: [][]strategy.Intent{
		{strategy.OpenLong}, {strategy.Close}, nil,
	}}

	res, err := Run(s, gen, Config{InitialCash: 1000, Commission: 0.001}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.InDelta(t, 0.0, tr.GrossPnL, 1e-9, "flat price, no gross move")
	assert.Greater(t, tr.Fees, 0.0)
	assert.Less(t, tr.NetPnL, 0.0, "fees make the flat round trip a loser")
	assert.Less(t, res.Equity[len(res.Equity)-1].Equity, 1000.0)
}

func TestRunFlipBooksCloseBeforeOpen(t *testing.T) {
	s := testSeries(t, []float64{100, 120, 110, 110})
	gen := &scriptedGenerator{script: [][]strategy.Intent{
		{strategy.OpenLong}, {strategy.Close, strategy.OpenShort}, {strategy.Close}, nil,
	}}

	res, err := Run(s, gen, Config{InitialCash: 1000}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	assert.Equal(t, "long", res.Trades[0].Side)
	assert.Equal(t, "short", res.Trades[1].Side)
	assert.Equal(t, res.Trades[0].ExitTime, res.Trades[1].EntryTime,
		"flip exits and re-enters on the same bar")
	assert.InDelta(t, 120.0, res.Trades[1].Entry, 1e-9,
		"short opened with the proceeds of the long close")
}

func TestRunLiquidatesResidualPosition(t *testing.T) {
	s := testSeries(t, []float64{100, 110, 120})
	gen := &scriptedGenerator{script: [][]strategy.Intent{
		{strategy.OpenLong}, nil, nil,
	}}

	res, err := Run(s, gen, Config{InitialCash: 1000}, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1, "open position force-closed at the final bar")
	assert.Equal(t, s.End(), res.Trades[0].ExitTime)
	assert.InDelta(t, 1200.0, res.Equity[len(res.Equity)-1].Equity, 1e-9)
}

func TestRunNoSignalsNoTrades(t *testing.T) {
	s := testSeries(t, []float64{100, 100, 100, 100})
	gen := &scriptedGenerator{script: nil}

	res, err := Run(s, gen, Config{InitialCash: 5000}, zap.NewNop())
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, strategy.Flat, res.Final)
	assert.InDelta(t, 0.0, res.Metrics.NetPnL, 1e-12)
	assert.InDelta(t, 0.0, res.Metrics.Exposure, 1e-12)
	for _, p := range res.Equity {
		assert.InDelta(t, 5000.0, p.Equity, 1e-9)
	}
}

func TestRunRejectsBadInputs(t *testing.T) {
	gen := &scriptedGenerator{}

	empty, err := series.New(nil)
	require.NoError(t, err)
	_, err = Run(empty, gen, Config{InitialCash: 1000}, zap.NewNop())
	assert.Error(t, err)

	s := testSeries(t, []float64{100})
	_, err = Run(s, gen, Config{InitialCash: 0}, zap.NewNop())
	assert.Error(t, err)
}

func TestMetricsRollup(t *testing.T) {
	entry := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	trades := []Trade{
		{NetPnL: 100, EntryTime: entry, ExitTime: entry.AddDate(0, 0, 1)},
		{NetPnL: -50, EntryTime: entry.AddDate(0, 0, 2), ExitTime: entry.AddDate(0, 0, 3)},
		{NetPnL: 25, EntryTime: entry.AddDate(0, 0, 4), ExitTime: entry.AddDate(0, 0, 5)},
	}
	equity := []Point{
		{Time: entry, Equity: 1000},
		{Time: entry.AddDate(0, 0, 1), Equity: 1100},
		{Time: entry.AddDate(0, 0, 3), Equity: 1050},
		{Time: entry.AddDate(0, 0, 5), Equity: 1075},
	}

	m := computeMetrics(1000, 1075, trades, equity)

	assert.InDelta(t, 75.0, m.NetPnL, 1e-9)
	assert.InDelta(t, 7.5, m.ReturnPct, 1e-9)
	assert.InDelta(t, 100.0*2/3, m.WinRate, 1e-9)
	assert.InDelta(t, 25.0, m.AvgTrade, 1e-9)
	assert.InDelta(t, 2.5, m.ProfitFactor, 1e-9, "125 won / 50 lost")
	assert.InDelta(t, 100*50.0/1100, m.MaxDrawdown, 1e-9, "peak 1100 to trough 1050")
	assert.Equal(t, 3, m.NumTrades)
}

func TestMaxDrawdownFlatCurve(t *testing.T) {
	now := time.Now()
	equity := []Point{{Time: now, Equity: 100}, {Time: now.Add(time.Hour), Equity: 100}}
	assert.InDelta(t, 0.0, maxDrawdown(equity), 1e-12)
}
