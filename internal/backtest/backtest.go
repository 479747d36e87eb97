package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/series"
	"github.com/pulkitch/strategy-backtester/internal/strategy"
)

// Config controls one backtest run.
type Config struct {
	InitialCash float64
	Commission  float64 // fee rate charged on traded notional, both sides
}

// Trade is one completed round trip.
type Trade struct {
	Side      string // "long" or "short"
	EntryTime time.Time
	ExitTime  time.Time
	Entry     float64
	Exit      float64
	Qty       float64
	GrossPnL  float64
	Fees      float64
	NetPnL    float64
	ReturnPct float64
}

// Point is one equity-curve sample.
type Point struct {
	Time   time.Time
	Equity float64
}

// Result is the outcome of a run.
type Result struct {
	RunID   string
	Trades  []Trade
	Equity  []Point
	Metrics Metrics
	Final   strategy.Position
}

// Run drives the signal generator bar by bar over the series, filling
// every intent as a market order at that bar's close. Orders are
// exclusive: a flip books the close fill before the open fill on the
// same bar. Any residual position is liquidated at the final close.
// Bars are processed strictly in order on the calling goroutine; the
// run either completes or fails before any fill is booked.
func Run(s *series.Series, gen strategy.SignalGenerator, cfg Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty price series")
	}
	if cfg.InitialCash <= 0 {
		return nil, fmt.Errorf("backtest: initial cash must be positive, got %v", cfg.InitialCash)
	}
	if err := gen.Init(s); err != nil {
		return nil, fmt.Errorf("backtest: init strategy: %w", err)
	}

	acct := newAccount(cfg.InitialCash, cfg.Commission)
	equity := make([]Point, 0, s.Len())

	for i, bar := range s.Bars {
		for _, intent := range gen.Next(i) {
			acct.apply(intent, bar)
		}
		equity = append(equity, Point{Time: bar.Time, Equity: acct.markToMarket(bar.Close)})
	}

	// Residual position closed by the engine at the last bar.
	last := s.Bars[s.Len()-1]
	if acct.open != nil {
		acct.apply(strategy.Close, last)
		equity[len(equity)-1] = Point{Time: last.Time, Equity: acct.cash}
	}

	res := &Result{
		RunID:  uuid.NewString(),
		Trades: acct.trades,
		Equity: equity,
		Final:  gen.State(),
	}
	res.Metrics = computeMetrics(cfg.InitialCash, acct.cash, res.Trades, equity)

	logger.Info("backtest complete",
		zap.String("run_id", res.RunID),
		zap.Int("bars", s.Len()),
		zap.Int("trades", len(res.Trades)),
		zap.Float64("final_equity", acct.cash))
	return res, nil
}

// openPosition tracks the live side of a round trip.
type openPosition struct {
	side    string
	entryAt time.Time
	entry   float64
	qty     float64
	fees    float64
}

// account does the cash/position bookkeeping for one run.
type account struct {
	cash       float64
	commission float64
	open       *openPosition
	trades     []Trade
}

func newAccount(cash, commission float64) *account {
	return &account{cash: cash, commission: commission}
}

func (a *account) apply(intent strategy.Intent, bar series.Bar) {
	price := bar.Close
	switch intent {
	case strategy.OpenLong:
		a.enter("long", bar.Time, price)
	case strategy.OpenShort:
		a.enter("short", bar.Time, price)
	case strategy.Close:
		a.exit(bar.Time, price)
	}
}

// enter commits the full cash balance to one position, with the entry
// fee carved out of the committed notional.
func (a *account) enter(side string, at time.Time, price float64) {
	if a.open != nil || price <= 0 || a.cash <= 0 {
		return
	}
	notional := a.cash / (1 + a.commission)
	fee := notional * a.commission

	a.open = &openPosition{
		side:    side,
		entryAt: at,
		entry:   price,
		qty:     notional / price,
		fees:    fee,
	}
	if side == "long" {
		a.cash = 0
	} else {
		// Short margin: the notional stays reserved as collateral.
		a.cash -= fee
	}
}

func (a *account) exit(at time.Time, price float64) {
	p := a.open
	if p == nil {
		return
	}

	exitFee := p.qty * price * a.commission
	var gross float64
	if p.side == "long" {
		gross = p.qty * (price - p.entry)
		a.cash += p.qty*price - exitFee
	} else {
		gross = p.qty * (p.entry - price)
		a.cash += gross - exitFee
	}

	fees := p.fees + exitFee
	net := gross - fees
	basis := p.qty * p.entry

	ret := 0.0
	if basis > 0 {
		ret = net / basis
	}

	a.trades = append(a.trades, Trade{
		Side:      p.side,
		EntryTime: p.entryAt,
		ExitTime:  at,
		Entry:     p.entry,
		Exit:      price,
		Qty:       p.qty,
		GrossPnL:  gross,
		Fees:      fees,
		NetPnL:    net,
		ReturnPct: ret * 100,
	})
	a.open = nil
}

// markToMarket values the account at a close price.
func (a *account) markToMarket(price float64) float64 {
	if a.open == nil {
		return a.cash
	}
	if a.open.side == "long" {
		return a.cash + a.open.qty*price
	}
	return a.cash + a.open.qty*(a.open.entry-price)
}
