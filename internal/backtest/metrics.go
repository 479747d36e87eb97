package backtest

import "math"

// Metrics is the summary statistics rollup for one run.
type Metrics struct {
	NetPnL       float64
	ReturnPct    float64
	WinRate      float64 // percent of trades with positive net PnL
	AvgTrade     float64
	ProfitFactor float64
	MaxDrawdown  float64 // percent, worst peak-to-trough equity decline
	Sharpe       float64 // per-bar returns, annualized over 252 periods
	Exposure     float64 // fraction of bars spent in a position
	NumTrades    int
}

func computeMetrics(initial, final float64, trades []Trade, equity []Point) Metrics {
	var winsAmt, lossAmt, net float64
	var wins int
	for _, t := range trades {
		net += t.NetPnL
		if t.NetPnL > 0 {
			wins++
			winsAmt += t.NetPnL
		} else {
			lossAmt += -t.NetPnL
		}
	}

	m := Metrics{
		NetPnL:    net,
		NumTrades: len(trades),
	}
	if initial > 0 {
		m.ReturnPct = (final - initial) / initial * 100
	}
	if n := len(trades); n > 0 {
		m.WinRate = 100 * float64(wins) / float64(n)
		m.AvgTrade = net / float64(n)
	}
	if lossAmt > 0 {
		m.ProfitFactor = winsAmt / lossAmt
	} else if winsAmt > 0 {
		m.ProfitFactor = math.Inf(1)
	}
	m.MaxDrawdown = maxDrawdown(equity)
	m.Sharpe = sharpe(equity)
	m.Exposure = exposure(trades, equity)
	return m
}

func maxDrawdown(equity []Point) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

func sharpe(equity []Point) float64 {
	if len(equity) < 3 {
		return 0
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev <= 0 {
			continue
		}
		rets = append(rets, equity[i].Equity/prev-1)
	}
	if len(rets) < 2 {
		return 0
	}

	var mean float64
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	var variance float64
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(252)
}

// exposure approximates time-in-market as the share of equity samples
// that fall inside a trade's entry/exit window.
func exposure(trades []Trade, equity []Point) float64 {
	if len(equity) == 0 || len(trades) == 0 {
		return 0
	}
	inMarket := 0
	for _, p := range equity {
		for _, t := range trades {
			if !p.Time.Before(t.EntryTime) && p.Time.Before(t.ExitTime) {
				inMarket++
				break
			}
		}
	}
	return float64(inMarket) / float64(len(equity))
}
