package main

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"

	"github.com/pulkitch/strategy-backtester/internal/backtest"
	"github.com/pulkitch/strategy-backtester/internal/runner"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

func printSummary(out io.Writer, source string, s *series.Series, params runner.Params, res *backtest.Result) {
	fmt.Fprintf(out, "\nRun %s — %s on %s (%s → %s, %d bars)\n\n",
		res.RunID, params.Strategy, source,
		s.Start().Format("2006-01-02"), s.End().Format("2006-01-02"), s.Len())

	m := res.Metrics
	table := tablewriter.NewWriter(out)
	table.Header("Metric", "Value")
	table.Append("Net PnL", fmt.Sprintf("%.2f", m.NetPnL))
	table.Append("Return %", fmt.Sprintf("%.2f", m.ReturnPct))
	table.Append("Trades", fmt.Sprintf("%d", m.NumTrades))
	table.Append("Win rate %", fmt.Sprintf("%.1f", m.WinRate))
	table.Append("Avg trade", fmt.Sprintf("%.2f", m.AvgTrade))
	table.Append("Profit factor", formatProfitFactor(m.ProfitFactor))
	table.Append("Max drawdown %", fmt.Sprintf("%.2f", m.MaxDrawdown))
	table.Append("Sharpe", fmt.Sprintf("%.2f", m.Sharpe))
	table.Append("Exposure %", fmt.Sprintf("%.1f", m.Exposure*100))
	table.Append("Final position", res.Final.String())
	table.Render()
}

func printTrades(out io.Writer, res *backtest.Result) {
	if len(res.Trades) == 0 {
		fmt.Fprintln(out, "\nNo trades.")
		return
	}

	fmt.Fprintln(out)
	table := tablewriter.NewWriter(out)
	table.Header("#", "Side", "Entry", "Exit", "Entry $", "Exit $", "Qty", "Net PnL", "Ret %")
	for i, t := range res.Trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Side,
			t.EntryTime.Format("2006-01-02 15:04"),
			t.ExitTime.Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", t.Entry),
			fmt.Sprintf("%.4f", t.Exit),
			fmt.Sprintf("%.4f", t.Qty),
			fmt.Sprintf("%.2f", t.NetPnL),
			fmt.Sprintf("%.2f", t.ReturnPct),
		)
	}
	table.Render()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", pf)
}
