package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/config"
	"github.com/pulkitch/strategy-backtester/internal/database"
	"github.com/pulkitch/strategy-backtester/internal/fetch"
	"github.com/pulkitch/strategy-backtester/internal/ingest"
	"github.com/pulkitch/strategy-backtester/internal/logger"
	"github.com/pulkitch/strategy-backtester/internal/runner"
	"github.com/pulkitch/strategy-backtester/internal/series"
	"github.com/pulkitch/strategy-backtester/internal/strategy"
)

func main() {
	configPath := flag.String("config", "./configs", "directory containing config.yml")
	csvPath := flag.String("csv", "", "path to an OHLCV CSV file")
	datasetName := flag.String("dataset", "", "name of a dataset stored in the catalog")
	csvURL := flag.String("url", "", "URL of a remote OHLCV CSV")
	strategyName := flag.String("strategy", "", "strategy to run (see -list)")
	fastPeriod := flag.Int("fast", 0, "fast EMA period")
	slowPeriod := flag.Int("slow", 0, "slow EMA period")
	tradeMode := flag.String("mode", "", "trade mode: only_buy | only_sell | both_buy_sell")
	initialCash := flag.Float64("cash", 0, "initial cash")
	engineName := flag.String("engine", "", "indicator engine: standard | optimized")
	listStrategies := flag.Bool("list", false, "list registered strategies and exit")
	showTrades := flag.Bool("trades", false, "print the individual trades")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Populate the strategy registry once, before any run starts.
	strategy.RegisterDefaults(log)

	if *listStrategies {
		for _, name := range strategy.Default().Names() {
			fmt.Println(name)
		}
		return
	}

	s, source, err := resolveSeries(cfg, log, *csvPath, *datasetName, *csvURL)
	if err != nil {
		log.Fatal("Failed to load price data", zap.Error(err))
	}
	log.Info("Price data loaded", zap.String("source", source), zap.Int("bars", s.Len()))

	params := runParams(cfg.Backtest, *strategyName, *fastPeriod, *slowPeriod, *tradeMode, *initialCash, *engineName)

	result, err := runner.Run(params, s, strategy.Default(), log)
	if err != nil {
		log.Fatal("Backtest failed", zap.Error(err))
	}

	printSummary(os.Stdout, source, s, params, result)
	if *showTrades {
		printTrades(os.Stdout, result)
	}
}

// resolveSeries loads the price series from exactly one of the three
// possible sources.
func resolveSeries(cfg config.Config, log *zap.Logger, csvPath, datasetName, csvURL string) (*series.Series, string, error) {
	sources := 0
	for _, v := range []string{csvPath, datasetName, csvURL} {
		if v != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, "", fmt.Errorf("exactly one of -csv, -dataset or -url is required")
	}

	switch {
	case csvPath != "":
		s, err := ingest.ReadFile(csvPath)
		return s, csvPath, err
	case datasetName != "":
		db, err := database.New(cfg.Database.DSN)
		if err != nil {
			return nil, "", err
		}
		s, err := database.LoadSeries(db, datasetName)
		return s, "dataset:" + datasetName, err
	default:
		client := fetch.NewClient(cfg.Fetch, log)
		s, err := client.FetchCSV(context.Background(), csvURL)
		return s, csvURL, err
	}
}

// runParams merges the config defaults with the command-line overrides.
func runParams(defaults config.Backtest, strategyName string, fast, slow int, mode string, cash float64, engine string) runner.Params {
	if strategyName == "" {
		strategyName = defaults.Strategy
	}
	if fast == 0 {
		fast = defaults.FastPeriod
	}
	if slow == 0 {
		slow = defaults.SlowPeriod
	}
	if mode == "" {
		mode = defaults.TradeMode
	}
	if cash == 0 {
		cash = defaults.InitialCash
	}
	if engine == "" {
		engine = defaults.IndicatorEngine
	}

	return runner.Params{
		Strategy:        strategyName,
		Values:          map[string]any{"fast_period": fast, "slow_period": slow},
		TradeMode:       mode,
		InitialCash:     cash,
		Commission:      defaults.Commission,
		IndicatorEngine: engine,
	}
}
