package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pulkitch/strategy-backtester/internal/config"
	"github.com/pulkitch/strategy-backtester/internal/database"
	"github.com/pulkitch/strategy-backtester/internal/fetch"
	"github.com/pulkitch/strategy-backtester/internal/ingest"
	"github.com/pulkitch/strategy-backtester/internal/logger"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

func main() {
	configPath := flag.String("config", "./configs", "directory containing config.yml")
	csvPath := flag.String("csv", "", "path to an OHLCV CSV file to import")
	csvURL := flag.String("url", "", "URL of a remote OHLCV CSV to import")
	name := flag.String("name", "", "dataset name in the catalog (defaults to the file name)")
	list := flag.Bool("list", false, "list stored datasets and exit")
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

	db, err := database.New(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to open dataset catalog", zap.Error(err))
	}

	if *list {
		datasets, err := database.ListDatasets(db)
		if err != nil {
			log.Fatal("Failed to list datasets", zap.Error(err))
		}
		for _, ds := range datasets {
			fmt.Printf("%s\t%d bars\t%s\n", ds.Name, ds.Rows, ds.Source)
		}
		return
	}

	if (*csvPath == "") == (*csvURL == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -csv or -url is required")
		os.Exit(1)
	}

	var s *series.Series
	var source string
	if *csvPath != "" {
		source = *csvPath
		s, err = ingest.ReadFile(*csvPath)
	} else {
		source = *csvURL
		client := fetch.NewClient(cfg.Fetch, log)
		s, err = client.FetchCSV(context.Background(), *csvURL)
	}
	if err != nil {
		log.Fatal("Failed to ingest dataset", zap.Error(err))
	}

	dsName := *name
	if dsName == "" {
		base := filepath.Base(source)
		dsName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := database.SaveSeries(db, dsName, source, s); err != nil {
		log.Fatal("Failed to store dataset", zap.Error(err))
	}

	log.Info("Dataset imported",
		zap.String("name", dsName),
		zap.String("source", source),
		zap.Int("bars", s.Len()))
}
