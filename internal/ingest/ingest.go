package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pulkitch/strategy-backtester/internal/series"
)

// FormatError reports a structural problem with an input dataset. It is
// always raised before a backtest starts.
type FormatError struct {
	Column string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("invalid dataset: %s", e.Reason)
	}
	return fmt.Sprintf("invalid dataset: column %q: %s", e.Column, e.Reason)
}

// requiredColumns are matched case-insensitively against the CSV header,
// in any column order.
var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

// dateFormats is the ladder of accepted date layouts, tried in order. The
// first layout that parses every row wins; a generic parse is the last
// resort for mixed or unusual columns.
var dateFormats = []string{
	"02-01-2006 15:04",
	"02/01/2006 15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
	"2006/01/02",
}

var genericFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
}

// ReadFile ingests an OHLCV CSV from disk.
func ReadFile(path string) (*series.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV validates, parses and normalizes an OHLCV table into the
// canonical price series: required columns located case-insensitively,
// dates parsed through the format ladder, numeric cells coerced (rows
// with uncoercible cells are dropped), bars sorted ascending by time.
func ReadCSV(r io.Reader) (*series.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("cannot read header: %v", err)}
	}

	index, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var dates []string
	var rows [][5]float64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("cannot read row: %v", err)}
		}

		fields, ok := coerceNumeric(record, index)
		if !ok {
			continue // non-numeric cell, drop the row
		}
		dates = append(dates, strings.TrimSpace(record[index["date"]]))
		rows = append(rows, fields)
	}

	times, err := parseDates(dates)
	if err != nil {
		return nil, err
	}

	bars := make([]series.Bar, 0, len(rows))
	for i, t := range times {
		if t.IsZero() {
			continue // date failed every layout, drop the row
		}
		bars = append(bars, series.Bar{
			Time:   t,
			Open:   rows[i][0],
			High:   rows[i][1],
			Low:    rows[i][2],
			Close:  rows[i][3],
			Volume: rows[i][4],
		})
	}

	if len(bars) == 0 {
		return nil, &FormatError{Reason: "no valid data rows found after processing"}
	}

	s, err := series.New(bars)
	if err != nil {
		return nil, &FormatError{Column: "date", Reason: err.Error()}
	}
	return s, nil
}

// locateColumns maps each required column name to its header position.
func locateColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{
			Column: strings.Join(missing, ", "),
			Reason: "missing required column(s)",
		}
	}
	return index, nil
}

// coerceNumeric pulls the open/high/low/close/volume cells out of a
// record. A cell that does not parse as a number marks the row invalid.
func coerceNumeric(record []string, index map[string]int) ([5]float64, bool) {
	var out [5]float64
	for i, col := range []string{"open", "high", "low", "close", "volume"} {
		pos := index[col]
		if pos >= len(record) {
			return out, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[pos]), 64)
		if err != nil {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

// parseDates resolves the date column. Each ladder layout is tried
// against the whole column; the first layout that parses every cell is
// used. If none fits, each cell falls back to the generic layouts and
// unparseable cells are returned as zero times (their rows get dropped).
// A column where nothing parses at all is a format error.
func parseDates(raw []string) ([]time.Time, error) {
	for _, layout := range dateFormats {
		times, ok := parseAll(raw, layout)
		if ok {
			return times, nil
		}
	}

	out := make([]time.Time, len(raw))
	parsed := 0
	for i, cell := range raw {
		if t, ok := parseAny(cell); ok {
			out[i] = t
			parsed++
		}
	}
	if parsed == 0 && len(raw) > 0 {
		return nil, &FormatError{
			Column: "date",
			Reason: fmt.Sprintf("unparseable date column (first value %q)", raw[0]),
		}
	}
	return out, nil
}

func parseAll(raw []string, layout string) ([]time.Time, bool) {
	out := make([]time.Time, len(raw))
	for i, cell := range raw {
		t, err := time.Parse(layout, cell)
		if err != nil {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func parseAny(cell string) (time.Time, bool) {
	for _, layout := range append(append([]string{}, dateFormats...), genericFormats...) {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
