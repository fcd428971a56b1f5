package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/SCPrime/PaiiD-sub000/internal/domain"
)

// WriteBarsToCSV writes bars with a header row, one bar per line.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"date", "symbol", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Date.Format(time.RFC3339),
			b.Symbol,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV reads a bar file produced by WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s contains no bar rows", filename)
	}

	bars := make([]*domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != 7 {
			return nil, fmt.Errorf("%s row %d: expected 7 columns, got %d", filename, i+2, len(rec))
		}
		date, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: parsing date %q: %w", filename, i+2, rec[0], err)
		}
		values := make([]float64, 5)
		for j, field := range rec[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: parsing %q: %w", filename, i+2, field, err)
			}
			values[j] = v
		}
		bars = append(bars, &domain.Bar{
			Date:   date,
			Symbol: rec[1],
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}
	return bars, nil
}

// WriteTradesToCSV writes a run's closed trades for offline analysis.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"symbol", "entry_date", "exit_date", "entry_price", "exit_price", "quantity", "pnl", "pnl_percent", "close_reason"})

	for _, t := range trades {
		writer.Write([]string{
			t.Symbol,
			t.EntryDate.Format(time.RFC3339),
			t.ExitDate.Format(time.RFC3339),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			strconv.FormatInt(t.Quantity, 10),
			strconv.FormatFloat(t.PNL, 'f', -1, 64),
			strconv.FormatFloat(t.PNLPercent, 'f', -1, 64),
			string(t.CloseReason),
		})
	}
	return writer.Error()
}
