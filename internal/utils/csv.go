package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cryptoSignalEngine/internal/domain"
)

var csvHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteCandlesToCSV writes a candle series to a CSV file with a header row.
func WriteCandlesToCSV(candles []*domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(csvHeader)
	for _, c := range candles {
		writer.Write([]string{
			c.OpenTime.Format(time.RFC3339),
			c.CloseTime.Format(time.RFC3339),
			c.Symbol,
			c.Interval,
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatFloat(c.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadCandlesFromCSV reads a candle series previously written by
// WriteCandlesToCSV.
func ReadCandlesFromCSV(filename string) ([]*domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header with %d columns", len(header))
	}

	var candles []*domain.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		candle, err := parseCandleRecord(record)
		if err != nil {
			return nil, fmt.Errorf("parsing CSV line %d: %w", line, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseCandleRecord(record []string) (*domain.Candle, error) {
	if len(record) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(csvHeader), len(record))
	}
	openTime, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return nil, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := time.Parse(time.RFC3339, record[1])
	if err != nil {
		return nil, fmt.Errorf("close_time: %w", err)
	}

	vals := make([]float64, 5)
	for i, name := range []string{"open", "high", "low", "close", "volume"} {
		v, err := strconv.ParseFloat(record[4+i], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		vals[i] = v
	}

	return &domain.Candle{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    record[2],
		Interval:  record[3],
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		IsFinal:   true,
	}, nil
}
