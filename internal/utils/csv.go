package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"smcSignalBot/internal/domain"
)

var csvHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteKlinesToCSV writes klines to filename, creating its directory.
func WriteKlinesToCSV(klines []*domain.Kline, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteKlines(file, klines); err != nil {
		return err
	}
	return file.Close()
}

// WriteKlines encodes klines as CSV with a header row.
func WriteKlines(w io.Writer, klines []*domain.Kline) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, k := range klines {
		if err := writer.Write([]string{
			k.OpenTime.UTC().Format(time.RFC3339Nano),
			k.CloseTime.UTC().Format(time.RFC3339Nano),
			k.Symbol,
			k.Interval,
			strconv.FormatFloat(k.Open, 'f', -1, 64),
			strconv.FormatFloat(k.High, 'f', -1, 64),
			strconv.FormatFloat(k.Low, 'f', -1, 64),
			strconv.FormatFloat(k.Close, 'f', -1, 64),
			strconv.FormatFloat(k.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadKlinesFromCSV loads a file written by WriteKlinesToCSV.
func ReadKlinesFromCSV(filename string) ([]*domain.Kline, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadKlines(file)
}

// ReadKlines decodes CSV produced by WriteKlines. Rows must be in ascending
// open time order; every row is marked final.
func ReadKlines(r io.Reader) ([]*domain.Kline, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty kline csv")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if header[0] != csvHeader[0] {
		return nil, fmt.Errorf("unexpected csv header %q", header[0])
	}

	var klines []*domain.Kline
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		k, err := parseKlineRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(klines); n > 0 && !k.OpenTime.After(klines[n-1].OpenTime) {
			return nil, fmt.Errorf("line %d: open time %s is not after the previous row", line, k.OpenTime.Format(time.RFC3339))
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func parseKlineRecord(rec []string) (*domain.Kline, error) {
	openTime, err := time.Parse(time.RFC3339Nano, rec[0])
	if err != nil {
		return nil, fmt.Errorf("parsing open_time '%s': %w", rec[0], err)
	}
	closeTime, err := time.Parse(time.RFC3339Nano, rec[1])
	if err != nil {
		return nil, fmt.Errorf("parsing close_time '%s': %w", rec[1], err)
	}
	values := make([]float64, 5)
	for i := range values {
		v, err := strconv.ParseFloat(rec[4+i], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %w", csvHeader[4+i], rec[4+i], err)
		}
		values[i] = v
	}
	return &domain.Kline{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    rec[2],
		Interval:  rec[3],
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		IsFinal:   true,
	}, nil
}
