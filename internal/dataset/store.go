package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/temple-crowd/internal/models"
)

// ErrEmptyDataset indicates the dataset file holds no rows.
var ErrEmptyDataset = errors.New("dataset contains no rows")

// Header is the exact column set and order of the persisted dataset.
var Header = []string{
	"timestamp", "day_of_week", "month", "hour", "weather",
	"is_weekend", "is_holiday", "is_festival_day", "pilgrim_count",
}

// WriteCSV persists records to path, creating parent directories as needed.
func WriteCSV(path string, records []models.HistoricalRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("failed to write dataset header: %w", err)
	}

	row := make([]string, len(Header))
	for _, rec := range records {
		row[0] = rec.Timestamp.UTC().Format(time.RFC3339)
		row[1] = strconv.Itoa(rec.DayOfWeek)
		row[2] = strconv.Itoa(rec.Month)
		row[3] = strconv.Itoa(rec.Hour)
		row[4] = rec.Weather
		row[5] = strconv.Itoa(rec.IsWeekend)
		row[6] = strconv.Itoa(rec.IsHoliday)
		row[7] = strconv.Itoa(rec.IsFestivalDay)
		row[8] = strconv.Itoa(rec.PilgrimCount)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return nil
}

// ReadCSV loads all records from path.
func ReadCSV(path string) ([]models.HistoricalRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) <= 1 {
		return nil, ErrEmptyDataset
	}

	records := make([]models.HistoricalRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ensure generates and writes the dataset if it does not already exist. An
// existing file is left untouched, so two training runs against the same
// file see identical data.
func Ensure(path string, cfg GeneratorConfig, logger *logrus.Logger) error {
	if _, err := os.Stat(path); err == nil {
		logger.WithField("path", path).Debug("Historical dataset already present")
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat dataset: %w", err)
	}

	records := Generate(cfg)
	if err := WriteCSV(path, records); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(records),
	}).Info("Generated historical dataset")
	return nil
}

func parseRow(row []string) (models.HistoricalRecord, error) {
	var rec models.HistoricalRecord

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return rec, fmt.Errorf("invalid timestamp %q: %w", row[0], err)
	}
	rec.Timestamp = ts.UTC()
	rec.Weather = row[4]

	ints := []struct {
		value string
		dst   *int
		name  string
	}{
		{row[1], &rec.DayOfWeek, "day_of_week"},
		{row[2], &rec.Month, "month"},
		{row[3], &rec.Hour, "hour"},
		{row[5], &rec.IsWeekend, "is_weekend"},
		{row[6], &rec.IsHoliday, "is_holiday"},
		{row[7], &rec.IsFestivalDay, "is_festival_day"},
		{row[8], &rec.PilgrimCount, "pilgrim_count"},
	}
	for _, field := range ints {
		n, err := strconv.Atoi(field.value)
		if err != nil {
			return rec, fmt.Errorf("invalid %s %q: %w", field.name, field.value, err)
		}
		*field.dst = n
	}

	return rec, nil
}
