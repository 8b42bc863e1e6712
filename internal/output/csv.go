// Package output writes zonal statistics results.
package output

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/gruppe-adler/zonal-utils/internal/stats"
)

// CSVWriter writes one row of statistics per zone. Statistics without a
// meaningful value (empty zones) are written as NA.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	stats  []stats.Stat
}

// NewCSVWriter creates the output file and writes the header row
func NewCSVWriter(path, fieldName string, sts []stats.Stat) (*CSVWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &CSVWriter{
		file:   file,
		writer: csv.NewWriter(file),
		stats:  sts,
	}

	header := make([]string, 0, len(sts)+1)
	header = append(header, fieldName)
	for _, s := range sts {
		header = append(header, s.String())
	}

	if err := w.writer.Write(header); err != nil {
		file.Close()
		return nil, err
	}

	return w, nil
}

// Write appends one zone's results
func (w *CSVWriter) Write(id string, results map[string]float64) error {
	record := make([]string, 0, len(w.stats)+1)
	record = append(record, id)

	for _, s := range w.stats {
		record = append(record, formatValue(results[s.String()]))
	}

	return w.writer.Write(record)
}

// Close flushes and closes the output file
func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}

	return w.file.Close()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
