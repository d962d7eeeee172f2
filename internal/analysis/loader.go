package analysis

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/HengWoo/TA-flagger/internal/models"
)

// BarSource supplies the bars an analysis runs over.
type BarSource interface {
	LoadBars(ctx context.Context) ([]models.Bar, error)
}

var requiredColumns = []string{"open", "high", "low", "close", "volume"}

// Accepted date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-2006 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ErrNoBars is returned when a source yields nothing usable.
var ErrNoBars = errors.New("no bars after cleaning")

// ParseDate tries every accepted layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// CSVSource reads bars from a CSV file on every load.
type CSVSource struct {
	Path string
}

func (s CSVSource) LoadBars(_ context.Context) ([]models.Bar, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("CSV file not found at %s: %w", s.Path, err)
	}
	defer f.Close()

	bars, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Path, err)
	}
	return bars, nil
}

// LoadCSV parses OHLCV bars. The header must name a date column and the
// open, high, low, close and volume columns (case-insensitive). Rows whose
// date or prices do not parse are dropped; the result is sorted by time.
func LoadCSV(r io.Reader) ([]models.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	dateIdx, ok := idx["date"]
	if !ok {
		return nil, errors.New("CSV file does not contain a 'date' column")
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("required column '%s' is missing from the CSV file", col)
		}
	}

	var bars []models.Bar
	badDates, badValues := 0, 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		ts, err := ParseDate(field(rec, dateIdx))
		if err != nil {
			badDates++
			continue
		}

		var vals [5]float64
		valid := true
		for i, col := range requiredColumns {
			v, err := strconv.ParseFloat(strings.TrimSpace(field(rec, idx[col])), 64)
			if err != nil {
				valid = false
				break
			}
			vals[i] = v
		}
		if !valid {
			badValues++
			continue
		}

		bars = append(bars, models.Bar{
			Time: ts, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4],
		})
	}

	slog.Info("csv parsed",
		"component", "analysis",
		"rows", len(bars),
		"dropped_dates", badDates,
		"dropped_values", badValues,
	)

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: check your date formats", ErrNoBars)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// CSVInspection describes the head of a CSV file.
type CSVInspection struct {
	FilePath   string              `json:"file_path"`
	FileSize   int64               `json:"file_size"`
	FirstLines []string            `json:"first_few_lines"`
	Columns    []string            `json:"columns"`
	SampleData []map[string]string `json:"sample_data"`
}

// InspectCSV reports the size, first five lines, columns and five sample
// records of a CSV file.
func InspectCSV(path string) (*CSVInspection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("CSV file not found at %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := &CSVInspection{FilePath: path, FileSize: info.Size()}

	sc := bufio.NewScanner(f)
	for len(out.FirstLines) < 5 && sc.Scan() {
		out.FirstLines = append(out.FirstLines, sc.Text()+"\n")
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	out.Columns = header

	for len(out.SampleData) < 5 {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = field(rec, i)
		}
		out.SampleData = append(out.SampleData, row)
	}
	return out, nil
}
