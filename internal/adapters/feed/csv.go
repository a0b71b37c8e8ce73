package feed

// CSV bar source: one <symbol>.csv per file with header
// start,end,open,high,low,close,volume and RFC 3339 timestamps. Files are
// read once per run, before any tick is produced; network retrieval of
// historical data is somebody else's job.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// barRow is the CSV row layout.
type barRow struct {
	Start  string  `csv:"start"`
	End    string  `csv:"end"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSVSource implements ports.BarSource over a directory of CSV files.
type CSVSource struct {
	paths map[string]string // symbol → file path
}

// NewCSVDir scans dir for *.csv files; each file serves the symbol named by
// its base name.
func NewCSVDir(dir string) (*CSVSource, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("feed.NewCSVDir: glob %q: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("feed.NewCSVDir: no csv files in %q", dir)
	}

	paths := make(map[string]string, len(matches))
	for _, path := range matches {
		symbol := strings.TrimSuffix(filepath.Base(path), ".csv")
		paths[symbol] = path
	}
	return &CSVSource{paths: paths}, nil
}

// Symbols implements ports.BarSource.
func (s *CSVSource) Symbols() []string {
	symbols := make([]string, 0, len(s.paths))
	for sym := range s.paths {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Bars implements ports.BarSource.
func (s *CSVSource) Bars(_ context.Context, symbol string) ([]domain.Bar, error) {
	path, ok := s.paths[symbol]
	if !ok {
		return nil, fmt.Errorf("feed.Bars: unknown symbol %q", symbol)
	}
	return LoadBars(path, symbol)
}

// LoadBars reads and validates one CSV bar file.
func LoadBars(path, symbol string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("feed.LoadBars: open %q: %w", path, err)
	}
	defer f.Close()

	var rows []barRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("feed.LoadBars: parse %q: %w", path, err)
	}

	bars := make([]domain.Bar, 0, len(rows))
	for i, row := range rows {
		start, err := time.Parse(time.RFC3339, row.Start)
		if err != nil {
			return nil, fmt.Errorf("feed.LoadBars: %q row %d: bad start: %w", path, i+1, err)
		}
		end, err := time.Parse(time.RFC3339, row.End)
		if err != nil {
			return nil, fmt.Errorf("feed.LoadBars: %q row %d: bad end: %w", path, i+1, err)
		}
		bars = append(bars, domain.Bar{
			Symbol: symbol,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
			Start:  start.UTC(),
			End:    end.UTC(),
		})
	}

	if err := domain.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("feed.LoadBars: %q: %w", path, err)
	}
	return bars, nil
}

// StaticSource implements ports.BarSource over in-memory bars. Used by
// tests and embedders that already hold their data.
type StaticSource struct {
	bars map[string][]domain.Bar
}

// NewStatic creates a source over the given bars.
func NewStatic(bars map[string][]domain.Bar) *StaticSource {
	return &StaticSource{bars: bars}
}

// Symbols implements ports.BarSource.
func (s *StaticSource) Symbols() []string {
	symbols := make([]string, 0, len(s.bars))
	for sym := range s.bars {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Bars implements ports.BarSource.
func (s *StaticSource) Bars(_ context.Context, symbol string) ([]domain.Bar, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("feed.Bars: unknown symbol %q", symbol)
	}
	return bars, nil
}
