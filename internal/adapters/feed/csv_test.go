package feed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/botsim/internal/domain"
)

const goodCSV = `start,end,open,high,low,close,volume
2024-05-01T09:30:00Z,2024-05-01T09:31:00Z,100,110,95,105,400
2024-05-01T09:31:00Z,2024-05-01T09:32:00Z,105,112,104,111,350
`

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestCSVSource_LoadsBars(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL.csv", goodCSV)
	writeCSV(t, dir, "MSFT.csv", goodCSV)

	src, err := NewCSVDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, src.Symbols())

	bars, err := src.Bars(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), bars[0].Start)
	assert.Equal(t, 110.0, bars[0].High)
	assert.Equal(t, 350.0, bars[1].Volume)
}

func TestCSVSource_UnknownSymbol(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL.csv", goodCSV)

	src, err := NewCSVDir(dir)
	require.NoError(t, err)

	_, err = src.Bars(context.Background(), "TSLA")
	assert.Error(t, err)
}

func TestNewCSVDir_EmptyDirectory(t *testing.T) {
	_, err := NewCSVDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadBars_BadTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL.csv", `start,end,open,high,low,close,volume
yesterday,2024-05-01T09:31:00Z,100,110,95,105,400
`)

	_, err := LoadBars(filepath.Join(dir, "AAPL.csv"), "AAPL")
	assert.ErrorContains(t, err, "bad start")
}

func TestLoadBars_MalformedBarSurfacesDataError(t *testing.T) {
	dir := t.TempDir()
	// High below low.
	writeCSV(t, dir, "AAPL.csv", `start,end,open,high,low,close,volume
2024-05-01T09:30:00Z,2024-05-01T09:31:00Z,100,90,95,105,400
`)

	_, err := LoadBars(filepath.Join(dir, "AAPL.csv"), "AAPL")
	var derr *domain.DataError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "AAPL", derr.Symbol)
}

func TestLoadBars_OutOfOrderSeries(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL.csv", `start,end,open,high,low,close,volume
2024-05-01T09:31:00Z,2024-05-01T09:32:00Z,105,112,104,111,350
2024-05-01T09:30:00Z,2024-05-01T09:31:00Z,100,110,95,105,400
`)

	_, err := LoadBars(filepath.Join(dir, "AAPL.csv"), "AAPL")
	var derr *domain.DataError
	assert.ErrorAs(t, err, &derr)
}

func TestStaticSource(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	src := NewStatic(map[string][]domain.Bar{
		"AAPL": {{
			Symbol: "AAPL", Start: start, End: start.Add(time.Minute),
			Open: 100, High: 110, Low: 95, Close: 105, Volume: 400,
		}},
	})

	assert.Equal(t, []string{"AAPL"}, src.Symbols())
	bars, err := src.Bars(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Len(t, bars, 1)

	_, err = src.Bars(context.Background(), "MSFT")
	assert.Error(t, err)
}
