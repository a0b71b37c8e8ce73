package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/botsim/internal/application/engine/synth"
	"github.com/alejandrodnm/botsim/internal/domain"
)

func synthOf(t *testing.T, symbol string, barStart time.Time) *synth.Synthesizer {
	t.Helper()
	s, err := synth.New(synth.Config{TicksPerBar: 4}, symbol, []domain.Bar{{
		Symbol: symbol,
		Start:  barStart,
		End:    barStart.Add(time.Minute),
		Open:   100, High: 110, Low: 95, Close: 105,
		Volume: 400,
	}})
	require.NoError(t, err)
	return s
}

func TestMergedFeed_TimestampOrderWithSymbolTieBreak(t *testing.T) {
	feed := newMergedFeed([]*synth.Synthesizer{
		synthOf(t, "MSFT", start),
		synthOf(t, "AAPL", start),
	})

	var ticks []domain.PriceTick
	for {
		tk, ok := feed.next()
		if !ok {
			break
		}
		ticks = append(ticks, tk)
	}
	require.Len(t, ticks, 8)

	for i := 1; i < len(ticks); i++ {
		prev, cur := ticks[i-1], ticks[i]
		assert.False(t, cur.Timestamp.Before(prev.Timestamp))
		if cur.Timestamp.Equal(prev.Timestamp) {
			assert.Less(t, prev.Symbol, cur.Symbol)
		}
	}
	// Equal timestamps alternate AAPL before MSFT.
	assert.Equal(t, "AAPL", ticks[0].Symbol)
	assert.Equal(t, "MSFT", ticks[1].Symbol)
}

func TestMergedFeed_DisjointRanges(t *testing.T) {
	feed := newMergedFeed([]*synth.Synthesizer{
		synthOf(t, "AAPL", start.Add(time.Hour)),
		synthOf(t, "MSFT", start),
	})

	var symbols []string
	for {
		tk, ok := feed.next()
		if !ok {
			break
		}
		symbols = append(symbols, tk.Symbol)
	}
	assert.Equal(t, []string{
		"MSFT", "MSFT", "MSFT", "MSFT",
		"AAPL", "AAPL", "AAPL", "AAPL",
	}, symbols)
}

func TestMergedFeed_Empty(t *testing.T) {
	feed := newMergedFeed(nil)
	_, ok := feed.next()
	assert.False(t, ok)
}

func TestClock_NeverRunsBackwards(t *testing.T) {
	c := &Clock{}
	c.Advance(start.Add(time.Minute))
	c.Advance(start)
	assert.Equal(t, start.Add(time.Minute), c.Now())
}
