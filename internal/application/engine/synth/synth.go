package synth

// Package synth expands OHLC(V) bars into a deterministic intra-bar tick
// stream. The price walks a configurable path through the bar's extremes
// (open→high→low→close by default) by piecewise linear interpolation, and a
// spread model derives bid/ask from each tick's last price.

import (
	"time"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// Path selects the order in which the synthesized price visits the bar's
// extremes between open and close.
type Path string

const (
	// PathOHLC walks open → high → low → close.
	PathOHLC Path = "ohlc"
	// PathOLHC walks open → low → high → close.
	PathOLHC Path = "olhc"
)

// anchors returns the four price anchors of the path through a bar.
func (p Path) anchors(b domain.Bar) [4]float64 {
	if p == PathOLHC {
		return [4]float64{b.Open, b.Low, b.High, b.Close}
	}
	return [4]float64{b.Open, b.High, b.Low, b.Close}
}

// Config controls tick synthesis for one run. Immutable once the
// synthesizer is built.
type Config struct {
	// TicksPerBar is how many ticks each bar expands into. Minimum 4 so
	// every anchor of the path is visited.
	TicksPerBar int

	// Path is the intra-bar extreme visiting order.
	Path Path

	// Spread derives bid/ask from each tick's last price.
	Spread Spread
}

// DefaultTicksPerBar is used when Config.TicksPerBar is unset.
const DefaultTicksPerBar = 4

func (c Config) withDefaults() Config {
	if c.TicksPerBar < 4 {
		c.TicksPerBar = DefaultTicksPerBar
	}
	if c.Path == "" {
		c.Path = PathOHLC
	}
	return c
}

// Synthesizer is a lazy, finite, restartable tick sequence over a validated
// bar series for one symbol.
type Synthesizer struct {
	cfg     Config
	symbol  string
	bars    []domain.Bar
	barIdx  int
	tickIdx int
}

// New validates the bar series and returns a synthesizer positioned before
// the first tick. Malformed input surfaces as a DataError before any tick is
// produced.
func New(cfg Config, symbol string, bars []domain.Bar) (*Synthesizer, error) {
	if err := domain.ValidateSeries(bars); err != nil {
		return nil, err
	}
	return &Synthesizer{cfg: cfg.withDefaults(), symbol: symbol, bars: bars}, nil
}

// Symbol returns the symbol this synthesizer serves.
func (s *Synthesizer) Symbol() string { return s.symbol }

// Reset rewinds the sequence to before the first tick.
func (s *Synthesizer) Reset() {
	s.barIdx = 0
	s.tickIdx = 0
}

// Next produces the next tick. The second return is false when the sequence
// is exhausted.
func (s *Synthesizer) Next() (domain.PriceTick, bool) {
	if s.barIdx >= len(s.bars) {
		return domain.PriceTick{}, false
	}

	bar := s.bars[s.barIdx]
	n := s.cfg.TicksPerBar
	tick := s.tickAt(bar, s.tickIdx, n)

	s.tickIdx++
	if s.tickIdx >= n {
		s.tickIdx = 0
		s.barIdx++
	}
	return tick, true
}

// tickAt computes tick i of n for a bar. Timestamps are evenly spaced from
// Start with step span/n, so the last tick stays strictly before End and the
// first tick of the next bar is strictly later.
func (s *Synthesizer) tickAt(bar domain.Bar, i, n int) domain.PriceTick {
	span := bar.End.Sub(bar.Start)
	ts := bar.Start.Add(time.Duration(i) * span / time.Duration(n))

	u := 0.0
	if n > 1 {
		u = float64(i) / float64(n-1)
	}
	last := interpolate(s.cfg.Path.anchors(bar), u)
	bid, ask := s.cfg.Spread.around(last)

	return domain.PriceTick{
		Symbol:    s.symbol,
		Timestamp: ts,
		Bid:       bid,
		Ask:       ask,
		Last:      last,
		Volume:    bar.Volume / float64(n),
	}
}

// interpolate evaluates the piecewise linear path through the four anchors
// at fraction u ∈ [0, 1].
func interpolate(a [4]float64, u float64) float64 {
	if u <= 0 {
		return a[0]
	}
	if u >= 1 {
		return a[3]
	}
	scaled := u * 3
	seg := int(scaled)
	frac := scaled - float64(seg)
	return a[seg] + (a[seg+1]-a[seg])*frac
}
