package synth

// SpreadKind selects how the bid/ask spread is derived from a tick's last
// price.
type SpreadKind string

const (
	// SpreadFixed applies a constant absolute spread.
	SpreadFixed SpreadKind = "fixed"
	// SpreadRelative applies Value as a fraction of the last price.
	SpreadRelative SpreadKind = "relative"
	// SpreadCustom delegates to Func.
	SpreadCustom SpreadKind = "custom"
)

// Spread is the spread model of a run. The zero value is a fixed spread of
// zero: bid == last == ask, chart-price fills.
type Spread struct {
	Kind  SpreadKind
	Value float64
	Func  func(last float64) float64 // used when Kind == SpreadCustom
}

// at returns the full spread width for a given last price. Never negative.
func (s Spread) at(last float64) float64 {
	var w float64
	switch s.Kind {
	case SpreadRelative:
		w = last * s.Value
	case SpreadCustom:
		if s.Func != nil {
			w = s.Func(last)
		}
	default:
		w = s.Value
	}
	if w < 0 {
		return 0
	}
	return w
}

// around centers the spread on last and returns (bid, ask).
func (s Spread) around(last float64) (bid, ask float64) {
	half := s.at(last) / 2
	return last - half, last + half
}
