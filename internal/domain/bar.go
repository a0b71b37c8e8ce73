package domain

import "time"

// Bar is an OHLC(V) summary of price activity over one interval.
type Bar struct {
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Start  time.Time
	End    time.Time
}

// Validate checks the internal consistency of a single bar.
func (b Bar) Validate() error {
	if !b.End.After(b.Start) {
		return &DataError{Symbol: b.Symbol, Reason: "non-positive bar span"}
	}
	if b.High < b.Low {
		return &DataError{Symbol: b.Symbol, Reason: "high below low"}
	}
	if b.Open > b.High || b.Open < b.Low {
		return &DataError{Symbol: b.Symbol, Reason: "open outside [low, high]"}
	}
	if b.Close > b.High || b.Close < b.Low {
		return &DataError{Symbol: b.Symbol, Reason: "close outside [low, high]"}
	}
	if b.Volume < 0 {
		return &DataError{Symbol: b.Symbol, Reason: "negative volume"}
	}
	return nil
}

// ValidateSeries checks that bars are individually valid and form a
// monotonic, non-overlapping sequence.
func ValidateSeries(bars []Bar) error {
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return err
		}
		if i > 0 && b.Start.Before(bars[i-1].End) {
			return &DataError{Symbol: b.Symbol, Reason: "out-of-order bars"}
		}
	}
	return nil
}
