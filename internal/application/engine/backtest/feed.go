package backtest

import (
	"github.com/alejandrodnm/botsim/internal/application/engine/synth"
	"github.com/alejandrodnm/botsim/internal/domain"
)

// mergedFeed merges per-symbol tick sequences into one stream in
// non-decreasing timestamp order. Equal timestamps break ties by symbol so
// the merge order is a total order and runs replay identically.
type mergedFeed struct {
	seqs []*synthHead
}

type synthHead struct {
	next   func() (domain.PriceTick, bool)
	head   domain.PriceTick
	active bool
}

func newMergedFeed(seqs []*synth.Synthesizer) *mergedFeed {
	f := &mergedFeed{}
	for _, s := range seqs {
		h := &synthHead{next: s.Next}
		h.head, h.active = h.next()
		f.seqs = append(f.seqs, h)
	}
	return f
}

// next pops the earliest head tick. The symbol count is small, so a linear
// scan beats heap bookkeeping and keeps the order obvious.
func (f *mergedFeed) next() (domain.PriceTick, bool) {
	var best *synthHead
	for _, h := range f.seqs {
		if !h.active {
			continue
		}
		if best == nil || earlier(h.head, best.head) {
			best = h
		}
	}
	if best == nil {
		return domain.PriceTick{}, false
	}
	tick := best.head
	best.head, best.active = best.next()
	return tick, true
}

func earlier(a, b domain.PriceTick) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Symbol < b.Symbol
}
