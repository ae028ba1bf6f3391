package domain

import (
	"sort"

	"cloud.google.com/go/civil"
)

// PackageWindow charges AtPriceDays of every Days consecutive nights, the rest are free.
type PackageWindow struct {
	Days        int
	AtPriceDays int
}

// Valid reports whether the window actually frees nights.
func (w PackageWindow) Valid() bool {
	return w.Days > 0 && w.AtPriceDays > 0 && w.AtPriceDays < w.Days
}

// Redistribute applies peak selection to a run of consecutive nightly amounts and returns the
// per-night allocation. Free nights are allocated zero.
//
// The most expensive night anchors a window of Days nights ending on it (clamped to the run start).
// Inside the window the Days-AtPriceDays most expensive nights become free, ties going to the earliest.
// The nights left and right of the window are handled the same way; stretches shorter than Days are
// charged night by night.
func (w PackageWindow) Redistribute(amounts []*Money) []*Money {
	out := make([]*Money, len(amounts))
	for i, a := range amounts {
		out[i] = a.Copy()
	}
	if !w.Valid() {
		return out
	}
	w.peak(out, 0, len(out))
	return out
}

func (w PackageWindow) peak(amounts []*Money, lo, hi int) {
	if hi-lo < w.Days {
		return
	}

	top := lo
	for i := lo + 1; i < hi; i++ {
		if amounts[i].GreaterThan(amounts[top]) {
			top = i
		}
	}

	start := top - w.Days + 1
	if start < lo {
		start = lo
	}
	end := start + w.Days

	idx := make([]int, 0, w.Days)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return amounts[idx[a]].GreaterThan(amounts[idx[b]])
	})
	for _, i := range idx[:w.Days-w.AtPriceDays] {
		amounts[i] = Zero()
	}

	w.peak(amounts, lo, start)
	w.peak(amounts, end, hi)
}

// windowRuns splits the nights covered by cal into maximal runs of consecutive indexes.
func windowRuns(nights []civil.Date, cal *discountCalendar) [][2]int {
	var runs [][2]int
	start := -1
	for i, n := range nights {
		_, covered := cal.valueOn(n)
		switch {
		case covered && start < 0:
			start = i
		case !covered && start >= 0:
			runs = append(runs, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, [2]int{start, len(nights)})
	}
	return runs
}

// applyWindows redistributes amounts in place for every windowed layer of the stack.
func applyWindows(nights []civil.Date, amounts []*Money, stack discountStack) {
	for _, layer := range stack.layers {
		if !layer.discount.HasWindow() {
			continue
		}
		w := PackageWindow{Days: layer.discount.Days, AtPriceDays: layer.discount.AtPriceDays}
		for _, run := range windowRuns(nights, layer) {
			copy(amounts[run[0]:run[1]], w.Redistribute(amounts[run[0]:run[1]]))
		}
	}
}
