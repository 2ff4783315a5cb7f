package golf

import "strconv"

// Unknown is shown in place of an undefined bound
const Unknown = "unknown"

// BestUpper returns the smallest upper bound, or nil when none is recorded
func BestUpper(bounds []Bound) *Bound {
	var best *Bound
	for i := range bounds {
		b := &bounds[i]
		if b.Kind != KindUpper {
			continue
		}
		if best == nil || b.NumRounds < best.NumRounds {
			best = b
		}
	}
	return best
}

// BestLower returns the largest lower bound, or nil when none is recorded.
// Among bounds tied at the maximum a solution is preferred; which of several
// tied candidates is returned is unspecified.
func BestLower(bounds []Bound) *Bound {
	var best *Bound
	for i := range bounds {
		b := &bounds[i]
		if b.Kind != KindLower {
			continue
		}
		switch {
		case best == nil, b.NumRounds > best.NumRounds:
			best = b
		case b.NumRounds == best.NumRounds && b.IsSolution() && !best.IsSolution():
			best = b
		}
	}
	return best
}

// Resolution is the authoritative state derived from an instance's bounds
type Resolution struct {
	Upper *Bound
	Lower *Bound
}

// Resolve reduces the full bound collection of one instance
func Resolve(bounds []Bound) Resolution {
	return Resolution{
		Upper: BestUpper(bounds),
		Lower: BestLower(bounds),
	}
}

// Solution returns the schedule behind the best lower bound, if any
func (r Resolution) Solution() *Solution {
	if r.Lower == nil || !r.Lower.IsSolution() {
		return nil
	}
	return r.Lower.Solution
}

// IsClosed reports whether both bounds are known and coincide
func (r Resolution) IsClosed() bool {
	if r.Upper == nil || r.Lower == nil {
		return false
	}
	return r.Upper.NumRounds == r.Lower.NumRounds
}

// Range renders the bound interval, e.g. "5" or "4 - 6"
func (r Resolution) Range() string {
	if r.Upper == nil && r.Lower == nil {
		return Unknown
	}
	if r.IsClosed() {
		return strconv.Itoa(r.Lower.NumRounds)
	}
	lo, hi := "?", "?"
	if r.Lower != nil {
		lo = strconv.Itoa(r.Lower.NumRounds)
	}
	if r.Upper != nil {
		hi = strconv.Itoa(r.Upper.NumRounds)
	}
	return lo + " - " + hi
}

// State is an instance together with its resolved bounds
type State struct {
	Instance   Instance
	Resolution Resolution
}
