package construct

import (
	"golf/internal/server/golf"
)

// TrivialSolution builds a two-round schedule for any valid instance
type TrivialSolution struct{}

func (TrivialSolution) Info() Info {
	return Info{
		ID:          "golf_trivial_solution_constructor",
		Version:     1,
		Name:        "Trivial solution constructor",
		Description: "Trivial two-round construction",
	}
}

func (TrivialSolution) AppliesTo(inst golf.Instance) bool {
	return inst.NumGroups >= inst.GroupSize && inst.GroupSize >= 2
}

// Construct numbers player j of group i as i*s+j+1. Round one keeps the
// groups together; round two sends player (i, j) to group (i+j) mod g, so two
// players of one first-round group never share a second-round group.
func (c TrivialSolution) Construct(inst golf.Instance) *Candidate {
	if !c.AppliesTo(inst) {
		return nil
	}
	g, s := inst.NumGroups, inst.GroupSize

	first := make(golf.Round, g)
	second := make(golf.Round, g)
	for i := 0; i < g; i++ {
		first[i] = make(golf.Group, 0, s)
		second[i] = make(golf.Group, 0, s)
	}
	for i := 0; i < g; i++ {
		for j := 0; j < s; j++ {
			player := i*s + j + 1
			first[i] = append(first[i], player)
			k := (i + j) % g
			second[k] = append(second[k], player)
		}
	}

	return &Candidate{
		Kind:      golf.KindLower,
		NumRounds: 2,
		Schedule:  golf.Schedule{first, second},
	}
}

// TrivialUpperBound records the counting bound (players-1)/(size-1)
type TrivialUpperBound struct{}

func (TrivialUpperBound) Info() Info {
	return Info{
		ID:          "golf_trivial_upper_bound_constructor",
		Version:     1,
		Name:        "Trivial upper bound constructor",
		Description: "Trivial upper bound",
	}
}

func (TrivialUpperBound) AppliesTo(inst golf.Instance) bool {
	return inst.GroupSize >= 2
}

func (c TrivialUpperBound) Construct(inst golf.Instance) *Candidate {
	if !c.AppliesTo(inst) {
		return nil
	}
	return &Candidate{
		Kind:      golf.KindUpper,
		NumRounds: inst.TrivialUpperBound(),
	}
}

// Builtin returns the constructors run by default
func Builtin() []Constructor {
	return []Constructor{TrivialSolution{}, TrivialUpperBound{}}
}
