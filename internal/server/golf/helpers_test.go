package golf

// twoRoundSchedule builds a valid two-round schedule for g groups of size s
// (g >= s) over players 1..g*s.
func twoRoundSchedule(g, s int) Schedule {
	player := func(i, j int) int { return i*s + j + 1 }

	first := make(Round, g)
	for i := 0; i < g; i++ {
		for j := 0; j < s; j++ {
			first[i] = append(first[i], player(i, j))
		}
	}

	second := make(Round, g)
	for k := 0; k < g; k++ {
		for j := 0; j < s; j++ {
			i := ((k-j)%g + g) % g
			second[k] = append(second[k], player(i, j))
		}
	}

	return Schedule{first, second}
}

// clone deep-copies a schedule so cases can mutate it freely
func clone(s Schedule) Schedule {
	out := make(Schedule, len(s))
	for r, round := range s {
		out[r] = make(Round, len(round))
		for g, group := range round {
			out[r][g] = append(Group(nil), group...)
		}
	}
	return out
}
