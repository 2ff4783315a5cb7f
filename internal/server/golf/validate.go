package golf

// pair is an unordered pair of players stored with the smaller id first
type pair struct {
	lo, hi int
}

func makePair(a, b int) pair {
	if a < b {
		return pair{a, b}
	}
	return pair{b, a}
}

// meeting is the 1-indexed place where a pair first shared a group
type meeting struct {
	round, group int
}

// Validate checks a decoded schedule against an instance and the declared
// number of rounds. The first broken rule is returned as *ValidationError.
func Validate(s Schedule, inst Instance, declaredRounds int) error {
	if len(s) != declaredRounds {
		return newValidationError(KindWrongNumberOfRounds, map[string]int{
			"actual":   len(s),
			"expected": declaredRounds,
		})
	}

	players := make(map[int]struct{}, inst.NumPlayers())
	met := make(map[pair]meeting)

	for r, round := range s {
		roundNum := r + 1
		if len(round) != inst.NumGroups {
			return newValidationError(KindWrongNumberOfGroupsInRound, map[string]int{
				"actual":   len(round),
				"expected": inst.NumGroups,
				"round":    roundNum,
			})
		}

		// player -> group it was first seen in this round
		placed := make(map[int]int, inst.NumPlayers())

		for g, group := range round {
			groupNum := g + 1
			if len(group) != inst.GroupSize {
				return newValidationError(KindWrongNumberOfPlayersInGroup, map[string]int{
					"actual":   len(group),
					"expected": inst.GroupSize,
					"group":    groupNum,
					"round":    roundNum,
				})
			}

			for _, player := range group {
				players[player] = struct{}{}
				if first, ok := placed[player]; ok {
					return newValidationError(KindRepeatedPlayerInRound, map[string]int{
						"player": player,
						"group1": first,
						"group2": groupNum,
						"round":  roundNum,
					})
				}
				placed[player] = groupNum
			}

			for i := 0; i < len(group)-1; i++ {
				for j := i + 1; j < len(group); j++ {
					p := makePair(group[i], group[j])
					if prev, ok := met[p]; ok {
						return newValidationError(KindPlayersMeetMoreThanOnce, map[string]int{
							"player1":     p.lo,
							"player2":     p.hi,
							"group":       groupNum,
							"round":       roundNum,
							"first_group": prev.group,
							"first_round": prev.round,
						})
					}
					met[p] = meeting{round: roundNum, group: groupNum}
				}
			}
		}
	}

	if len(players) > inst.NumPlayers() {
		return newValidationError(KindTooManyPlayers, map[string]int{
			"actual":   len(players),
			"expected": inst.NumPlayers(),
		})
	}

	return nil
}
