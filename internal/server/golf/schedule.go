package golf

import (
	"errors"
	"slices"
	"strconv"
	"strings"
)

// Delimiters of the stored schedule text. Existing solutions depend on them.
const (
	RoundSeparator  = "\n"
	GroupSeparator  = "|"
	PlayerSeparator = ","
)

var errEmptyToken = errors.New("empty player")

// Group is the set of players sharing a table in one round
type Group []int

// Round partitions the players into groups
type Round []Group

// Schedule is an ordered sequence of rounds
type Schedule []Round

// Decode parses schedule text. Only syntax is checked here; counts and
// pairings are left to Validate.
func Decode(text string) (Schedule, error) {
	lines := strings.Split(text, RoundSeparator)
	schedule := make(Schedule, 0, len(lines))

	for r, line := range lines {
		cells := strings.Split(line, GroupSeparator)
		round := make(Round, 0, len(cells))

		for g, cell := range cells {
			tokens := strings.Split(cell, PlayerSeparator)
			group := make(Group, 0, len(tokens))

			for _, token := range tokens {
				trimmed := strings.TrimSpace(token)
				if trimmed == "" {
					return nil, &FormatError{Round: r + 1, Group: g + 1, Token: token, Err: errEmptyToken}
				}
				player, err := strconv.Atoi(trimmed)
				if err != nil {
					return nil, &FormatError{Round: r + 1, Group: g + 1, Token: token, Err: err}
				}
				group = append(group, player)
			}
			round = append(round, group)
		}
		schedule = append(schedule, round)
	}

	return schedule, nil
}

// Encode renders the schedule in the stored text form
func Encode(s Schedule) string {
	var b strings.Builder
	for r, round := range s {
		if r > 0 {
			b.WriteString(RoundSeparator)
		}
		for g, group := range round {
			if g > 0 {
				b.WriteString(GroupSeparator)
			}
			for p, player := range group {
				if p > 0 {
					b.WriteString(PlayerSeparator)
				}
				b.WriteString(strconv.Itoa(player))
			}
		}
	}
	return b.String()
}

// NumPlayers counts the distinct players used anywhere in the schedule
func (s Schedule) NumPlayers() int {
	seen := make(map[int]struct{})
	for _, round := range s {
		for _, group := range round {
			for _, player := range group {
				seen[player] = struct{}{}
			}
		}
	}
	return len(seen)
}

// Normalise returns a copy with players sorted inside each group and groups
// ordered by their first player. Round order is kept.
func (s Schedule) Normalise() Schedule {
	out := make(Schedule, len(s))
	for r, round := range s {
		nr := make(Round, len(round))
		for g, group := range round {
			ng := slices.Clone(group)
			slices.Sort(ng)
			nr[g] = ng
		}
		slices.SortStableFunc(nr, func(a, b Group) int {
			return slices.Compare(a, b)
		})
		out[r] = nr
	}
	return out
}
