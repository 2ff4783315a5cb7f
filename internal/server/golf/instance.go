// FILE: internal/server/golf/instance.go
package golf

import (
	"fmt"
	"strconv"
	"strings"
)

// Instance is a social golfer design parameter pair
type Instance struct {
	ID        int64 `json:"id"`
	NumGroups int   `json:"numGroups"`
	GroupSize int   `json:"groupSize"`
}

// NewInstance checks the structural invariants of an instance before it is stored
func NewInstance(numGroups, groupSize int) (Instance, error) {
	if numGroups < 2 {
		return Instance{}, newValidationError(KindTooFewGroups, map[string]int{
			"actual":  numGroups,
			"minimum": 2,
		})
	}
	if groupSize < 2 {
		return Instance{}, newValidationError(KindGroupSizeTooSmall, map[string]int{
			"actual":  groupSize,
			"minimum": 2,
		})
	}
	// With more players per group than groups, one round already pairs everyone
	if numGroups < groupSize {
		return Instance{}, newValidationError(KindFewerGroupsThanGroupSize, map[string]int{
			"num_groups": numGroups,
			"group_size": groupSize,
		})
	}
	return Instance{NumGroups: numGroups, GroupSize: groupSize}, nil
}

// ParseName parses the "<groups>x<size>" form produced by Name
func ParseName(name string) (numGroups, groupSize int, err error) {
	g, s, ok := strings.Cut(name, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid instance name %q", name)
	}
	if numGroups, err = strconv.Atoi(g); err != nil {
		return 0, 0, fmt.Errorf("invalid instance name %q", name)
	}
	if groupSize, err = strconv.Atoi(s); err != nil {
		return 0, 0, fmt.Errorf("invalid instance name %q", name)
	}
	return numGroups, groupSize, nil
}

// Name returns the short unique name of the instance, e.g. "8x4"
func (i Instance) Name() string {
	return fmt.Sprintf("%dx%d", i.NumGroups, i.GroupSize)
}

func (i Instance) String() string {
	return i.Name()
}

// NumPlayers is the number of player slots in each round
func (i Instance) NumPlayers() int {
	return i.NumGroups * i.GroupSize
}

// TrivialUpperBound is the number of rounds after which every player must
// have met everyone else, since each round uses GroupSize-1 of a player's
// NumPlayers-1 possible partners.
func (i Instance) TrivialUpperBound() int {
	return (i.NumPlayers() - 1) / (i.GroupSize - 1)
}
