package golf

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind is the machine-readable code of a structural validation failure
type ErrorKind string

// Instance validation kinds
const (
	KindTooFewGroups             ErrorKind = "too_few_groups"
	KindGroupSizeTooSmall        ErrorKind = "group_size_too_small"
	KindFewerGroupsThanGroupSize ErrorKind = "fewer_groups_than_group_size"
	KindInvalidNumRounds         ErrorKind = "invalid_num_rounds"
)

// Schedule validation kinds, in the order they are checked
const (
	KindWrongNumberOfRounds         ErrorKind = "wrong_number_of_rounds"
	KindWrongNumberOfGroupsInRound  ErrorKind = "wrong_number_of_groups_in_round"
	KindWrongNumberOfPlayersInGroup ErrorKind = "wrong_number_of_players_in_group"
	KindRepeatedPlayerInRound       ErrorKind = "repeated_player_in_round"
	KindPlayersMeetMoreThanOnce     ErrorKind = "players_meet_more_than_once"
	KindTooManyPlayers              ErrorKind = "too_many_players"
)

// ValidationError reports a broken structural rule with the numbers involved
type ValidationError struct {
	Kind    ErrorKind      `json:"kind"`
	Details map[string]int `json:"details"`
}

func newValidationError(kind ErrorKind, details map[string]int) *ValidationError {
	return &ValidationError{Kind: kind, Details: details}
}

func (e *ValidationError) Error() string {
	d := e.Details
	switch e.Kind {
	case KindTooFewGroups:
		return fmt.Sprintf("instance has %d groups; at least %d required", d["actual"], d["minimum"])
	case KindGroupSizeTooSmall:
		return fmt.Sprintf("instance has group size %d; at least %d required", d["actual"], d["minimum"])
	case KindFewerGroupsThanGroupSize:
		return fmt.Sprintf("instance must have at least as many groups as the group size (%d < %d)", d["num_groups"], d["group_size"])
	case KindInvalidNumRounds:
		return fmt.Sprintf("number of rounds must be positive; got %d", d["actual"])
	case KindWrongNumberOfRounds:
		return fmt.Sprintf("solution has %d rounds; expected %d", d["actual"], d["expected"])
	case KindWrongNumberOfGroupsInRound:
		return fmt.Sprintf("solution has %d groups in round %d; expected %d", d["actual"], d["round"], d["expected"])
	case KindWrongNumberOfPlayersInGroup:
		return fmt.Sprintf("solution has %d players in group %d of round %d; expected %d", d["actual"], d["group"], d["round"], d["expected"])
	case KindRepeatedPlayerInRound:
		return fmt.Sprintf("player %d appears in groups %d and %d in round %d", d["player"], d["group1"], d["group2"], d["round"])
	case KindPlayersMeetMoreThanOnce:
		return fmt.Sprintf("players %d and %d meet in group %d of round %d but already met in group %d of round %d",
			d["player1"], d["player2"], d["group"], d["round"], d["first_group"], d["first_round"])
	case KindTooManyPlayers:
		return fmt.Sprintf("too many players in solution; found %d, expected %d", d["actual"], d["expected"])
	}

	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, d[k]))
	}
	return fmt.Sprintf("%s (%s)", e.Kind, strings.Join(parts, ", "))
}

// FormatError reports schedule text that cannot be parsed at all.
// Round and Group are 1-indexed positions of the offending token.
type FormatError struct {
	Round int
	Group int
	Token string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed schedule at round %d, group %d: invalid player %q: %v", e.Round, e.Group, e.Token, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
