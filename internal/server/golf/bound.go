package golf

import (
	"fmt"
	"time"
)

// BoundKind tells whether a round count is known to suffice or to be needed
type BoundKind int

const (
	KindUpper BoundKind = iota
	KindLower
)

func (k BoundKind) String() string {
	switch k {
	case KindUpper:
		return "upper"
	case KindLower:
		return "lower"
	default:
		return "unknown"
	}
}

// ParseBoundKind accepts "upper" or "lower"
func ParseBoundKind(s string) (BoundKind, error) {
	switch s {
	case "upper":
		return KindUpper, nil
	case "lower":
		return KindLower, nil
	default:
		return 0, fmt.Errorf("unknown bound kind %q", s)
	}
}

func (k BoundKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BoundKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBoundKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ConstructionInfo identifies a machine generator of bounds
type ConstructionInfo struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

func (c ConstructionInfo) String() string {
	return fmt.Sprintf("%s, version %d", c.ID, c.Version)
}

// SubmissionInfo is the provenance shared by every bound of one submission
type SubmissionInfo struct {
	ID             string            `json:"id"`
	Citation       string            `json:"citation"`
	SubmitterName  string            `json:"submitterName"`
	SubmitterEmail string            `json:"submitterEmail,omitempty"`
	Construction   *ConstructionInfo `json:"construction,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (s SubmissionInfo) String() string {
	return fmt.Sprintf("%s (%s %s)", s.Citation, s.SubmitterName, s.CreatedAt.Format("2006-01-02"))
}

// Solution is the schedule payload attached to a lower bound
type Solution struct {
	Text           string   `json:"text"`
	NormalisedText string   `json:"normalisedText,omitempty"`
	Schedule       Schedule `json:"-"`
	Validated      bool     `json:"validated"`
}

// Bound is one recorded claim about an instance. A lower bound with a
// non-nil Solution is a solution.
type Bound struct {
	ID         int64          `json:"id"`
	InstanceID int64          `json:"instanceId"`
	Kind       BoundKind      `json:"kind"`
	NumRounds  int            `json:"numRounds"`
	Submission SubmissionInfo `json:"submission"`
	Solution   *Solution      `json:"solution,omitempty"`
}

// IsSolution reports whether the bound carries a schedule
func (b Bound) IsSolution() bool {
	return b.Kind == KindLower && b.Solution != nil
}

func (b Bound) String() string {
	op := ">="
	if b.Kind == KindUpper {
		op = "<="
	}
	return fmt.Sprintf("%s %d", op, b.NumRounds)
}

// CheckNumRounds rejects non-positive round counts
func CheckNumRounds(numRounds int) error {
	if numRounds < 1 {
		return newValidationError(KindInvalidNumRounds, map[string]int{"actual": numRounds})
	}
	return nil
}
