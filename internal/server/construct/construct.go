package construct

import (
	"golf/internal/server/golf"
)

// Info describes a constructor and the provenance attached to its output
type Info struct {
	ID          string
	Version     int
	Name        string
	Email       string
	Description string
}

// Submission returns the provenance shared by every bound of one run
func (i Info) Submission() golf.SubmissionInfo {
	return golf.SubmissionInfo{
		Citation:       i.Description,
		SubmitterName:  i.Name,
		SubmitterEmail: i.Email,
		Construction:   &golf.ConstructionInfo{ID: i.ID, Version: i.Version},
	}
}

// Candidate is a bound produced by a constructor. A non-nil Schedule makes
// it a solution and is validated like any submitted one.
type Candidate struct {
	Kind      golf.BoundKind
	NumRounds int
	Schedule  golf.Schedule
}

// Constructor generates bounds for instances mechanically
type Constructor interface {
	Info() Info
	AppliesTo(inst golf.Instance) bool
	// Construct returns nil when the construction does not apply
	Construct(inst golf.Instance) *Candidate
}
