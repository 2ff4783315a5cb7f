// FILE: internal/server/core/api.go
package core

import (
	"time"

	"golf/internal/server/golf"
)

// Request types

type CreateInstanceRequest struct {
	NumGroups int `json:"numGroups" validate:"max=1000"`
	GroupSize int `json:"groupSize" validate:"max=1000"`
}

type SubmissionRequest struct {
	Citation       string `json:"citation" validate:"required,max=1000"`
	SubmitterName  string `json:"submitterName" validate:"required,max=100"`
	SubmitterEmail string `json:"submitterEmail,omitempty" validate:"omitempty,email,max=254"`
}

// Info converts the request into submission provenance
func (r SubmissionRequest) Info() golf.SubmissionInfo {
	return golf.SubmissionInfo{
		Citation:       r.Citation,
		SubmitterName:  r.SubmitterName,
		SubmitterEmail: r.SubmitterEmail,
	}
}

type SubmitBoundRequest struct {
	SubmissionRequest
	Kind      string `json:"kind" validate:"required,oneof=upper lower"`
	NumRounds int    `json:"numRounds"` // Range checked by the domain, reported as invalid_num_rounds
}

type SubmitSolutionRequest struct {
	SubmissionRequest
	NumRounds int    `json:"numRounds"`
	Solution  string `json:"solution" validate:"required,max=1048576"`
}

type RunConstructionsRequest struct {
	Construction string `json:"construction,omitempty" validate:"omitempty,max=100"` // Empty runs all
}

// Response types

type BoundResponse struct {
	ID            int64                  `json:"id"`
	Kind          string                 `json:"kind"`
	NumRounds     int                    `json:"numRounds"`
	Citation      string                 `json:"citation"`
	SubmitterName string                 `json:"submitterName"`
	Construction  *golf.ConstructionInfo `json:"construction,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	HasSolution   bool                   `json:"hasSolution"`
}

type InstanceResponse struct {
	Name              string         `json:"name"`
	NumGroups         int            `json:"numGroups"`
	GroupSize         int            `json:"groupSize"`
	NumPlayers        int            `json:"numPlayers"`
	TrivialUpperBound int            `json:"trivialUpperBound"`
	Upper             *BoundResponse `json:"upper,omitempty"`
	Lower             *BoundResponse `json:"lower,omitempty"`
	Range             string         `json:"range"`
	Status            string         `json:"status"` // "unknown", "open" or "closed"
	Closed            bool           `json:"closed"`
	Solution          string         `json:"solution,omitempty"`
}

type InstanceListResponse struct {
	Instances []InstanceResponse `json:"instances"`
	Total     int                `json:"total"`
}

type BoundListResponse struct {
	Instance string          `json:"instance"`
	Bounds   []BoundResponse `json:"bounds"`
}

type JobResponse struct {
	JobID     string       `json:"jobId"`
	State     string       `json:"state"` // "queued", "running", "done" or "failed"
	Summaries []JobSummary `json:"summaries,omitempty"`
	Error     string       `json:"error,omitempty"`
	QueuedAt  time.Time    `json:"queuedAt"`
	DoneAt    *time.Time   `json:"doneAt,omitempty"`
}

type JobSummary struct {
	Construction string `json:"construction"`
	Version      int    `json:"version"`
	Cleared      int64  `json:"cleared"`
	Created      int    `json:"created"`
	Skipped      int    `json:"skipped"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage,omitempty"` // "ok" or "degraded"
}

// NewBoundResponse flattens a bound for the API
func NewBoundResponse(b *golf.Bound) *BoundResponse {
	if b == nil {
		return nil
	}
	return &BoundResponse{
		ID:            b.ID,
		Kind:          b.Kind.String(),
		NumRounds:     b.NumRounds,
		Citation:      b.Submission.Citation,
		SubmitterName: b.Submission.SubmitterName,
		Construction:  b.Submission.Construction,
		CreatedAt:     b.Submission.CreatedAt,
		HasSolution:   b.IsSolution(),
	}
}

// NewInstanceResponse renders a resolved instance. The solution text is
// included only when withSolution is set.
func NewInstanceResponse(st golf.State, withSolution bool) InstanceResponse {
	r := st.Resolution
	resp := InstanceResponse{
		Name:              st.Instance.Name(),
		NumGroups:         st.Instance.NumGroups,
		GroupSize:         st.Instance.GroupSize,
		NumPlayers:        st.Instance.NumPlayers(),
		TrivialUpperBound: st.Instance.TrivialUpperBound(),
		Upper:             NewBoundResponse(r.Upper),
		Lower:             NewBoundResponse(r.Lower),
		Range:             r.Range(),
		Status:            StatusOf(r).String(),
		Closed:            r.IsClosed(),
	}
	if sol := r.Solution(); withSolution && sol != nil {
		resp.Solution = sol.Text
	}
	return resp
}
