package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf/internal/server/golf"
)

const valid2x2 = "1,2|3,4\n1,3|2,4"

func newTestService(t *testing.T) (*Service, *fakeRepo, *Metrics) {
	t.Helper()
	repo := newFakeRepo()
	metrics := NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(repo, logger, metrics, nil), repo, metrics
}

func manual() golf.SubmissionInfo {
	return golf.SubmissionInfo{Citation: "Manual entry", SubmitterName: "Tester"}
}

func TestCreateInstance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, "8x4", inst.Name())
	assert.NotZero(t, inst.ID)

	again, err := svc.CreateInstance(ctx, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, inst.ID, again.ID)
}

func TestCreateInstanceInvalid(t *testing.T) {
	svc, repo, _ := newTestService(t)

	tests := []struct {
		groups, size int
		kind         golf.ErrorKind
	}{
		{3, 4, golf.KindFewerGroupsThanGroupSize},
		{1, 1, golf.KindTooFewGroups},
		{2, 1, golf.KindGroupSizeTooSmall},
	}
	for _, tt := range tests {
		_, err := svc.CreateInstance(context.Background(), tt.groups, tt.size)
		var verr *golf.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tt.kind, verr.Kind)
	}
	assert.Empty(t, repo.instances)
}

func TestGetInstanceNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetInstance(context.Background(), 5, 4)
	assert.ErrorIs(t, err, ErrInstanceNotFound)

	_, err = svc.GetInstanceByName(context.Background(), "nonsense")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestSubmitBoundAndQuery(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 8, 4)
	require.NoError(t, err)

	for _, n := range []int{6, 5, 7} {
		_, err := svc.SubmitBound(ctx, inst, golf.KindUpper, n, manual())
		require.NoError(t, err)
	}
	_, err = svc.SubmitBound(ctx, inst, golf.KindLower, 4, manual())
	require.NoError(t, err)

	state, err := svc.Query(ctx, inst)
	require.NoError(t, err)
	require.NotNil(t, state.Resolution.Upper)
	assert.Equal(t, 5, state.Resolution.Upper.NumRounds)
	assert.Equal(t, 4, state.Resolution.Lower.NumRounds)
	assert.False(t, state.Resolution.IsClosed())
	assert.Equal(t, "4 - 5", state.Resolution.Range())
	assert.Nil(t, state.Resolution.Solution())
}

func TestQueryWithoutBounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 3, 3)
	require.NoError(t, err)

	state, err := svc.Query(ctx, inst)
	require.NoError(t, err)
	assert.Nil(t, state.Resolution.Upper)
	assert.Nil(t, state.Resolution.Lower)
	assert.Equal(t, golf.Unknown, state.Resolution.Range())
}

func TestSubmitBoundInvalidRounds(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 0, manual())
	var verr *golf.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, golf.KindInvalidNumRounds, verr.Kind)
	assert.Empty(t, repo.bounds)
}

func TestSubmitBoundUnknownInstance(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SubmitBound(context.Background(), golf.Instance{NumGroups: 4, GroupSize: 4}, golf.KindUpper, 5, manual())
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestSubmitSolutionClosesInstance(t *testing.T) {
	svc, _, metrics := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 2, manual())
	require.NoError(t, err)

	b, err := svc.SubmitSolution(ctx, inst, 2, "2,1|4,3\r\n1,3|2,4", manual())
	require.NoError(t, err)
	assert.True(t, b.IsSolution())
	assert.Equal(t, "2,1|4,3\n1,3|2,4", b.Solution.Text, "stored text is the canonical encoding")
	assert.Equal(t, valid2x2, b.Solution.NormalisedText)

	state, err := svc.Query(ctx, inst)
	require.NoError(t, err)
	assert.True(t, state.Resolution.IsClosed())
	require.NotNil(t, state.Resolution.Solution())
	assert.Equal(t, "2", state.Resolution.Range())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.accepted.WithLabelValues("solution")))
}

func TestSubmitSolutionRejected(t *testing.T) {
	svc, repo, metrics := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	_, err = svc.SubmitSolution(ctx, inst, 2, "1,2|3,4\n1,2|3,4", manual())
	var verr *golf.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, golf.KindPlayersMeetMoreThanOnce, verr.Kind)

	_, err = svc.SubmitSolution(ctx, inst, 2, "1,2|3,x", manual())
	var ferr *golf.FormatError
	require.ErrorAs(t, err, &ferr)

	assert.Empty(t, repo.bounds, "rejected schedules must not be stored")
	require.Len(t, repo.rejections, 2)
	assert.Equal(t, "players_meet_more_than_once", repo.rejections[0].ErrorKind)
	assert.JSONEq(t, `{"player1":1,"player2":2,"group":1,"round":2,"first_group":1,"first_round":1}`, repo.rejections[0].DetailsJSON)
	assert.Equal(t, "invalid_format", repo.rejections[1].ErrorKind)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.rejections.WithLabelValues("invalid_format")))

	rejections, err := svc.Rejections(ctx, &inst, 10)
	require.NoError(t, err)
	assert.Len(t, rejections, 2)
}

func TestSubmitSolutionMismatchedInstanceID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	small, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)
	large, err := svc.CreateInstance(ctx, 5, 4)
	require.NoError(t, err)

	// The id names 2x2 while the parameters name 5x4
	forged := golf.Instance{ID: small.ID, NumGroups: large.NumGroups, GroupSize: large.GroupSize}
	_, err = svc.SubmitSolution(ctx, forged, 2, valid2x2, manual())
	assert.ErrorIs(t, err, ErrInstanceNotFound)
	_, err = svc.SubmitBound(ctx, forged, golf.KindLower, 1, manual())
	assert.ErrorIs(t, err, ErrInstanceNotFound)
	assert.Empty(t, repo.bounds)

	// The id is ignored when it is absent and checked when it agrees
	_, err = svc.SubmitSolution(ctx, golf.Instance{NumGroups: 2, GroupSize: 2}, 2, valid2x2, manual())
	require.NoError(t, err)
	_, err = svc.SubmitSolution(ctx, small, 2, valid2x2, manual())
	require.NoError(t, err)
	require.Len(t, repo.bounds, 2)
	for _, b := range repo.bounds {
		assert.Equal(t, small.ID, b.InstanceID)
	}

	// An id whose parameters are not stored at all still fails the lookup
	_, err = svc.Query(ctx, golf.Instance{ID: small.ID, NumGroups: 3, GroupSize: 2})
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestSubmitSolutionWrongRounds(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	_, err = svc.SubmitSolution(ctx, inst, 3, valid2x2, manual())
	var verr *golf.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, golf.KindWrongNumberOfRounds, verr.Kind)
	assert.Equal(t, map[string]int{"actual": 2, "expected": 3}, verr.Details)
}

func TestSharedSubmission(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	info, err := svc.CreateSubmission(ctx, manual())
	require.NoError(t, err)

	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 3, info)
	require.NoError(t, err)
	_, err = svc.SubmitSolution(ctx, inst, 2, valid2x2, info)
	require.NoError(t, err)

	assert.Len(t, repo.submissions, 1)
	for _, b := range repo.bounds {
		assert.Equal(t, info.ID, b.Submission.ID)
	}
}

func TestSubmitBoundUnknownSubmission(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	info := manual()
	info.ID = "never-created"
	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 3, info)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
	assert.True(t, IsDomainError(err))
	assert.Empty(t, repo.bounds)
}

func TestSolution(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	sol, err := svc.Solution(ctx, inst)
	require.NoError(t, err)
	assert.Nil(t, sol)

	// A lower bound without a schedule yields no solution
	_, err = svc.SubmitBound(ctx, inst, golf.KindLower, 1, manual())
	require.NoError(t, err)
	sol, err = svc.Solution(ctx, inst)
	require.NoError(t, err)
	assert.Nil(t, sol)

	_, err = svc.SubmitSolution(ctx, inst, 2, valid2x2, manual())
	require.NoError(t, err)
	sol, err = svc.Solution(ctx, inst)
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Equal(t, valid2x2, sol.Text)

	_, err = svc.Solution(ctx, golf.Instance{NumGroups: 4, GroupSize: 4})
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestListInstancesResolvesEach(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)
	_, err = svc.CreateInstance(ctx, 3, 2)
	require.NoError(t, err)

	_, err = svc.SubmitSolution(ctx, a, 2, valid2x2, manual())
	require.NoError(t, err)

	states, err := svc.ListInstances(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "2 - ?", states[0].Resolution.Range())
	assert.Equal(t, golf.Unknown, states[1].Resolution.Range())
}

func TestInfrastructureErrorWrapped(t *testing.T) {
	svc, repo, metrics := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	boom := errors.New("disk full")
	repo.failInsert = boom

	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 3, manual())
	require.ErrorIs(t, err, boom)
	assert.False(t, IsDomainError(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("SubmitBound", "error")))
}

func TestClearConstruction(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	inst, err := svc.CreateInstance(ctx, 2, 2)
	require.NoError(t, err)

	built := golf.SubmissionInfo{Citation: "Trivial", Construction: &golf.ConstructionInfo{ID: "trivial_upper", Version: 1}}
	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 3, built)
	require.NoError(t, err)
	_, err = svc.SubmitBound(ctx, inst, golf.KindUpper, 4, manual())
	require.NoError(t, err)

	removed, err := svc.ClearConstruction(ctx, "trivial_upper")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, repo.bounds, 1)
}

func TestHealth(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.Equal(t, "ok", svc.Health())
}
