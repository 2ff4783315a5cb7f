package processor

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golf/internal/server/construct"
	"golf/internal/server/core"
	"golf/internal/server/service"
	"golf/internal/server/storage"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "golf.db"), false, logger)
	require.NoError(t, err)
	require.NoError(t, store.InitDB())

	svc := service.New(store, logger, nil, nil)
	reg := construct.NewRegistry(svc, logger, construct.WithLimits(4, 4))
	p := New(svc, reg, logger)

	t.Cleanup(func() {
		p.Close()
		store.Close()
	})
	return p
}

func submission() core.SubmissionRequest {
	return core.SubmissionRequest{Citation: "Test", SubmitterName: "Tester"}
}

func TestCreateAndGetInstance(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	resp := p.Execute(ctx, NewCreateInstanceCommand(core.CreateInstanceRequest{NumGroups: 5, GroupSize: 3}))
	require.True(t, resp.Success, "%+v", resp.Error)
	created := resp.Data.(core.InstanceResponse)
	assert.Equal(t, "5x3", created.Name)
	assert.Equal(t, 15, created.NumPlayers)
	assert.Equal(t, "unknown", created.Status)

	resp = p.Execute(ctx, NewGetInstanceCommand("5x3"))
	require.True(t, resp.Success)
	assert.Equal(t, "unknown", resp.Data.(core.InstanceResponse).Range)
}

func TestCreateInstanceInvalid(t *testing.T) {
	p := newTestProcessor(t)

	resp := p.Execute(context.Background(), NewCreateInstanceCommand(core.CreateInstanceRequest{NumGroups: 3, GroupSize: 4}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrValidationFailed, resp.Error.Code)
	details := resp.Error.Details.(core.ValidationDetails)
	assert.Equal(t, "fewer_groups_than_group_size", details.Kind)
}

func TestUnknownInstance(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	for _, cmd := range []Command{
		NewGetInstanceCommand("9x9"),
		NewGetInstanceCommand("garbage"),
		NewListBoundsCommand("9x9"),
		NewGetSolutionCommand("9x9"),
		NewSubmitBoundCommand("9x9", core.SubmitBoundRequest{SubmissionRequest: submission(), Kind: "upper", NumRounds: 3}),
	} {
		resp := p.Execute(ctx, cmd)
		require.False(t, resp.Success)
		assert.Equal(t, core.ErrInstanceNotFound, resp.Error.Code)
	}
}

func TestSubmitSolutionFlow(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	require.True(t, p.Execute(ctx, NewCreateInstanceCommand(core.CreateInstanceRequest{NumGroups: 2, GroupSize: 2})).Success)

	resp := p.Execute(ctx, NewGetSolutionCommand("2x2"))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrNoSolution, resp.Error.Code)

	resp = p.Execute(ctx, NewSubmitSolutionCommand("2x2", core.SubmitSolutionRequest{
		SubmissionRequest: submission(), NumRounds: 2, Solution: "1,2|3,4\n1,2|3,4",
	}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrValidationFailed, resp.Error.Code)
	assert.Equal(t, "players_meet_more_than_once", resp.Error.Details.(core.ValidationDetails).Kind)

	resp = p.Execute(ctx, NewSubmitSolutionCommand("2x2", core.SubmitSolutionRequest{
		SubmissionRequest: submission(), NumRounds: 2, Solution: "1,2|3,4\n1,3|,4",
	}))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidScheduleFormat, resp.Error.Code)
	assert.Equal(t, core.FormatDetails{Round: 2, Group: 2, Token: ""}, resp.Error.Details)

	resp = p.Execute(ctx, NewSubmitSolutionCommand("2x2", core.SubmitSolutionRequest{
		SubmissionRequest: submission(), NumRounds: 2, Solution: "1,2|3,4\n1,3|2,4",
	}))
	require.True(t, resp.Success, "%+v", resp.Error)
	assert.True(t, resp.Data.(*core.BoundResponse).HasSolution)

	resp = p.Execute(ctx, NewSubmitBoundCommand("2x2", core.SubmitBoundRequest{
		SubmissionRequest: submission(), Kind: "upper", NumRounds: 2,
	}))
	require.True(t, resp.Success)

	resp = p.Execute(ctx, NewGetInstanceCommand("2x2"))
	require.True(t, resp.Success)
	inst := resp.Data.(core.InstanceResponse)
	assert.True(t, inst.Closed)
	assert.Equal(t, "closed", inst.Status)
	assert.Equal(t, "1,2|3,4\n1,3|2,4", inst.Solution)

	resp = p.Execute(ctx, NewGetSolutionCommand("2x2"))
	require.True(t, resp.Success)
	assert.Equal(t, "1,2|3,4\n1,3|2,4", resp.Data)

	resp = p.Execute(ctx, NewListBoundsCommand("2x2"))
	require.True(t, resp.Success)
	assert.Len(t, resp.Data.(core.BoundListResponse).Bounds, 2)
}

func TestSubmitBoundInvalidRounds(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()
	require.True(t, p.Execute(ctx, NewCreateInstanceCommand(core.CreateInstanceRequest{NumGroups: 2, GroupSize: 2})).Success)

	resp := p.Execute(ctx, NewSubmitBoundCommand("2x2", core.SubmitBoundRequest{
		SubmissionRequest: submission(), Kind: "lower", NumRounds: 0,
	}))
	require.False(t, resp.Success)
	assert.Equal(t, "invalid_num_rounds", resp.Error.Details.(core.ValidationDetails).Kind)
}

func TestRunConstructionsJob(t *testing.T) {
	p := newTestProcessor(t)
	ctx := context.Background()

	resp := p.Execute(ctx, NewRunConstructionsCommand(core.RunConstructionsRequest{}))
	require.True(t, resp.Success)
	assert.True(t, resp.Pending)
	job := resp.Data.(core.JobResponse)

	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	done, err := p.Queue().Wait(waitCtx, job.JobID)
	require.NoError(t, err)
	require.Equal(t, JobDone, done.State, "%v", done.Err)
	require.Len(t, done.Summaries, 2)

	resp = p.Execute(ctx, NewGetJobCommand(job.JobID))
	require.True(t, resp.Success)
	assert.False(t, resp.Pending)
	assert.Equal(t, JobDone, resp.Data.(core.JobResponse).State)

	resp = p.Execute(ctx, NewListInstancesCommand())
	require.True(t, resp.Success)
	list := resp.Data.(core.InstanceListResponse)
	assert.Equal(t, 1+2+3, list.Total)
	for _, inst := range list.Instances {
		assert.NotNil(t, inst.Lower, inst.Name)
		assert.NotNil(t, inst.Upper, inst.Name)
	}

	resp = p.Execute(ctx, NewExportTableCommand())
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.([]byte))

	resp = p.Execute(ctx, NewRenderHistoryCommand("3x2"))
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.([]byte))
}

func TestGetJobUnknown(t *testing.T) {
	p := newTestProcessor(t)
	resp := p.Execute(context.Background(), NewGetJobCommand("nope"))
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrJobNotFound, resp.Error.Code)
}

func TestUnknownCommand(t *testing.T) {
	p := newTestProcessor(t)
	resp := p.Execute(context.Background(), Command{Type: CommandType(99)})
	require.False(t, resp.Success)
	assert.Equal(t, core.ErrInvalidRequest, resp.Error.Code)
}
