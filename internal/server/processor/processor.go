// FILE: internal/server/processor/processor.go
package processor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"golf/internal/server/core"
	"golf/internal/server/export"
	"golf/internal/server/golf"
	"golf/internal/server/service"
)

// Processor handles command execution and coordinates between the service
// and the construction queue
type Processor struct {
	svc    *service.Service
	queue  *ConstructionQueue
	logger *slog.Logger
	now    func() time.Time
}

// New creates a processor with a single-worker construction queue
func New(svc *service.Service, runner Runner, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		svc:    svc,
		queue:  NewConstructionQueue(runner, 1, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Queue exposes the construction queue
func (p *Processor) Queue() *ConstructionQueue {
	return p.queue
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdListInstances:
		return p.handleListInstances(ctx)
	case CmdCreateInstance:
		return p.handleCreateInstance(ctx, cmd)
	case CmdGetInstance:
		return p.handleGetInstance(ctx, cmd)
	case CmdListBounds:
		return p.handleListBounds(ctx, cmd)
	case CmdSubmitBound:
		return p.handleSubmitBound(ctx, cmd)
	case CmdSubmitSolution:
		return p.handleSubmitSolution(ctx, cmd)
	case CmdGetSolution:
		return p.handleGetSolution(ctx, cmd)
	case CmdRenderHistory:
		return p.handleRenderHistory(ctx, cmd)
	case CmdExportTable:
		return p.handleExportTable(ctx)
	case CmdRunConstructions:
		return p.handleRunConstructions(cmd)
	case CmdGetJob:
		return p.handleGetJob(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

func (p *Processor) handleListInstances(ctx context.Context) ProcessorResponse {
	states, err := p.svc.ListInstances(ctx)
	if err != nil {
		return p.failure(err)
	}

	resp := core.InstanceListResponse{
		Instances: make([]core.InstanceResponse, 0, len(states)),
		Total:     len(states),
	}
	for _, st := range states {
		resp.Instances = append(resp.Instances, core.NewInstanceResponse(st, false))
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleCreateInstance(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateInstanceRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	inst, err := p.svc.CreateInstance(ctx, args.NumGroups, args.GroupSize)
	if err != nil {
		return p.failure(err)
	}
	state, err := p.svc.Query(ctx, inst)
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: core.NewInstanceResponse(state, false)}
}

func (p *Processor) handleGetInstance(ctx context.Context, cmd Command) ProcessorResponse {
	state, err := p.query(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: core.NewInstanceResponse(state, true)}
}

func (p *Processor) handleListBounds(ctx context.Context, cmd Command) ProcessorResponse {
	inst, err := p.svc.GetInstanceByName(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	bounds, err := p.svc.History(ctx, inst)
	if err != nil {
		return p.failure(err)
	}

	resp := core.BoundListResponse{
		Instance: inst.Name(),
		Bounds:   make([]core.BoundResponse, 0, len(bounds)),
	}
	for i := range bounds {
		resp.Bounds = append(resp.Bounds, *core.NewBoundResponse(&bounds[i]))
	}
	return ProcessorResponse{Success: true, Data: resp}
}

func (p *Processor) handleSubmitBound(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SubmitBoundRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	kind, err := golf.ParseBoundKind(args.Kind)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	inst, err := p.svc.GetInstanceByName(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	b, err := p.svc.SubmitBound(ctx, inst, kind, args.NumRounds, args.Info())
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: core.NewBoundResponse(&b)}
}

func (p *Processor) handleSubmitSolution(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.SubmitSolutionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	inst, err := p.svc.GetInstanceByName(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	b, err := p.svc.SubmitSolution(ctx, inst, args.NumRounds, args.Solution, args.Info())
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: core.NewBoundResponse(&b)}
}

// handleGetSolution returns the stored text of the best solution
func (p *Processor) handleGetSolution(ctx context.Context, cmd Command) ProcessorResponse {
	inst, err := p.svc.GetInstanceByName(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	sol, err := p.svc.Solution(ctx, inst)
	if err != nil {
		return p.failure(err)
	}
	if sol == nil {
		return p.errorResponse("no solution recorded for "+inst.Name(), core.ErrNoSolution)
	}
	return ProcessorResponse{Success: true, Data: sol.Text}
}

func (p *Processor) handleRenderHistory(ctx context.Context, cmd Command) ProcessorResponse {
	inst, err := p.svc.GetInstanceByName(ctx, cmd.Instance)
	if err != nil {
		return p.failure(err)
	}
	bounds, err := p.svc.History(ctx, inst)
	if err != nil {
		return p.failure(err)
	}
	png, err := export.HistoryChart(inst, bounds, p.now())
	if err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: png}
}

func (p *Processor) handleExportTable(ctx context.Context) ProcessorResponse {
	states, err := p.svc.ListInstances(ctx)
	if err != nil {
		return p.failure(err)
	}
	var buf bytes.Buffer
	if err := export.WriteTable(&buf, states); err != nil {
		return p.failure(err)
	}
	return ProcessorResponse{Success: true, Data: buf.Bytes()}
}

func (p *Processor) handleRunConstructions(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.RunConstructionsRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	jobID, err := p.queue.Submit(args.Construction)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrResourceLimit)
	}
	job, _ := p.queue.Job(jobID)
	return ProcessorResponse{Success: true, Pending: true, Data: jobResponse(job)}
}

func (p *Processor) handleGetJob(cmd Command) ProcessorResponse {
	jobID, ok := cmd.Args.(string)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}
	job, ok := p.queue.Job(jobID)
	if !ok {
		return p.errorResponse("job not found", core.ErrJobNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Pending: job.State == JobQueued || job.State == JobRunning,
		Data:    jobResponse(job),
	}
}

func (p *Processor) query(ctx context.Context, name string) (golf.State, error) {
	inst, err := p.svc.GetInstanceByName(ctx, name)
	if err != nil {
		return golf.State{}, err
	}
	return p.svc.Query(ctx, inst)
}

func jobResponse(j Job) core.JobResponse {
	resp := core.JobResponse{
		JobID:    j.ID,
		State:    j.State,
		QueuedAt: j.QueuedAt,
	}
	for _, s := range j.Summaries {
		resp.Summaries = append(resp.Summaries, core.JobSummary{
			Construction: s.ID,
			Version:      s.Version,
			Cleared:      s.Cleared,
			Created:      s.Created,
			Skipped:      s.Skipped,
		})
	}
	if j.Err != nil {
		resp.Error = j.Err.Error()
	}
	if !j.DoneAt.IsZero() {
		done := j.DoneAt
		resp.DoneAt = &done
	}
	return resp
}

// failure maps a service error onto an API error code
func (p *Processor) failure(err error) ProcessorResponse {
	var verr *golf.ValidationError
	var ferr *golf.FormatError

	switch {
	case errors.As(err, &verr):
		return ProcessorResponse{
			Error: &core.ErrorResponse{
				Error: verr.Error(),
				Code:  core.ErrValidationFailed,
				Details: core.ValidationDetails{
					Kind:    string(verr.Kind),
					Details: verr.Details,
				},
			},
		}
	case errors.As(err, &ferr):
		return ProcessorResponse{
			Error: &core.ErrorResponse{
				Error: ferr.Error(),
				Code:  core.ErrInvalidScheduleFormat,
				Details: core.FormatDetails{
					Round: ferr.Round,
					Group: ferr.Group,
					Token: ferr.Token,
				},
			},
		}
	case errors.Is(err, service.ErrInstanceNotFound):
		return p.errorResponse(err.Error(), core.ErrInstanceNotFound)
	case errors.Is(err, service.ErrSubmissionNotFound):
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	default:
		p.logger.Error("Command failed", "error", err)
		return p.errorResponse("internal error", core.ErrInternalError)
	}
}

// errorResponse creates error response
func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close cleans up resources
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}
