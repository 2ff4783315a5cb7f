// FILE: internal/server/service/service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"golf/internal/server/golf"
	"golf/internal/server/storage"
)

// ErrInstanceNotFound is returned when an instance lookup has no match
var ErrInstanceNotFound = errors.New("instance not found")

// ErrSubmissionNotFound is returned when a bound names a submission that was
// never stored
var ErrSubmissionNotFound = errors.New("submission not found")

// Repository is the persistence the service depends on
type Repository interface {
	EnsureInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error)
	GetInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error)
	ListInstances(ctx context.Context) ([]golf.Instance, error)
	CreateSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error)
	GetSubmission(ctx context.Context, id string) (golf.SubmissionInfo, error)
	InsertBound(ctx context.Context, b golf.Bound) (golf.Bound, error)
	ListBounds(ctx context.Context, instanceID int64) ([]golf.Bound, error)
	ListAllBounds(ctx context.Context) (map[int64][]golf.Bound, error)
	FindSolutionFor(ctx context.Context, boundID int64) (*golf.Solution, error)
	DeleteConstruction(ctx context.Context, constructionID string) (int64, error)
	RecordRejection(record storage.RejectionRecord)
	ListRejections(ctx context.Context, instanceID int64, limit int) ([]storage.RejectionRecord, error)
	IsHealthy() bool
}

// Service coordinates validation, storage and bound resolution
type Service struct {
	repo    Repository
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New creates a service. A nil tracer falls back to the global provider.
func New(repo Repository, logger *slog.Logger, metrics *Metrics, tracer trace.Tracer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("golf/service")
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Health returns the storage component status
func (s *Service) Health() string {
	if s.repo.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// CreateInstance validates the parameters and inserts the instance, or
// returns the existing one
func (s *Service) CreateInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	id := fmt.Sprintf("%dx%d", numGroups, groupSize)
	return withTelemetry(s, ctx, "CreateInstance", id, func(ctx context.Context) (golf.Instance, error) {
		if _, err := golf.NewInstance(numGroups, groupSize); err != nil {
			return golf.Instance{}, err
		}
		return s.repo.EnsureInstance(ctx, numGroups, groupSize)
	})
}

// GetInstance looks up a stored instance
func (s *Service) GetInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	id := fmt.Sprintf("%dx%d", numGroups, groupSize)
	return withTelemetry(s, ctx, "GetInstance", id, func(ctx context.Context) (golf.Instance, error) {
		return s.lookup(ctx, numGroups, groupSize)
	})
}

// GetInstanceByName looks up a stored instance by its "<groups>x<size>" name
func (s *Service) GetInstanceByName(ctx context.Context, name string) (golf.Instance, error) {
	numGroups, groupSize, err := golf.ParseName(name)
	if err != nil {
		return golf.Instance{}, fmt.Errorf("%w: %v", ErrInstanceNotFound, err)
	}
	return s.GetInstance(ctx, numGroups, groupSize)
}

// ListInstances returns every instance with its resolved bounds
func (s *Service) ListInstances(ctx context.Context) ([]golf.State, error) {
	return withTelemetry(s, ctx, "ListInstances", "all", func(ctx context.Context) ([]golf.State, error) {
		instances, err := s.repo.ListInstances(ctx)
		if err != nil {
			return nil, err
		}
		bounds, err := s.repo.ListAllBounds(ctx)
		if err != nil {
			return nil, err
		}

		states := make([]golf.State, 0, len(instances))
		for _, inst := range instances {
			states = append(states, golf.State{
				Instance:   inst,
				Resolution: golf.Resolve(bounds[inst.ID]),
			})
		}
		return states, nil
	})
}

// CreateSubmission stores provenance that several bounds can share
func (s *Service) CreateSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error) {
	return withTelemetry(s, ctx, "CreateSubmission", info.Citation, func(ctx context.Context) (golf.SubmissionInfo, error) {
		return s.repo.CreateSubmission(ctx, info)
	})
}

// SubmitBound records a plain upper or lower bound. A submission without an
// id is created first.
func (s *Service) SubmitBound(ctx context.Context, inst golf.Instance, kind golf.BoundKind, numRounds int, info golf.SubmissionInfo) (golf.Bound, error) {
	id := fmt.Sprintf("%s %s %d", inst.Name(), kind, numRounds)
	return withTelemetry(s, ctx, "SubmitBound", id, func(ctx context.Context) (golf.Bound, error) {
		if err := golf.CheckNumRounds(numRounds); err != nil {
			return golf.Bound{}, err
		}
		stored, err := s.stored(ctx, inst)
		if err != nil {
			return golf.Bound{}, err
		}
		if info, err = s.ensureSubmission(ctx, info); err != nil {
			return golf.Bound{}, err
		}

		b, err := s.repo.InsertBound(ctx, golf.Bound{
			InstanceID: stored.ID,
			Kind:       kind,
			NumRounds:  numRounds,
			Submission: info,
		})
		if err != nil {
			return golf.Bound{}, err
		}
		s.metrics.stored(kind.String())
		s.logger.InfoContext(ctx, "Bound recorded",
			"instance", stored.Name(),
			"kind", kind.String(),
			"num_rounds", numRounds,
			"bound_id", b.ID,
		)
		return b, nil
	})
}

// SubmitSolution decodes and validates a schedule, then records it as a
// lower bound. Rejected schedules leave an entry in the rejection log.
func (s *Service) SubmitSolution(ctx context.Context, inst golf.Instance, numRounds int, text string, info golf.SubmissionInfo) (golf.Bound, error) {
	id := fmt.Sprintf("%s %d", inst.Name(), numRounds)
	return withTelemetry(s, ctx, "SubmitSolution", id, func(ctx context.Context) (golf.Bound, error) {
		if err := golf.CheckNumRounds(numRounds); err != nil {
			return golf.Bound{}, err
		}
		stored, err := s.stored(ctx, inst)
		if err != nil {
			return golf.Bound{}, err
		}

		schedule, err := golf.Decode(text)
		if err == nil {
			err = golf.Validate(schedule, stored, numRounds)
		}
		if err != nil {
			s.reject(ctx, stored, numRounds, info, err)
			return golf.Bound{}, err
		}

		if info, err = s.ensureSubmission(ctx, info); err != nil {
			return golf.Bound{}, err
		}

		b, err := s.repo.InsertBound(ctx, golf.Bound{
			InstanceID: stored.ID,
			Kind:       golf.KindLower,
			NumRounds:  numRounds,
			Submission: info,
			Solution: &golf.Solution{
				Text:           golf.Encode(schedule),
				NormalisedText: golf.Encode(schedule.Normalise()),
				Schedule:       schedule,
				Validated:      true,
			},
		})
		if err != nil {
			return golf.Bound{}, err
		}
		s.metrics.stored("solution")
		s.logger.InfoContext(ctx, "Solution recorded",
			"instance", stored.Name(),
			"num_rounds", numRounds,
			"bound_id", b.ID,
		)
		return b, nil
	})
}

// Query reduces the bounds of an instance to its current state
func (s *Service) Query(ctx context.Context, inst golf.Instance) (golf.State, error) {
	return withTelemetry(s, ctx, "Query", inst.Name(), func(ctx context.Context) (golf.State, error) {
		stored, err := s.stored(ctx, inst)
		if err != nil {
			return golf.State{}, err
		}
		bounds, err := s.repo.ListBounds(ctx, stored.ID)
		if err != nil {
			return golf.State{}, err
		}
		return golf.State{Instance: stored, Resolution: golf.Resolve(bounds)}, nil
	})
}

// Solution loads the schedule behind the instance's best lower bound. It
// returns nil when no solution has been recorded.
func (s *Service) Solution(ctx context.Context, inst golf.Instance) (*golf.Solution, error) {
	return withTelemetry(s, ctx, "Solution", inst.Name(), func(ctx context.Context) (*golf.Solution, error) {
		stored, err := s.stored(ctx, inst)
		if err != nil {
			return nil, err
		}
		bounds, err := s.repo.ListBounds(ctx, stored.ID)
		if err != nil {
			return nil, err
		}
		best := golf.BestLower(bounds)
		if best == nil || !best.IsSolution() {
			return nil, nil
		}
		return s.repo.FindSolutionFor(ctx, best.ID)
	})
}

// History returns every bound recorded for an instance in insertion order
func (s *Service) History(ctx context.Context, inst golf.Instance) ([]golf.Bound, error) {
	return withTelemetry(s, ctx, "History", inst.Name(), func(ctx context.Context) ([]golf.Bound, error) {
		stored, err := s.stored(ctx, inst)
		if err != nil {
			return nil, err
		}
		return s.repo.ListBounds(ctx, stored.ID)
	})
}

// Rejections returns recent rejected submissions for an instance, or for all
// instances when inst is nil
func (s *Service) Rejections(ctx context.Context, inst *golf.Instance, limit int) ([]storage.RejectionRecord, error) {
	id := "all"
	if inst != nil {
		id = inst.Name()
	}
	return withTelemetry(s, ctx, "Rejections", id, func(ctx context.Context) ([]storage.RejectionRecord, error) {
		var instanceID int64
		if inst != nil {
			stored, err := s.stored(ctx, *inst)
			if err != nil {
				return nil, err
			}
			instanceID = stored.ID
		}
		return s.repo.ListRejections(ctx, instanceID, limit)
	})
}

// ClearConstruction removes everything a construction has produced
func (s *Service) ClearConstruction(ctx context.Context, constructionID string) (int64, error) {
	return withTelemetry(s, ctx, "ClearConstruction", constructionID, func(ctx context.Context) (int64, error) {
		removed, err := s.repo.DeleteConstruction(ctx, constructionID)
		if err != nil {
			return 0, err
		}
		s.logger.InfoContext(ctx, "Construction cleared", "construction", constructionID, "bounds_removed", removed)
		return removed, nil
	})
}

// stored resolves an instance by its parameters. A caller-supplied id must
// name the same row, so a schedule is never filed under another instance.
func (s *Service) stored(ctx context.Context, inst golf.Instance) (golf.Instance, error) {
	found, err := s.lookup(ctx, inst.NumGroups, inst.GroupSize)
	if err != nil {
		return golf.Instance{}, err
	}
	if inst.ID != 0 && inst.ID != found.ID {
		return golf.Instance{}, fmt.Errorf("%w: id %d does not belong to %s", ErrInstanceNotFound, inst.ID, found.Name())
	}
	return found, nil
}

func (s *Service) lookup(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	inst, err := s.repo.GetInstance(ctx, numGroups, groupSize)
	if errors.Is(err, storage.ErrNotFound) {
		return golf.Instance{}, fmt.Errorf("%w: %dx%d", ErrInstanceNotFound, numGroups, groupSize)
	}
	return inst, err
}

// ensureSubmission stores new provenance, or reloads shared provenance so a
// bound always carries what the database holds
func (s *Service) ensureSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error) {
	if info.ID == "" {
		return s.repo.CreateSubmission(ctx, info)
	}
	existing, err := s.repo.GetSubmission(ctx, info.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return golf.SubmissionInfo{}, fmt.Errorf("%w: %s", ErrSubmissionNotFound, info.ID)
	}
	return existing, err
}

func (s *Service) reject(ctx context.Context, inst golf.Instance, numRounds int, info golf.SubmissionInfo, cause error) {
	record := storage.RejectionRecord{
		InstanceID:   inst.ID,
		NumRounds:    numRounds,
		Message:      cause.Error(),
		SubmitterRef: info.SubmitterName,
	}

	var verr *golf.ValidationError
	var ferr *golf.FormatError
	switch {
	case errors.As(cause, &verr):
		record.ErrorKind = string(verr.Kind)
		if details, err := json.Marshal(verr.Details); err == nil {
			record.DetailsJSON = string(details)
		}
	case errors.As(cause, &ferr):
		record.ErrorKind = "invalid_format"
		if details, err := json.Marshal(map[string]any{
			"round": ferr.Round,
			"group": ferr.Group,
			"token": ferr.Token,
		}); err == nil {
			record.DetailsJSON = string(details)
		}
	default:
		record.ErrorKind = "unknown"
	}

	s.metrics.rejected(record.ErrorKind)
	s.repo.RecordRejection(record)
}
