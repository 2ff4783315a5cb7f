package construct

import (
	"context"
	"fmt"
	"log/slog"

	"golf/internal/server/golf"
)

// Default sweep limits
const (
	MaxNumGroups = 20
	MaxGroupSize = 20
)

// Catalogue is the subset of the service a registry run writes through
type Catalogue interface {
	CreateInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error)
	CreateSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error)
	SubmitBound(ctx context.Context, inst golf.Instance, kind golf.BoundKind, numRounds int, info golf.SubmissionInfo) (golf.Bound, error)
	SubmitSolution(ctx context.Context, inst golf.Instance, numRounds int, text string, info golf.SubmissionInfo) (golf.Bound, error)
	ClearConstruction(ctx context.Context, constructionID string) (int64, error)
}

// Summary reports what one constructor did during a run
type Summary struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
	Cleared int64  `json:"cleared"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// Registry runs constructors over the instance sweep
type Registry struct {
	catalogue    Catalogue
	logger       *slog.Logger
	constructors []Constructor
	maxNumGroups int
	maxGroupSize int
	contact      string
}

// Option configures a Registry
type Option func(*Registry)

// WithLimits bounds the instance sweep
func WithLimits(maxNumGroups, maxGroupSize int) Option {
	return func(r *Registry) {
		r.maxNumGroups = maxNumGroups
		r.maxGroupSize = maxGroupSize
	}
}

// WithContact sets the maintainer email recorded on generated submissions
// whose constructor names none
func WithContact(email string) Option {
	return func(r *Registry) {
		r.contact = email
	}
}

// WithConstructors replaces the built-in constructors
func WithConstructors(cs ...Constructor) Option {
	return func(r *Registry) {
		r.constructors = cs
	}
}

// NewRegistry creates a registry holding the built-in constructors
func NewRegistry(catalogue Catalogue, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		catalogue:    catalogue,
		logger:       logger,
		constructors: Builtin(),
		maxNumGroups: MaxNumGroups,
		maxGroupSize: MaxGroupSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Constructors lists the registered constructors
func (r *Registry) Constructors() []Info {
	infos := make([]Info, 0, len(r.constructors))
	for _, c := range r.constructors {
		infos = append(infos, c.Info())
	}
	return infos
}

// Instances creates or fetches every instance in the sweep:
// num_groups in [2, max], group_size in [2, min(num_groups, max)]
func (r *Registry) Instances(ctx context.Context) ([]golf.Instance, error) {
	var instances []golf.Instance
	for g := 2; g <= r.maxNumGroups; g++ {
		for s := 2; s <= min(g, r.maxGroupSize); s++ {
			inst, err := r.catalogue.CreateInstance(ctx, g, s)
			if err != nil {
				return nil, fmt.Errorf("failed to create instance %dx%d: %w", g, s, err)
			}
			instances = append(instances, inst)
		}
	}
	return instances, nil
}

// RunAll clears and recreates the output of every constructor. Running it
// twice leaves the same set of bounds.
func (r *Registry) RunAll(ctx context.Context) ([]Summary, error) {
	instances, err := r.Instances(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(r.constructors))
	for _, c := range r.constructors {
		sum, err := r.run(ctx, c, instances)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// Run clears and recreates the output of a single constructor
func (r *Registry) Run(ctx context.Context, id string) (Summary, error) {
	for _, c := range r.constructors {
		if c.Info().ID != id {
			continue
		}
		instances, err := r.Instances(ctx)
		if err != nil {
			return Summary{}, err
		}
		return r.run(ctx, c, instances)
	}
	return Summary{}, fmt.Errorf("unknown construction %q", id)
}

// provenance is the submission shared by one constructor run
func (r *Registry) provenance(info Info) golf.SubmissionInfo {
	sub := info.Submission()
	if sub.SubmitterEmail == "" {
		sub.SubmitterEmail = r.contact
	}
	return sub
}

func (r *Registry) run(ctx context.Context, c Constructor, instances []golf.Instance) (Summary, error) {
	info := c.Info()
	sum := Summary{ID: info.ID, Version: info.Version}

	cleared, err := r.catalogue.ClearConstruction(ctx, info.ID)
	if err != nil {
		return sum, fmt.Errorf("failed to clear construction %s: %w", info.ID, err)
	}
	sum.Cleared = cleared

	// Created lazily so a constructor that applies nowhere leaves no trace
	var submission *golf.SubmissionInfo

	for _, inst := range instances {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		candidate := c.Construct(inst)
		if candidate == nil {
			sum.Skipped++
			continue
		}

		if submission == nil {
			created, err := r.catalogue.CreateSubmission(ctx, r.provenance(info))
			if err != nil {
				return sum, fmt.Errorf("failed to create submission for %s: %w", info.ID, err)
			}
			submission = &created
		}

		if candidate.Schedule != nil {
			_, err = r.catalogue.SubmitSolution(ctx, inst, candidate.NumRounds, golf.Encode(candidate.Schedule), *submission)
		} else {
			_, err = r.catalogue.SubmitBound(ctx, inst, candidate.Kind, candidate.NumRounds, *submission)
		}
		if err != nil {
			return sum, fmt.Errorf("construction %s failed on %s: %w", info.ID, inst.Name(), err)
		}
		sum.Created++
	}

	r.logger.InfoContext(ctx, "Construction run complete",
		"construction", info.ID,
		"version", info.Version,
		"cleared", sum.Cleared,
		"created", sum.Created,
		"skipped", sum.Skipped,
	)
	return sum, nil
}
