package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golf/internal/server/golf"
	"golf/internal/server/storage"
)

// fakeRepo is an in-memory Repository
type fakeRepo struct {
	mu          sync.Mutex
	instances   []golf.Instance
	submissions map[string]golf.SubmissionInfo
	bounds      []golf.Bound
	rejections  []storage.RejectionRecord
	failInsert  error
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{submissions: make(map[string]golf.SubmissionInfo)}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) EnsureInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.instances {
		if inst.NumGroups == numGroups && inst.GroupSize == groupSize {
			return inst, nil
		}
	}
	inst := golf.Instance{ID: f.id(), NumGroups: numGroups, GroupSize: groupSize}
	f.instances = append(f.instances, inst)
	return inst, nil
}

func (f *fakeRepo) GetInstance(ctx context.Context, numGroups, groupSize int) (golf.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inst := range f.instances {
		if inst.NumGroups == numGroups && inst.GroupSize == groupSize {
			return inst, nil
		}
	}
	return golf.Instance{}, storage.ErrNotFound
}

func (f *fakeRepo) ListInstances(ctx context.Context) ([]golf.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]golf.Instance(nil), f.instances...), nil
}

func (f *fakeRepo) CreateSubmission(ctx context.Context, info golf.SubmissionInfo) (golf.SubmissionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info.ID == "" {
		info.ID = fmt.Sprintf("sub-%d", f.id())
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	f.submissions[info.ID] = info
	return info, nil
}

func (f *fakeRepo) GetSubmission(ctx context.Context, id string) (golf.SubmissionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.submissions[id]
	if !ok {
		return golf.SubmissionInfo{}, storage.ErrNotFound
	}
	return info, nil
}

func (f *fakeRepo) InsertBound(ctx context.Context, b golf.Bound) (golf.Bound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return golf.Bound{}, f.failInsert
	}
	if _, ok := f.submissions[b.Submission.ID]; !ok {
		return golf.Bound{}, errors.New("FOREIGN KEY constraint failed")
	}
	b.ID = f.id()
	f.bounds = append(f.bounds, b)
	return b, nil
}

func (f *fakeRepo) ListBounds(ctx context.Context, instanceID int64) ([]golf.Bound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []golf.Bound
	for _, b := range f.bounds {
		if b.InstanceID == instanceID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAllBounds(ctx context.Context) (map[int64][]golf.Bound, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]golf.Bound)
	for _, b := range f.bounds {
		out[b.InstanceID] = append(out[b.InstanceID], b)
	}
	return out, nil
}

func (f *fakeRepo) FindSolutionFor(ctx context.Context, boundID int64) (*golf.Solution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bounds {
		if b.ID == boundID {
			return b.Solution, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) DeleteConstruction(ctx context.Context, constructionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	kept := f.bounds[:0]
	for _, b := range f.bounds {
		if c := b.Submission.Construction; c != nil && c.ID == constructionID {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	f.bounds = kept
	for id, info := range f.submissions {
		if c := info.Construction; c != nil && c.ID == constructionID {
			delete(f.submissions, id)
		}
	}
	return removed, nil
}

func (f *fakeRepo) RecordRejection(record storage.RejectionRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejections = append(f.rejections, record)
}

func (f *fakeRepo) ListRejections(ctx context.Context, instanceID int64, limit int) ([]storage.RejectionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.RejectionRecord
	for i := len(f.rejections) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if instanceID == 0 || f.rejections[i].InstanceID == instanceID {
			out = append(out, f.rejections[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) IsHealthy() bool {
	return true
}
