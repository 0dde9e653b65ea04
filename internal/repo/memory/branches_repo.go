package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alciverdev/farmatup-API/internal/domain/branch"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
)

type BranchesRepo struct {
	mu    sync.RWMutex
	items map[int64]branch.Branch
}

func NewBranchesRepo(branches ...branch.Branch) *BranchesRepo {
	r := &BranchesRepo{items: make(map[int64]branch.Branch, len(branches))}
	for _, b := range branches {
		r.items[b.ID] = b
	}
	return r
}

func (r *BranchesRepo) GetByID(_ context.Context, id int64) (branch.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.items[id]
	if !ok {
		return branch.Branch{}, postgres.ErrBranchNotFound
	}
	return b, nil
}

func (r *BranchesRepo) List(_ context.Context) ([]branch.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	branches := make([]branch.Branch, 0, len(r.items))
	for _, b := range r.items {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].ID < branches[j].ID })

	return branches, nil
}
