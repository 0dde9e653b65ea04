// Package cached wraps branch reads with a short-lived TTL cache. Branches
// change rarely and are consulted on every registration and update with a
// branch reference, so a read-through cache keeps those hot lookups off the
// database. Cache failures degrade to plain reads.
package cached

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/alciverdev/farmatup-API/internal/cache"
	"github.com/alciverdev/farmatup-API/internal/domain/branch"
)

type BranchReader interface {
	GetByID(ctx context.Context, id int64) (branch.Branch, error)
	List(ctx context.Context) ([]branch.Branch, error)
}

type Branches struct {
	next  BranchReader
	store cache.Store
}

func NewBranches(next BranchReader, store cache.Store) *Branches {
	return &Branches{next: next, store: store}
}

func branchKey(id int64) string {
	return "branch:" + strconv.FormatInt(id, 10)
}

func (c *Branches) GetByID(ctx context.Context, id int64) (branch.Branch, error) {
	if raw, ok := c.store.Get(ctx, branchKey(id)); ok {
		var b branch.Branch
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
	}

	b, err := c.next.GetByID(ctx, id)
	if err != nil {
		return branch.Branch{}, err
	}

	if raw, err := json.Marshal(b); err == nil {
		c.store.Set(ctx, branchKey(b.ID), raw)
	}
	return b, nil
}

// List is not cached: it only backs the admin branch listing, which is cold.
func (c *Branches) List(ctx context.Context) ([]branch.Branch, error) {
	return c.next.List(ctx)
}
