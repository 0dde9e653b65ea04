package cached_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alciverdev/farmatup-API/internal/cache"
	"github.com/alciverdev/farmatup-API/internal/domain/branch"
	"github.com/alciverdev/farmatup-API/internal/repo/cached"
	"github.com/alciverdev/farmatup-API/internal/repo/postgres"
)

type countingBranches struct {
	calls int
	items map[int64]branch.Branch
}

func (c *countingBranches) GetByID(_ context.Context, id int64) (branch.Branch, error) {
	c.calls++
	b, ok := c.items[id]
	if !ok {
		return branch.Branch{}, postgres.ErrBranchNotFound
	}
	return b, nil
}

func (c *countingBranches) List(_ context.Context) ([]branch.Branch, error) {
	c.calls++
	out := make([]branch.Branch, 0, len(c.items))
	for _, b := range c.items {
		out = append(out, b)
	}
	return out, nil
}

func TestGetByIDServesSecondReadFromCache(t *testing.T) {
	next := &countingBranches{items: map[int64]branch.Branch{1: {ID: 1, Name: "Centro"}}}
	repo := cached.NewBranches(next, cache.NewMemory(time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		b, err := repo.GetByID(ctx, 1)
		if err != nil {
			t.Fatalf("GetByID returned error: %v", err)
		}
		if b.Name != "Centro" {
			t.Fatalf("b.Name = %q, want Centro", b.Name)
		}
	}

	if next.calls != 1 {
		t.Fatalf("underlying repo called %d times, want 1", next.calls)
	}
}

func TestGetByIDMissIsNotCached(t *testing.T) {
	next := &countingBranches{items: map[int64]branch.Branch{}}
	repo := cached.NewBranches(next, cache.NewMemory(time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := repo.GetByID(ctx, 7); !errors.Is(err, postgres.ErrBranchNotFound) {
			t.Fatalf("GetByID = %v, want ErrBranchNotFound", err)
		}
	}

	if next.calls != 2 {
		t.Fatalf("underlying repo called %d times, want 2 (misses pass through)", next.calls)
	}
}
