package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alciverdev/farmatup-API/internal/domain/branch"
	"github.com/alciverdev/farmatup-API/internal/observability"
)

var ErrBranchNotFound = errors.New("branch not found")

// BranchesRepo is read-only: branches are provisioned outside this service.
type BranchesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBranchesRepo(pool *pgxpool.Pool, prom *observability.Prom) *BranchesRepo {
	return &BranchesRepo{pool: pool, prom: prom}
}

func (r *BranchesRepo) observe(op string, start time.Time, err error) {
	if r.prom != nil {
		r.prom.ObserveDB(op, start, err)
	}
}

func (r *BranchesRepo) GetByID(ctx context.Context, id int64) (b branch.Branch, err error) {
	start := time.Now()
	defer func() { r.observe("branches.get_by_id", start, err) }()

	err = r.pool.QueryRow(
		ctx,
		`SELECT id, name FROM branches WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return branch.Branch{}, ErrBranchNotFound
		}
		return branch.Branch{}, err
	}
	return b, nil
}

func (r *BranchesRepo) List(ctx context.Context) (branches []branch.Branch, err error) {
	start := time.Now()
	defer func() { r.observe("branches.list", start, err) }()

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM branches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	branches = make([]branch.Branch, 0)
	for rows.Next() {
		var b branch.Branch
		if scanErr := rows.Scan(&b.ID, &b.Name); scanErr != nil {
			err = scanErr
			return nil, err
		}
		branches = append(branches, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return branches, nil
}
