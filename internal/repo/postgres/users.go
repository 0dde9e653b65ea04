package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, fullname, email, password, role, num_cel, id_type, num_id, image, branch_id, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, start time.Time, err error) {
	if r.prom != nil {
		r.prom.ObserveDB(op, start, err)
	}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Fullname,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.NumCel,
		&u.IDType,
		&u.NumID,
		&u.Image,
		&u.BranchID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrEmailTaken
		case foreignKeyViolation:
			return ErrBranchNotFound
		}
	}
	return err
}

func (r *UsersRepo) Create(ctx context.Context, p user.CreateUserParams) (u user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.create", start, err) }()

	u, err = scanUser(r.pool.QueryRow(
		ctx,
		`INSERT INTO users (fullname, email, password, role, num_cel, id_type, num_id, image, branch_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+userColumns,
		p.Fullname, p.Email, p.PasswordHash, p.Role, p.NumCel, p.IDType, p.NumID, p.Image, p.BranchID,
	))
	if err != nil {
		return user.User{}, mapConstraintError(err)
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.get_by_email", start, err) }()

	u, err = scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (u user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.get_by_id", start, err) }()

	u, err = scanUser(r.pool.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// List returns all users ordered by id ascending. No pagination contract
// exists for this endpoint; insertion order is the deliberate default.
func (r *UsersRepo) List(ctx context.Context) (users []user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.list", start, err) }()

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users = make([]user.User, 0)
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies only the fields present in p. An all-nil p is a no-op read.
func (r *UsersRepo) Update(ctx context.Context, id int64, p user.UpdateUserParams) (u user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.update", start, err) }()

	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Fullname != nil {
		set("fullname", *p.Fullname)
	}
	if p.Email != nil {
		set("email", *p.Email)
	}
	if p.PasswordHash != nil {
		set("password", *p.PasswordHash)
	}
	if p.Role != nil {
		set("role", *p.Role)
	}
	if p.NumCel != nil {
		set("num_cel", *p.NumCel)
	}
	if p.IDType != nil {
		set("id_type", *p.IDType)
	}
	if p.NumID != nil {
		set("num_id", *p.NumID)
	}
	if p.Image != nil {
		set("image", *p.Image)
	}
	if p.BranchID != nil {
		set("branch_id", *p.BranchID)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		fmt.Sprintf(` WHERE id = $%d RETURNING `, len(args)) + userColumns

	u, err = scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, mapConstraintError(err)
	}
	return u, nil
}

// Delete removes the user and returns the deleted row snapshot.
func (r *UsersRepo) Delete(ctx context.Context, id int64) (u user.User, err error) {
	start := time.Now()
	defer func() { r.observe("users.delete", start, err) }()

	u, err = scanUser(r.pool.QueryRow(
		ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
