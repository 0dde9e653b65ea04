package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/security"
)

// EnsureAdminUser seeds one ADMIN user from env config so a fresh deployment
// is never locked out. Idempotent: does nothing when the email already exists.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy int64
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (fullname, email, password, role, num_cel, id_type, num_id)
		 VALUES ($1, $2, $3, $4, '', '', '')`,
		cfg.AdminFullname, cfg.AdminEmail, hash, user.RoleAdmin,
	)

	return err
}
