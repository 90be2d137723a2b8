package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	err := r.prom.ObserveDB("users.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO users (id, username, email, password_hash, date_joined)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.DateJoined,
		)
		return e
	})

	if constraint, ok := uniqueViolation(err); ok {
		if constraint == "users_email_key" {
			return user.ErrEmailTaken
		}
		return user.ErrUsernameTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_username", `WHERE username = $1`, username)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, username, email, password_hash, date_joined FROM users `+where,
			arg,
		).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DateJoined)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "users.email_exists", `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, email)
}

func (r *UsersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "users.username_exists", `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UsersRepo) exists(ctx context.Context, op, q string, arg any) (bool, error) {
	var ok bool
	err := r.prom.ObserveDB(op, func() error {
		return r.pool.QueryRow(ctx, q, arg).Scan(&ok)
	})
	return ok, err
}
