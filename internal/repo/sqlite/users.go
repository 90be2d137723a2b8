package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/observability"
)

type UsersRepo struct {
	db   *bun.DB
	prom *observability.Prom
}

func NewUsersRepo(db *bun.DB, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	m := userToModel(u)

	err := r.prom.ObserveDB("users.create", func() error {
		_, err := r.db.NewInsert().Model(&m).Exec(ctx)
		return err
	})

	if msg, ok := uniqueViolation(err); ok {
		if strings.Contains(msg, "users.email") {
			return user.ErrEmailTaken
		}
		return user.ErrUsernameTaken
	}
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", "u.id = ?", id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_username", "u.username = ?", username)
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var m userModel

	err := r.prom.ObserveDB(op, func() error {
		return r.db.NewSelect().Model(&m).Where(where, arg).Limit(1).Scan(ctx)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return m.toDomain(), nil
}

func (r *UsersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.prom.ObserveDB("users.email_exists", func() error {
		var err error
		ok, err = r.db.NewSelect().Model((*userModel)(nil)).Where("lower(u.email) = lower(?)", email).Exists(ctx)
		return err
	})
	return ok, err
}

func (r *UsersRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.prom.ObserveDB("users.username_exists", func() error {
		var err error
		ok, err = r.db.NewSelect().Model((*userModel)(nil)).Where("u.username = ?", username).Exists(ctx)
		return err
	})
	return ok, err
}
