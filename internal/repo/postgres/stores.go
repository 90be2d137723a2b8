package postgres

import (
	"context"

	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/geocoder89/eventmanager/internal/repo"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewStores(pool *pgxpool.Pool, prom *observability.Prom) repo.Stores {
	return repo.Stores{
		Users:         NewUsersRepo(pool, prom),
		Events:        NewEventsRepo(pool, prom),
		Registrations: NewRegistrationsRepo(pool, prom),
		Ping:          func(ctx context.Context) error { return pool.Ping(ctx) },
		Close: func() error {
			pool.Close()
			return nil
		},
	}
}
