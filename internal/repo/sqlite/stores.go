package sqlite

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/geocoder89/eventmanager/internal/repo"
)

func NewStores(db *bun.DB, prom *observability.Prom) repo.Stores {
	return repo.Stores{
		Users:         NewUsersRepo(db, prom),
		Events:        NewEventsRepo(db, prom),
		Registrations: NewRegistrationsRepo(db, prom),
		Ping:          func(ctx context.Context) error { return db.PingContext(ctx) },
		Close:         db.Close,
	}
}
