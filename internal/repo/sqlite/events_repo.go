package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/geocoder89/eventmanager/internal/db"
	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/geocoder89/eventmanager/internal/repo"
)

type EventsRepo struct {
	db   *bun.DB
	prom *observability.Prom
}

func NewEventsRepo(db *bun.DB, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{db: db, prom: prom}
}

func (r *EventsRepo) selectEvents(dest *[]eventRow) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(dest).
		ColumnExpr("e.*").
		ColumnExpr("u.username AS organizer_username").
		ColumnExpr("u.email AS organizer_email").
		ColumnExpr("(SELECT COUNT(*) FROM registrations AS r WHERE r.event_id = e.id) AS participants_count").
		Join("JOIN users AS u ON u.id = e.organizer_id")
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) error {
	m := eventToModel(e)

	err := r.prom.ObserveDB("events.create", func() error {
		_, err := r.db.NewInsert().Model(&m).Exec(ctx)
		return err
	})

	if isForeignKeyViolation(err) {
		return user.ErrNotFound
	}
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var rows []eventRow

	err := r.prom.ObserveDB("events.get_by_id", func() error {
		return r.selectEvents(&rows).Where("e.id = ?", id).Limit(1).Scan(ctx)
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, err
	}
	if len(rows) == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *EventsRepo) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, int, error) {
	var rows []eventRow
	q := r.selectEvents(&rows)

	if f.Title != nil {
		q = q.Where(icontains("e.title"), foldedPattern(*f.Title))
	}
	if f.Location != nil {
		q = q.Where(icontains("e.location"), foldedPattern(*f.Location))
	}
	if f.Search != nil {
		pattern := foldedPattern(*f.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(icontains("e.title"), pattern).
				WhereOr(icontains("e.description"), pattern).
				WhereOr(icontains("e.location"), pattern)
		})
	}
	if f.DateFrom != nil {
		q = q.Where("e.date >= ?", toMillis(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("e.date <= ?", toMillis(*f.DateTo))
	}
	if f.StartsAfter != nil {
		q = q.Where("e.date > ?", toMillis(*f.StartsAfter))
	}
	if f.OrganizerID != nil {
		q = q.Where("e.organizer_id = ?", *f.OrganizerID)
	}

	column, desc := repo.OrderBy(f.Ordering)
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q = q.OrderExpr(fmt.Sprintf("e.%s %s, e.id %s", column, dir, dir)).
		Limit(f.Limit).
		Offset(f.Offset)

	var total int
	err := r.prom.ObserveDB("events.list", func() error {
		var err error
		total, err = q.ScanAndCount(ctx)
		return err
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, 0, err
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

// icontains matches a column against a folded pattern so non-ASCII letters
// compare case-insensitively, as ILIKE does on postgres.
func icontains(column string) string {
	return db.CaseFoldFunc + "(" + column + `) LIKE ? ESCAPE '\'`
}

func foldedPattern(s string) string {
	return repo.ContainsPattern(strings.ToLower(s))
}

// Update persists the writable fields. The organizer column is never written.
func (r *EventsRepo) Update(ctx context.Context, e event.Event) error {
	m := eventToModel(e)

	var res sql.Result
	err := r.prom.ObserveDB("events.update", func() error {
		var err error
		res, err = r.db.NewUpdate().
			Model(&m).
			Column("title", "description", "date", "location", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return notFoundIfNone(res, event.ErrNotFound)
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	var res sql.Result
	err := r.prom.ObserveDB("events.delete", func() error {
		var err error
		res, err = r.db.NewDelete().Model((*eventModel)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return notFoundIfNone(res, event.ErrNotFound)
}

func notFoundIfNone(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
