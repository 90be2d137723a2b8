package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/geocoder89/eventmanager/internal/repo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

const eventColumns = `
	e.id,
	e.title,
	e.description,
	e.date,
	e.location,
	e.organizer_id,
	u.username,
	u.email,
	(SELECT COUNT(*) FROM registrations r WHERE r.event_id = e.id) AS participants_count,
	e.created_at,
	e.updated_at`

const eventFrom = ` FROM events e JOIN users u ON u.id = e.organizer_id`

func scanEvent(row pgx.Row, extra ...any) (event.Event, error) {
	var e event.Event
	dest := []any{
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.OrganizerID, &e.Organizer.Username, &e.Organizer.Email,
		&e.ParticipantsCount, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return event.Event{}, err
	}
	e.Organizer.ID = e.OrganizerID
	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) error {
	err := r.prom.ObserveDB("events.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO events (id, title, description, date, location, organizer_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.Title, e.Description, e.Date, e.Location, e.OrganizerID, e.CreatedAt, e.UpdatedAt,
		)
		return err
	})

	if isForeignKeyViolation(err) {
		return user.ErrNotFound
	}
	return err
}

func (r *EventsRepo) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, int, error) {
	var conds []string
	var args []any

	argsPosition := 1
	add := func(cond string, arg any) {
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", argsPosition)))
		args = append(args, arg)
		argsPosition++
	}

	if f.Title != nil {
		add(`e.title ILIKE ? ESCAPE '\'`, repo.ContainsPattern(*f.Title))
	}
	if f.Location != nil {
		add(`e.location ILIKE ? ESCAPE '\'`, repo.ContainsPattern(*f.Location))
	}
	if f.Search != nil {
		pattern := repo.ContainsPattern(*f.Search)
		p := argsPosition
		conds = append(conds, fmt.Sprintf(
			`(e.title ILIKE $%d ESCAPE '\' OR e.description ILIKE $%d ESCAPE '\' OR e.location ILIKE $%d ESCAPE '\')`, p, p, p))
		args = append(args, pattern)
		argsPosition++
	}
	if f.DateFrom != nil {
		add(`e.date >= ?`, *f.DateFrom)
	}
	if f.DateTo != nil {
		add(`e.date <= ?`, *f.DateTo)
	}
	if f.StartsAfter != nil {
		add(`e.date > ?`, *f.StartsAfter)
	}
	if f.OrganizerID != nil {
		add(`e.organizer_id = ?`, *f.OrganizerID)
	}

	query := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total` + eventFrom

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	column, desc := repo.OrderBy(f.Ordering)
	dir := "ASC"
	if desc {
		dir = "DESC"
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY e.%s %s, e.id %s LIMIT $%d OFFSET $%d", column, dir, dir, argsPosition, argsPosition+1)
	args = append(args, f.Limit, f.Offset)

	output := make([]event.Event, 0, f.Limit)
	total := 0

	err := r.prom.ObserveDB("events.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t int
			e, err := scanEvent(rows, &t)
			if err != nil {
				return err
			}
			total = t
			output = append(output, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	// past the last page the window count is unavailable
	if len(output) == 0 && f.Offset > 0 {
		err = r.prom.ObserveDB("events.count", func() error {
			q := `SELECT COUNT(*)` + eventFrom
			countArgs := args[:len(args)-2]
			if len(conds) > 0 {
				q += " WHERE " + strings.Join(conds, " AND ")
			}
			return r.pool.QueryRow(ctx, q, countArgs...).Scan(&total)
		})
		if err != nil {
			return nil, 0, err
		}
	}

	return output, total, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	var e event.Event
	err := r.prom.ObserveDB("events.get_by_id", func() error {
		var err error
		e, err = scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+eventFrom+` WHERE e.id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, err
	}

	return e, nil
}

// Update persists the writable fields. The organizer column is never written.
func (r *EventsRepo) Update(ctx context.Context, e event.Event) error {
	var tag pgconn.CommandTag

	err := r.prom.ObserveDB("events.update", func() error {
		var err error
		tag, err = r.pool.Exec(ctx,
			`UPDATE events
				SET title = $2,
					description = $3,
					date = $4,
					location = $5,
					updated_at = $6
			WHERE id = $1`,
			e.ID, e.Title, e.Description, e.Date, e.Location, e.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.prom.ObserveDB("events.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}
