package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationRepo {
	return &RegistrationRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationRepo) Find(ctx context.Context, userID, eventID string) (registration.Registration, error) {
	var r registration.Registration

	err := repo.prom.ObserveDB("registrations.find", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT id, user_id, event_id, registered_at
			 FROM registrations
			 WHERE user_id = $1 AND event_id = $2`,
			userID, eventID,
		).Scan(&r.ID, &r.UserID, &r.EventID, &r.RegisteredAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, err
	}
	return r, nil
}

// Create inserts reg. The registrations_user_event_key constraint decides
// concurrent attempts for the same pair; the loser gets ErrDuplicate.
func (repo *RegistrationRepo) Create(ctx context.Context, reg registration.Registration) error {
	err := repo.prom.ObserveDB("registrations.create", func() error {
		_, e := repo.pool.Exec(ctx,
			`INSERT INTO registrations (id, user_id, event_id, registered_at)
			 VALUES ($1, $2, $3, $4)`,
			reg.ID, reg.UserID, reg.EventID, reg.RegisteredAt,
		)
		return e
	})

	if err == nil {
		return nil
	}
	if _, ok := uniqueViolation(err); ok {
		return registration.ErrDuplicate
	}
	if isForeignKeyViolation(err) {
		return event.ErrNotFound
	}
	return err
}

func (repo *RegistrationRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := repo.prom.ObserveDB("registrations.delete", func() error {
		var err error
		tag, err = repo.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (repo *RegistrationRepo) ListParticipants(ctx context.Context, eventID string) ([]registration.Participant, error) {
	out := make([]registration.Participant, 0)

	err := repo.prom.ObserveDB("registrations.list_participants", func() error {
		rows, err := repo.pool.Query(ctx,
			`SELECT r.id, r.user_id, u.username, u.email, r.registered_at
			 FROM registrations r
			 JOIN users u ON u.id = r.user_id
			 WHERE r.event_id = $1
			 ORDER BY r.registered_at DESC, r.id DESC`,
			eventID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p registration.Participant
			if err := rows.Scan(&p.ID, &p.UserID, &p.Username, &p.Email, &p.RegisteredAt); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}
