package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/geocoder89/eventmanager/internal/domain/event"
	"github.com/geocoder89/eventmanager/internal/domain/registration"
	"github.com/geocoder89/eventmanager/internal/observability"
)

type RegistrationRepo struct {
	db   *bun.DB
	prom *observability.Prom
}

func NewRegistrationsRepo(db *bun.DB, prom *observability.Prom) *RegistrationRepo {
	return &RegistrationRepo{db: db, prom: prom}
}

func (repo *RegistrationRepo) Find(ctx context.Context, userID, eventID string) (registration.Registration, error) {
	var m registrationModel

	err := repo.prom.ObserveDB("registrations.find", func() error {
		return repo.db.NewSelect().
			Model(&m).
			Where("r.user_id = ? AND r.event_id = ?", userID, eventID).
			Limit(1).
			Scan(ctx)
	})

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, err
	}
	return m.toDomain(), nil
}

// Create inserts reg. The UNIQUE (user_id, event_id) constraint decides
// concurrent attempts for the same pair; the loser gets ErrDuplicate.
func (repo *RegistrationRepo) Create(ctx context.Context, reg registration.Registration) error {
	m := registrationToModel(reg)

	err := repo.prom.ObserveDB("registrations.create", func() error {
		_, err := repo.db.NewInsert().Model(&m).Exec(ctx)
		return err
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
	var res sql.Result
	err := repo.prom.ObserveDB("registrations.delete", func() error {
		var err error
		res, err = repo.db.NewDelete().Model((*registrationModel)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}

	return notFoundIfNone(res, registration.ErrNotFound)
}

func (repo *RegistrationRepo) ListParticipants(ctx context.Context, eventID string) ([]registration.Participant, error) {
	var rows []participantRow

	err := repo.prom.ObserveDB("registrations.list_participants", func() error {
		return repo.db.NewSelect().
			TableExpr("registrations AS r").
			ColumnExpr("r.id, r.user_id, u.username, u.email, r.registered_at").
			Join("JOIN users AS u ON u.id = r.user_id").
			Where("r.event_id = ?", eventID).
			OrderExpr("r.registered_at DESC, r.id DESC").
			Scan(ctx, &rows)
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	out := make([]registration.Participant, 0, len(rows))
	for _, p := range rows {
		out = append(out, p.toDomain())
	}
	return out, nil
}

