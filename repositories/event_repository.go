package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sarsen13/event-management/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventInvalidOwner = errors.New("invalid event owner reference")
)

type EventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	// GetOwnerID читает только владельца — предварительная проверка прав
	// перед любой мутацией.
	GetOwnerID(ctx context.Context, id string) (string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Event, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	UpdateBannerKey(ctx context.Context, eventID string, bannerKey *string) error
	Delete(ctx context.Context, id string) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO events (id, user_id, name, sport_type, date, time, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Name, e.SportType, e.Date, e.Time, e.Description,
	).Scan(&e.CreatedAt, &e.UpdatedAt)

	return r.handleEventError(err)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, user_id, name, sport_type, to_char(date, 'YYYY-MM-DD'), time, description,
		       created_at, updated_at, banner_key
		FROM events
		WHERE id = $1`

	e := &models.Event{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.Name, &e.SportType, &e.Date, &e.Time, &e.Description,
		&e.CreatedAt, &e.UpdatedAt, &e.BannerKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) GetOwnerID(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM events WHERE id = $1`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrEventNotFound
		}
		return "", err
	}
	return ownerID, nil
}

func (r *postgresEventRepository) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	query := `
		SELECT id, user_id, name, sport_type, to_char(date, 'YYYY-MM-DD'), time, description,
		       created_at, updated_at, banner_key
		FROM events
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if scanErr := rows.Scan(
			&e.ID, &e.UserID, &e.Name, &e.SportType, &e.Date, &e.Time, &e.Description,
			&e.CreatedAt, &e.UpdatedAt, &e.BannerKey,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.Event) error {
	executor := r.getExecutor(exec)
	// updated_at обновляется всегда, даже если другие поля не менялись.
	query := `
		UPDATE events SET
			name = $1,
			sport_type = $2,
			date = $3,
			time = $4,
			description = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.Name, e.SportType, e.Date, e.Time, e.Description, e.ID,
	).Scan(&e.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	return r.handleEventError(err)
}

func (r *postgresEventRepository) UpdateBannerKey(ctx context.Context, eventID string, bannerKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET banner_key = $1 WHERE id = $2`, bannerKey, eventID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

// Delete удаляет событие; площадки каскадно удаляет внешний ключ в БД,
// без явной логики в приложении.
func (r *postgresEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return r.handleEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) handleEventError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "events_user_id_fkey" {
			return ErrEventInvalidOwner
		}
	}
	return err
}
