package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Sarsen13/event-management/models"
	"github.com/lib/pq"
)

var ErrVenueInvalidEvent = errors.New("invalid venue event reference")

type VenueRepository interface {
	InsertBatch(ctx context.Context, exec SQLExecutor, venues []models.Venue) error
	ListByEvent(ctx context.Context, eventID string) ([]models.Venue, error)
	// ListByEvents загружает площадки сразу для набора событий,
	// чтобы список событий не порождал запрос на каждую строку.
	ListByEvents(ctx context.Context, eventIDs []string) (map[string][]models.Venue, error)
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresVenueRepository struct {
	db *sql.DB
}

func NewPostgresVenueRepository(db *sql.DB) VenueRepository {
	return &postgresVenueRepository{db: db}
}

func (r *postgresVenueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresVenueRepository) InsertBatch(ctx context.Context, exec SQLExecutor, venues []models.Venue) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO venues (id, event_id, name, address, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	for i := range venues {
		v := &venues[i]
		err := executor.QueryRowContext(ctx, query,
			v.ID, v.EventID, v.Name, v.Address, v.Capacity,
		).Scan(&v.CreatedAt)
		if err != nil {
			return r.handleVenueError(err)
		}
	}
	return nil
}

func (r *postgresVenueRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Venue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, name, address, capacity, created_at
		FROM venues
		WHERE event_id = $1
		ORDER BY created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanVenues(rows)
}

func (r *postgresVenueRepository) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]models.Venue, error) {
	byEvent := make(map[string][]models.Venue, len(eventIDs))
	if len(eventIDs) == 0 {
		return byEvent, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, name, address, capacity, created_at
		FROM venues
		WHERE event_id = ANY($1)
		ORDER BY created_at`, pq.Array(eventIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues, err := scanVenues(rows)
	if err != nil {
		return nil, err
	}
	for _, v := range venues {
		byEvent[v.EventID] = append(byEvent[v.EventID], v)
	}
	return byEvent, nil
}

func (r *postgresVenueRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM venues WHERE event_id = $1`, eventID)
	return err
}

func scanVenues(rows *sql.Rows) ([]models.Venue, error) {
	venues := make([]models.Venue, 0)
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.EventID, &v.Name, &v.Address, &v.Capacity, &v.CreatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *postgresVenueRepository) handleVenueError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "venues_event_id_fkey" {
			return ErrVenueInvalidEvent
		}
	}
	return err
}
