package services

import (
	"context"
	"database/sql"
	"io"
	"time"

	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/repositories"
	"github.com/Sarsen13/event-management/storage"
)

// Фейки репозиториев и хранилища для тестов сервисного слоя.
// Поведение — в памяти, ошибки подставляются через поля.

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t *fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxStarter struct {
	last     *fakeTx
	beginErr error
}

func (s *fakeTxStarter) BeginTx(ctx context.Context, opts *sql.TxOptions) (repositories.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.last = &fakeTx{}
	return s.last, nil
}

type fakeEventRepo struct {
	order     []string
	events    map[string]*models.Event
	createErr error
}

var _ repositories.EventRepository = (*fakeEventRepo)(nil)

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*models.Event)}
}

func (r *fakeEventRepo) Create(ctx context.Context, exec repositories.SQLExecutor, e *models.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	// Метки времени сдвинуты в прошлое, чтобы обновления были строго позже.
	e.CreatedAt = time.Now().Add(-time.Hour)
	e.UpdatedAt = e.CreatedAt
	stored := *e
	stored.Venues = nil
	r.events[e.ID] = &stored
	r.order = append(r.order, e.ID)
	return nil
}

func (r *fakeEventRepo) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEventRepo) GetOwnerID(ctx context.Context, id string) (string, error) {
	e, ok := r.events[id]
	if !ok {
		return "", repositories.ErrEventNotFound
	}
	return e.UserID, nil
}

func (r *fakeEventRepo) ListByUser(ctx context.Context, userID string) ([]models.Event, error) {
	events := make([]models.Event, 0)
	for _, id := range r.order {
		if e, ok := r.events[id]; ok && e.UserID == userID {
			events = append(events, *e)
		}
	}
	return events, nil
}

func (r *fakeEventRepo) Update(ctx context.Context, exec repositories.SQLExecutor, e *models.Event) error {
	if _, ok := r.events[e.ID]; !ok {
		return repositories.ErrEventNotFound
	}
	e.UpdatedAt = time.Now()
	stored := *e
	stored.Venues = nil
	r.events[e.ID] = &stored
	return nil
}

func (r *fakeEventRepo) UpdateBannerKey(ctx context.Context, eventID string, bannerKey *string) error {
	e, ok := r.events[eventID]
	if !ok {
		return repositories.ErrEventNotFound
	}
	e.BannerKey = bannerKey
	return nil
}

func (r *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

type fakeVenueRepo struct {
	byEvent   map[string][]models.Venue
	insertErr error
}

var _ repositories.VenueRepository = (*fakeVenueRepo)(nil)

func newFakeVenueRepo() *fakeVenueRepo {
	return &fakeVenueRepo{byEvent: make(map[string][]models.Venue)}
}

func (r *fakeVenueRepo) InsertBatch(ctx context.Context, exec repositories.SQLExecutor, venues []models.Venue) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for i := range venues {
		venues[i].CreatedAt = time.Now()
		r.byEvent[venues[i].EventID] = append(r.byEvent[venues[i].EventID], venues[i])
	}
	return nil
}

func (r *fakeVenueRepo) ListByEvent(ctx context.Context, eventID string) ([]models.Venue, error) {
	return append([]models.Venue(nil), r.byEvent[eventID]...), nil
}

func (r *fakeVenueRepo) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]models.Venue, error) {
	out := make(map[string][]models.Venue, len(eventIDs))
	for _, id := range eventIDs {
		if vs, ok := r.byEvent[id]; ok {
			out[id] = append([]models.Venue(nil), vs...)
		}
	}
	return out, nil
}

func (r *fakeVenueRepo) DeleteByEvent(ctx context.Context, exec repositories.SQLExecutor, eventID string) error {
	delete(r.byEvent, eventID)
	return nil
}

type fakeUserRepo struct {
	users     map[string]*models.User
	createErr error
}

var _ repositories.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.CreatedAt = time.Now()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ConfirmEmail(ctx context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	now := time.Now()
	u.EmailConfirmed = true
	u.EmailConfirmedAt = &now
	u.EmailConfirmationToken = nil
	return nil
}

type fakeUploader struct {
	uploads map[string]string // key -> content type
	deleted []string
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploads == nil {
		u.uploads = make(map[string]string)
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return nil, err
	}
	u.uploads[key] = contentType
	return &storage.UploadResult{Key: key}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://files.test/" + key
}
