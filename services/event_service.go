package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/repositories"
	"github.com/Sarsen13/event-management/storage"
	"github.com/Sarsen13/event-management/validation"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	MinVenuesPerEvent = 1
	MaxVenuesPerEvent = 10
	MaxVenueCapacity  = 1_000_000
)

// Capacity принимает из JSON и число, и числовую строку: формы
// отправляют значения полей строками.
type Capacity int

func (c *Capacity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("capacity must be a number")
	}
	*c = Capacity(n)
	return nil
}

type VenueInput struct {
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Capacity Capacity `json:"capacity"`
}

type CreateEventInput struct {
	Name        string           `json:"name"`
	SportType   models.SportType `json:"sport_type"`
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Description *string          `json:"description"`
	Venues      []VenueInput     `json:"venues"`
}

// UpdateEventInput — вариант CreateEventInput со всеми необязательными
// полями; записываются только присутствующие.
type UpdateEventInput struct {
	Name        *string           `json:"name"`
	SportType   *models.SportType `json:"sport_type"`
	Date        *string           `json:"date"`
	Time        *string           `json:"time"`
	Description *string           `json:"description"`
	Venues      []VenueInput      `json:"venues"`
}

type EventService interface {
	Create(ctx context.Context, userID string, input CreateEventInput) (*models.Event, error)
	List(ctx context.Context, userID string) ([]models.Event, error)
	// GetByID — публичное чтение, права не проверяются.
	GetByID(ctx context.Context, eventID string) (*models.Event, error)
	// GetByIDOwned — то же чтение, но с проверкой владельца; точка входа
	// для редактирования и удаления.
	GetByIDOwned(ctx context.Context, userID, eventID string) (*models.Event, error)
	Update(ctx context.Context, userID, eventID string, input UpdateEventInput) (*models.Event, error)
	Delete(ctx context.Context, userID, eventID string) error
	UploadBanner(ctx context.Context, userID, eventID, contentType string, file io.Reader) (*models.Event, error)
}

type eventService struct {
	db        repositories.TxStarter
	eventRepo repositories.EventRepository
	venueRepo repositories.VenueRepository
	uploader  storage.FileUploader
}

func NewEventService(
	db repositories.TxStarter,
	eventRepo repositories.EventRepository,
	venueRepo repositories.VenueRepository,
	uploader storage.FileUploader,
) EventService {
	return &eventService{
		db:        db,
		eventRepo: eventRepo,
		venueRepo: venueRepo,
		uploader:  uploader,
	}
}

func (s *eventService) Create(ctx context.Context, userID string, input CreateEventInput) (*models.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	v := validation.New()
	input.Name = strings.TrimSpace(input.Name)
	validateEventFields(v, input.Name, input.SportType, input.Date, input.Time, input.Description)
	validateVenues(v, input.Venues)
	if err := v.Err(); err != nil {
		return nil, err
	}

	event := &models.Event{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		SportType:   input.SportType,
		Date:        input.Date,
		Time:        input.Time,
		Description: derefString(input.Description),
	}

	// Событие и площадки пишутся одной транзакцией: событие без площадок
	// нарушало бы инвариант "минимум одна площадка".
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}
	event.Venues = buildVenues(event.ID, input.Venues)
	if err := s.venueRepo.InsertBatch(ctx, tx, event.Venues); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.populateBannerURL(event)
	return event, nil
}

// List возвращает события текущего пользователя, по дате по убыванию,
// с вложенными площадками.
func (s *eventService) List(ctx context.Context, userID string) ([]models.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	events, err := s.eventRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	venuesByEvent, err := s.venueRepo.ListByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		venues := venuesByEvent[events[i].ID]
		if venues == nil {
			venues = []models.Venue{}
		}
		events[i].Venues = venues
		s.populateBannerURL(&events[i])
	}
	return events, nil
}

func (s *eventService) GetByID(ctx context.Context, eventID string) (*models.Event, error) {
	var (
		event  *models.Event
		venues []models.Venue
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := s.eventRepo.GetByID(gCtx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		event = e
		return nil
	})
	g.Go(func() error {
		vs, err := s.venueRepo.ListByEvent(gCtx, eventID)
		if err != nil {
			return err
		}
		venues = vs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	event.Venues = venues
	s.populateBannerURL(event)
	return event, nil
}

func (s *eventService) GetByIDOwned(ctx context.Context, userID, eventID string) (*models.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	event, err := s.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, ErrNotEventOwner
	}
	return event, nil
}

func (s *eventService) Update(ctx context.Context, userID, eventID string, input UpdateEventInput) (*models.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	// Права проверяются отдельным чтением строки до любой записи.
	if err := s.checkOwnership(ctx, userID, eventID); err != nil {
		return nil, err
	}

	v := validation.New()
	if input.Name != nil {
		*input.Name = strings.TrimSpace(*input.Name)
		v.Check(*input.Name != "", "name", "Event name is required")
		v.Check(len(*input.Name) <= 255, "name", "Event name must be less than 255 characters")
	}
	if input.SportType != nil {
		v.Check(input.SportType.Valid(), "sport_type", "Invalid sport type")
	}
	if input.Date != nil {
		v.Check(validation.ValidDate(*input.Date), "date", "Invalid date format")
	}
	if input.Time != nil {
		v.Check(validation.ValidTime(*input.Time), "time", "Time must be in HH:MM format")
	}
	if input.Description != nil {
		v.Check(len(*input.Description) <= 1000, "description", "Description must be less than 1000 characters")
	}
	if input.Venues != nil {
		validateVenues(v, input.Venues)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		event.Name = *input.Name
	}
	if input.SportType != nil {
		event.SportType = *input.SportType
	}
	if input.Date != nil {
		event.Date = *input.Date
	}
	if input.Time != nil {
		event.Time = *input.Time
	}
	if input.Description != nil {
		event.Description = *input.Description
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.eventRepo.Update(ctx, tx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if input.Venues != nil {
		// Полная замена набора площадок: удалить всё, вставить заново.
		// Существующие строки не сливаются с новыми.
		if err := s.venueRepo.DeleteByEvent(ctx, tx, eventID); err != nil {
			return nil, err
		}
		event.Venues = buildVenues(eventID, input.Venues)
		if err := s.venueRepo.InsertBatch(ctx, tx, event.Venues); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if input.Venues == nil {
		venues, err := s.venueRepo.ListByEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		event.Venues = venues
	}
	s.populateBannerURL(event)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, userID, eventID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := s.checkOwnership(ctx, userID, eventID); err != nil {
		return err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil && !errors.Is(err, repositories.ErrEventNotFound) {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}

	// Баннер чистим в фоне от логики БД: событие уже удалено.
	if event != nil && event.BannerKey != nil && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *event.BannerKey)
	}
	return nil
}

func (s *eventService) UploadBanner(ctx context.Context, userID, eventID, contentType string, file io.Reader) (*models.Event, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}
	if err := s.checkOwnership(ctx, userID, eventID); err != nil {
		return nil, err
	}

	ext, ok := bannerExtensions[contentType]
	if !ok {
		return nil, ErrBannerInvalidType
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, 10<<20)); err != nil {
		return nil, fmt.Errorf("failed to read banner file: %w", err)
	}

	key := fmt.Sprintf("events/%s/banner%s", eventID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, &buf); err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateBannerKey(ctx, eventID, &key); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, eventID)
}

var bannerExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (s *eventService) checkOwnership(ctx context.Context, userID, eventID string) error {
	ownerID, err := s.eventRepo.GetOwnerID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	if ownerID != userID {
		return ErrNotEventOwner
	}
	return nil
}

func (s *eventService) populateBannerURL(event *models.Event) {
	if s.uploader == nil || event.BannerKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*event.BannerKey)
	if url != "" {
		event.BannerURL = &url
	}
}

func validateEventFields(v *validation.Validator, name string, sport models.SportType, date, timeStr string, description *string) {
	v.Check(name != "", "name", "Event name is required")
	v.Check(len(name) <= 255, "name", "Event name must be less than 255 characters")
	v.Check(sport.Valid(), "sport_type", "Invalid sport type")
	v.Check(date != "", "date", "Date is required")
	if date != "" {
		v.Check(validation.ValidDate(date), "date", "Invalid date format")
	}
	v.Check(validation.ValidTime(timeStr), "time", "Time must be in HH:MM format")
	if description != nil {
		v.Check(len(*description) <= 1000, "description", "Description must be less than 1000 characters")
	}
}

func validateVenues(v *validation.Validator, venues []VenueInput) {
	v.Check(len(venues) >= MinVenuesPerEvent, "venues", "At least one venue is required")
	v.Check(len(venues) <= MaxVenuesPerEvent, "venues", "Maximum 10 venues per event")

	for i := range venues {
		venues[i].Name = strings.TrimSpace(venues[i].Name)
		venues[i].Address = strings.TrimSpace(venues[i].Address)

		field := fmt.Sprintf("venues.%d", i)
		v.Check(venues[i].Name != "", field+".name", "Venue name is required")
		v.Check(len(venues[i].Name) <= 255, field+".name", "Venue name must be less than 255 characters")
		v.Check(venues[i].Address != "", field+".address", "Address is required")
		v.Check(len(venues[i].Address) <= 500, field+".address", "Address must be less than 500 characters")
		v.Check(venues[i].Capacity >= 1, field+".capacity", "Capacity must be at least 1")
		v.Check(venues[i].Capacity <= MaxVenueCapacity, field+".capacity", "Capacity must be less than 1,000,000")
	}
}

func buildVenues(eventID string, inputs []VenueInput) []models.Venue {
	venues := make([]models.Venue, 0, len(inputs))
	for _, in := range inputs {
		venues = append(venues, models.Venue{
			ID:       uuid.NewString(),
			EventID:  eventID,
			Name:     strings.TrimSpace(in.Name),
			Address:  strings.TrimSpace(in.Address),
			Capacity: int(in.Capacity),
		})
	}
	return venues
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
