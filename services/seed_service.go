package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	seedUserEmail    = "test@example.com"
	seedUserPassword = "Test@12345"
)

// SeedService наполняет БД фиксированным тестовым набором. Идемпотентность
// достигается удалением: прежние события тестового пользователя сносятся
// перед вставкой.
type SeedService struct {
	enabled      bool
	userRepo     repositories.UserRepository
	eventRepo    repositories.EventRepository
	eventService EventService
}

func NewSeedService(
	enabled bool,
	userRepo repositories.UserRepository,
	eventRepo repositories.EventRepository,
	eventService EventService,
) *SeedService {
	return &SeedService{
		enabled:      enabled,
		userRepo:     userRepo,
		eventRepo:    eventRepo,
		eventService: eventService,
	}
}

type SeedResult struct {
	UserID      string `json:"user_id"`
	EventsAdded int    `json:"events_added"`
}

func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	if !s.enabled {
		return nil, ErrSeedingDisabled
	}

	user, err := s.ensureTestUser(ctx)
	if err != nil {
		return nil, err
	}

	// Удаляем прежние тестовые события (площадки уйдут каскадом).
	existing, err := s.eventRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if err := s.eventRepo.Delete(ctx, e.ID); err != nil {
			return nil, err
		}
	}

	for _, input := range seedEvents() {
		if _, err := s.eventService.Create(ctx, user.ID, input); err != nil {
			return nil, fmt.Errorf("failed to seed event %q: %w", input.Name, err)
		}
	}

	return &SeedResult{UserID: user.ID, EventsAdded: len(seedEvents())}, nil
}

func (s *SeedService) ensureTestUser(ctx context.Context) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, seedUserEmail)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seedUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)
	user = &models.User{
		ID:             uuid.NewString(),
		Email:          seedUserEmail,
		PasswordHash:   &hash,
		EmailConfirmed: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func seedEvents() []CreateEventInput {
	venue := []VenueInput{{Name: "Central Park", Address: "123 Main St, New York, NY 10001", Capacity: 500}}
	return []CreateEventInput{
		{Name: "Morning Soccer Match", SportType: models.SportSoccer, Date: "2025-12-15", Time: "09:00", Venues: venue},
		{Name: "Afternoon Basketball Game", SportType: models.SportBasketball, Date: "2025-12-16", Time: "14:00", Venues: venue},
		{Name: "Evening Tennis Tournament", SportType: models.SportTennis, Date: "2025-12-17", Time: "18:00", Venues: venue},
	}
}
