package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Sarsen13/event-management/actions"
	"github.com/Sarsen13/event-management/middleware"
	"github.com/Sarsen13/event-management/models"
	"github.com/Sarsen13/event-management/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EventHandler struct {
	eventService services.EventService
	logger       *slog.Logger
}

func NewEventHandler(eventService services.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

type eventData struct {
	Event *models.Event `json:"event"`
}

// Create обрабатывает POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest[eventData](w, h.logger, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventData, error) {
		event, err := h.eventService.Create(ctx, userID, input)
		if err != nil {
			return eventData{}, err
		}
		return eventData{Event: event}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusCreated)
}

type eventListData struct {
	Events []models.Event `json:"events"`
}

// List обрабатывает GET /events — только события текущего пользователя.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventListData, error) {
		events, err := h.eventService.List(ctx, userID)
		if err != nil {
			return eventListData{}, err
		}
		return eventListData{Events: events}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// GetByID обрабатывает GET /events/{eventID}. Просмотр публичный.
func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		writeActionResponse(w, h.logger, actions.Failure[eventData](services.ErrEventNotFound), http.StatusOK)
		return
	}

	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventData, error) {
		event, err := h.eventService.GetByID(ctx, eventID)
		if err != nil {
			return eventData{}, err
		}
		return eventData{Event: event}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// GetOwned обрабатывает GET /events/{eventID}/manage — то же чтение, но
// с проверкой владельца; точка входа на редактирование и удаление.
func (h *EventHandler) GetOwned(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		writeActionResponse(w, h.logger, actions.Failure[eventData](services.ErrEventNotFound), http.StatusOK)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventData, error) {
		event, err := h.eventService.GetByIDOwned(ctx, userID, eventID)
		if err != nil {
			return eventData{}, err
		}
		return eventData{Event: event}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// Update обрабатывает PUT /events/{eventID}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		writeActionResponse(w, h.logger, actions.Failure[eventData](services.ErrEventNotFound), http.StatusOK)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequest[eventData](w, h.logger, err)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventData, error) {
		event, err := h.eventService.Update(ctx, userID, eventID, input)
		if err != nil {
			return eventData{}, err
		}
		return eventData{Event: event}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// Delete обрабатывает DELETE /events/{eventID}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		writeActionResponse(w, h.logger, actions.Failure[messageData](services.ErrEventNotFound), http.StatusOK)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (messageData, error) {
		if err := h.eventService.Delete(ctx, userID, eventID); err != nil {
			return messageData{}, err
		}
		return messageData{Message: "Event deleted successfully"}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

// UploadBanner обрабатывает POST /events/{eventID}/banner (multipart).
func (h *EventHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromURL(r)
	if err != nil {
		writeActionResponse(w, h.logger, actions.Failure[eventData](services.ErrEventNotFound), http.StatusOK)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		badRequest[eventData](w, h.logger, errors.New("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("banner")
	if err != nil {
		badRequest[eventData](w, h.logger, errors.New("banner file is required"))
		return
	}
	defer file.Close()

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (eventData, error) {
		event, err := h.eventService.UploadBanner(ctx, userID, eventID, header.Header.Get("Content-Type"), file)
		if err != nil {
			return eventData{}, err
		}
		return eventData{Event: event}, nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}

type sportTypesData struct {
	SportTypes []models.SportType `json:"sport_types"`
}

// SportTypes обрабатывает GET /sports — закрытый список видов спорта
// для формы и фильтра.
func (h *EventHandler) SportTypes(w http.ResponseWriter, r *http.Request) {
	writeActionResponse(w, h.logger, actions.Success(sportTypesData{SportTypes: models.SportTypes}), http.StatusOK)
}

func eventIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "eventID")
	if err := uuid.Validate(id); err != nil {
		return "", err
	}
	return id, nil
}
