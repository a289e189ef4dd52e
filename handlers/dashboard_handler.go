package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sarsen13/event-management/actions"
	"github.com/Sarsen13/event-management/middleware"
	"github.com/Sarsen13/event-management/services"
)

type DashboardHandler struct {
	eventService services.EventService
	logger       *slog.Logger
}

func NewDashboardHandler(eventService services.EventService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// Dashboard обрабатывает GET /dashboard?search=&sport_type=.
// События пользователя загружаются один раз, оба фильтра применяются
// в памяти без дополнительных запросов.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	sportType := r.URL.Query().Get("sport_type")

	userID := middleware.UserIDFromContext(r.Context())
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (services.DashboardView, error) {
		events, err := h.eventService.List(ctx, userID)
		if err != nil {
			return services.DashboardView{}, err
		}
		return services.BuildDashboard(events, search, sportType), nil
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}
