package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Sarsen13/event-management/actions"
	"github.com/Sarsen13/event-management/services"
)

type SeedHandler struct {
	seedService *services.SeedService
	logger      *slog.Logger
}

func NewSeedHandler(seedService *services.SeedService, logger *slog.Logger) *SeedHandler {
	return &SeedHandler{
		seedService: seedService,
		logger:      logger,
	}
}

// Seed обрабатывает POST /testdata/seed. Повторный вызов сначала удаляет
// прежние события тестового пользователя, поэтому эндпоинт идемпотентен.
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	resp := actions.Execute(r.Context(), h.logger, func(ctx context.Context) (*services.SeedResult, error) {
		return h.seedService.Seed(ctx)
	})
	writeActionResponse(w, h.logger, resp, http.StatusOK)
}
