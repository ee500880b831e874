package get_time_blocks

import (
	"errors"
	"net/http"
	"time"

	"github.com/m1rra/MassageBookingService/internal/api/handlers"
	"github.com/m1rra/MassageBookingService/internal/service/schedule"
	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

const (
	msgMissingPeriod = "параметры startDate и endDate обязательны"
	msgInvalidPeriod = "некорректный период"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/time-blocks?startDate=...&endDate=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")
	if startParam == "" || endParam == "" {
		h.logger.Warn("GET /time-blocks - Missing period parameters")
		handlers.RespondBadRequest(w, msgMissingPeriod)
		return
	}

	from, err := time.Parse(time.RFC3339, startParam)
	if err != nil {
		h.logger.Warn("GET /time-blocks - Invalid startDate: %s", startParam)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	to, err := time.Parse(time.RFC3339, endParam)
	if err != nil {
		h.logger.Warn("GET /time-blocks - Invalid endDate: %s", endParam)
		handlers.RespondBadRequest(w, msgInvalidPeriod)
		return
	}

	result, err := h.service.GetTimeBlocks(r.Context(), &models.GetTimeBlocksRequest{
		From: from,
		To:   to,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("GET /time-blocks - Invalid period: from=%s, to=%s", startParam, endParam)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		default:
			h.logger.Error("GET /time-blocks - Failed to get time blocks: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /time-blocks - Time blocks retrieved successfully: count=%d", len(result.TimeBlocks))
	handlers.RespondJSON(w, http.StatusOK, result)
}
