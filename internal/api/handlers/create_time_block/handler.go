package create_time_block

import (
	"errors"
	"net/http"

	"github.com/m1rra/MassageBookingService/internal/api/handlers"
	"github.com/m1rra/MassageBookingService/internal/api/middleware"
	"github.com/m1rra/MassageBookingService/internal/service/schedule"
	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTimeBlock   = "некорректные параметры блокировки"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "доступ запрещен"
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

// Handle POST /api/v1/time-blocks
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /time-blocks - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateTimeBlockRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /time-blocks - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateTimeBlock(r.Context(), &models.CreateTimeBlockRequest{
		UserID:   userID,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		Type:     req.Type,
		Reason:   req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("POST /time-blocks - Access denied: user_id=%d", userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("POST /time-blocks - Invalid time block: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeBlock)

		default:
			h.logger.Error("POST /time-blocks - Failed to create time block: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /time-blocks - Time block created successfully: block_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
