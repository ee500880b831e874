package delete_time_block

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m1rra/MassageBookingService/internal/api/handlers"
	"github.com/m1rra/MassageBookingService/internal/api/middleware"
	"github.com/m1rra/MassageBookingService/internal/service/schedule"
)

const (
	msgInvalidBlockID = "некорректный ID блокировки"
	msgBlockNotFound  = "блокировка не найдена"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
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

// Handle DELETE /api/v1/time-blocks/{blockId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /time-blocks/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	vars := mux.Vars(r)
	blockID, err := strconv.ParseInt(vars["blockId"], 10, 64)
	if err != nil || blockID <= 0 {
		h.logger.Warn("DELETE /time-blocks/{id} - Invalid block ID: %s", vars["blockId"])
		handlers.RespondBadRequest(w, msgInvalidBlockID)
		return
	}

	if err := h.service.DeleteTimeBlock(r.Context(), blockID, userID); err != nil {
		switch {
		case errors.Is(err, schedule.ErrTimeBlockNotFound):
			h.logger.Warn("DELETE /time-blocks/{id} - Time block not found: block_id=%d", blockID)
			handlers.RespondNotFound(w, msgBlockNotFound)

		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /time-blocks/{id} - Access denied: block_id=%d, user_id=%d", blockID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /time-blocks/{id} - Failed to delete time block: block_id=%d, error=%v", blockID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /time-blocks/{id} - Time block deleted successfully: block_id=%d, user_id=%d", blockID, userID)
	w.WriteHeader(http.StatusNoContent)
}
