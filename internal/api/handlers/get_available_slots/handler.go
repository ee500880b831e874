package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m1rra/MassageBookingService/internal/api/handlers"
	"github.com/m1rra/MassageBookingService/internal/domain"
	getAvailableSlots "github.com/m1rra/MassageBookingService/internal/usecase/get_available_slots"
)

const (
	msgMissingDate         = "дата обязательна"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingDuration     = "длительность услуги обязательна"
	msgInvalidDuration     = "некорректная длительность услуги"
	msgProviderUnavailable = "сервис временно недоступен, попробуйте позже"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (required, YYYY-MM-DD), durationMinutes (required)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Извлекаем durationMinutes из query параметров
	durationStr := r.URL.Query().Get("durationMinutes")
	if durationStr == "" {
		h.logger.Warn("GET /availability - Missing duration")
		handlers.RespondBadRequest(w, msgMissingDuration)
		return
	}

	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid duration: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), getAvailableSlots.Request{
		Date:                   date,
		ServiceDurationMinutes: duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: date=%s, duration=%d, error=%v", dateStr, duration, err)
			handlers.RespondBadRequest(w, msgInvalidDuration)

		case errors.Is(err, getAvailableSlots.ErrProviderUnavailable):
			h.logger.Error("GET /availability - Provider unavailable: date=%s, error=%v", dateStr, err)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgProviderUnavailable)

		default:
			h.logger.Error("GET /availability - Failed to get slots: date=%s, duration=%d, error=%v", dateStr, duration, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /availability - Slots retrieved successfully: date=%s, duration=%d, slots_count=%d",
		dateStr, duration, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
