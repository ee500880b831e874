package create_time_block

import (
	"context"

	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	CreateTimeBlock(ctx context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
