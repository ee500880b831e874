package get_time_blocks

import (
	"context"

	"github.com/m1rra/MassageBookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	GetTimeBlocks(ctx context.Context, req *models.GetTimeBlocksRequest) (*models.TimeBlockListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
