package domain

import (
	"time"

	"github.com/m1rra/MassageBookingService/pkg/types"
)

// BusinessHours рабочие часы студии на один день недели
// DayOfWeek: 0 = воскресенье ... 6 = суббота (совпадает с time.Weekday)
type BusinessHours struct {
	ID        int64
	DayOfWeek int
	OpenTime  *types.TimeString
	CloseTime *types.TimeString
	IsActive  bool
}

// IsOpen возвращает true, если в этот день студия работает
func (h *BusinessHours) IsOpen() bool {
	return h.IsActive && h.OpenTime != nil && h.CloseTime != nil
}

// BlockType тип ручной блокировки времени
type BlockType string

const (
	BlockVacation BlockType = "vacation"
	BlockBreak    BlockType = "break"
	BlockPersonal BlockType = "personal"
	BlockHoliday  BlockType = "holiday"
)

// IsValid проверяет, что тип блокировки известен
func (t BlockType) IsValid() bool {
	switch t {
	case BlockVacation, BlockBreak, BlockPersonal, BlockHoliday:
		return true
	}
	return false
}

// TimeBlock интервал, в котором запись невозможна независимо от рабочих часов
// Инвариант: StartsAt < EndsAt
type TimeBlock struct {
	ID        int64
	StartsAt  time.Time
	EndsAt    time.Time
	Type      BlockType
	Reason    *string
	CreatedAt time.Time
}

// Overlaps проверяет пересечение блокировки с интервалом [start, end)
// Полуоткрытые интервалы: касание границ пересечением не считается
func (b *TimeBlock) Overlaps(start, end time.Time) bool {
	return b.StartsAt.Before(end) && start.Before(b.EndsAt)
}
