package cache

import (
	"context"
	"time"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// Noop заглушка кеша для конфигураций без redis
// Доступность пересчитывается на каждый запрос
type Noop struct{}

// NewNoop создает заглушку кеша
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Get(ctx context.Context, date time.Time, durationMinutes int) ([]domain.TimeSlot, bool) {
	return nil, false
}

func (n *Noop) Set(ctx context.Context, date time.Time, durationMinutes int, slots []domain.TimeSlot) {
}

func (n *Noop) InvalidateDate(ctx context.Context, date time.Time) {}

func (n *Noop) InvalidateAll(ctx context.Context) {}
