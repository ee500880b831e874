package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m1rra/MassageBookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// keyPrefix префикс всех ключей кеша доступности
const keyPrefix = "availability:"

// AvailabilityCache короткоживущий кеш результатов расчёта доступности
// в redis. Ключ - дата + длительность услуги.
//
// Кеширование здесь - оптимизация, а не требование корректности:
// любая ошибка redis трактуется как промах, расчёт выполняется заново.
// TTL секунды, а не минуты: устаревшая выдача напрямую ведёт к риску
// предложить уже занятый слот. Мутации записей и блокировок инвалидируют
// ключи затронутой даты
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    Logger
}

// cachedSlot сериализованное представление слота в кеше
type cachedSlot struct {
	StartsAt  time.Time `json:"startsAt"`
	EndsAt    time.Time `json:"endsAt"`
	Available bool      `json:"available"`
}

// New создает кеш доступности поверх redis клиента
func New(client *redis.Client, ttl time.Duration, log Logger) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get возвращает закешированные слоты на дату и длительность
// Второе значение false - промах (или ошибка redis, что равнозначно промаху)
func (c *AvailabilityCache) Get(ctx context.Context, date time.Time, durationMinutes int) ([]domain.TimeSlot, bool) {
	raw, err := c.client.Get(ctx, c.key(date, durationMinutes)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("AvailabilityCache: get failed, treating as miss: %v", err)
		return nil, false
	}

	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.Warn("AvailabilityCache: failed to decode cached value, treating as miss: %v", err)
		return nil, false
	}

	slots := make([]domain.TimeSlot, len(cached))
	for i, s := range cached {
		slots[i] = domain.TimeSlot{StartsAt: s.StartsAt, EndsAt: s.EndsAt, Available: s.Available}
	}
	return slots, true
}

// Set сохраняет слоты на дату и длительность с коротким TTL
func (c *AvailabilityCache) Set(ctx context.Context, date time.Time, durationMinutes int, slots []domain.TimeSlot) {
	cached := make([]cachedSlot, len(slots))
	for i, s := range slots {
		cached[i] = cachedSlot{StartsAt: s.StartsAt, EndsAt: s.EndsAt, Available: s.Available}
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		c.log.Warn("AvailabilityCache: failed to encode slots: %v", err)
		return
	}

	if err := c.client.Set(ctx, c.key(date, durationMinutes), raw, c.ttl).Err(); err != nil {
		c.log.Warn("AvailabilityCache: set failed: %v", err)
	}
}

// InvalidateDate удаляет все ключи кеша на указанную дату
// Вызывается при создании/отмене записи и изменении блокировок этой даты
func (c *AvailabilityCache) InvalidateDate(ctx context.Context, date time.Time) {
	c.deleteByPattern(ctx, fmt.Sprintf("%s%s:*", keyPrefix, date.Format(dateKeyFormat)))
}

// InvalidateAll удаляет весь кеш доступности
// Вызывается при изменении рабочих часов или настроек бронирования
func (c *AvailabilityCache) InvalidateAll(ctx context.Context) {
	c.deleteByPattern(ctx, keyPrefix+"*")
}

const dateKeyFormat = "2006-01-02"

func (c *AvailabilityCache) key(date time.Time, durationMinutes int) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, date.Format(dateKeyFormat), durationMinutes)
}

func (c *AvailabilityCache) deleteByPattern(ctx context.Context, pattern string) {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("AvailabilityCache: scan %s failed: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("AvailabilityCache: delete %d keys failed: %v", len(keys), err)
	}
}
