package domain

import "time"

// TimeSlot кандидат слота в выдаче доступности
// Недоступные слоты не выбрасываются из результата: клиентский календарь
// показывает их занятыми, отличая "всё занято" от "студия закрыта"
type TimeSlot struct {
	StartsAt  time.Time
	EndsAt    time.Time
	Available bool
}

// Duration возвращает длительность слота
func (s *TimeSlot) Duration() time.Duration {
	return s.EndsAt.Sub(s.StartsAt)
}

// Overlaps проверяет пересечение слота с интервалом [start, end)
// Полуоткрытая семантика: слот, заканчивающийся ровно в start, не пересекается
func (s *TimeSlot) Overlaps(start, end time.Time) bool {
	return s.StartsAt.Before(end) && start.Before(s.EndsAt)
}
