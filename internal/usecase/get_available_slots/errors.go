package get_available_slots

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	// (неположительная длительность, нулевая дата)
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrProviderUnavailable возвращается, когда один из источников данных
	// (рабочие часы, блокировки, записи, настройки) недоступен
	// Частичный результат не возвращается: расчёт без данных о занятости
	// молча предложил бы уже занятые слоты
	ErrProviderUnavailable = errors.New("get_available_slots: provider unavailable")
)
