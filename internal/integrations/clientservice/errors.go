package clientservice

import "errors"

var (
	// ErrProfileNotFound возвращается, когда профиль клиента не найден
	ErrProfileNotFound = errors.New("client profile not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("clientservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("clientservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation
	// Указывает, что сервис клиентов недоступен и запись создаётся
	// без денормализованных данных профиля
	ErrServiceDegraded = errors.New("clientservice unavailable: graceful degradation applied")
)
