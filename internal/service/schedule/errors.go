package schedule

import "errors"

var (
	// ErrTimeBlockNotFound возвращается, когда блокировка времени не найдена
	ErrTimeBlockNotFound = errors.New("time block not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
