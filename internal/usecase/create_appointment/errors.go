package create_appointment

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_appointment: service not found")

	// ErrServiceInactive возвращается, когда услуга выведена из каталога
	ErrServiceInactive = errors.New("create_appointment: service is not active")

	// ErrInvalidDate возвращается при попытке записи на прошедшую дату
	ErrInvalidDate = errors.New("create_appointment: invalid appointment date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает горизонт бронирования
	ErrDateTooFarInFuture = errors.New("create_appointment: date is too far in the future")

	// ErrStudioClosed возвращается, когда студия закрыта в указанную дату
	ErrStudioClosed = errors.New("create_appointment: studio is closed on this date")

	// ErrOutsideBusinessHours возвращается, когда сеанс не помещается в рабочие часы
	ErrOutsideBusinessHours = errors.New("create_appointment: appointment does not fit within business hours")

	// ErrSlotNotAvailable возвращается, когда время пересекается с другой записью
	// или блокировкой
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrTooLateToBook возвращается при нарушении минимального времени уведомления
	ErrTooLateToBook = errors.New("create_appointment: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
