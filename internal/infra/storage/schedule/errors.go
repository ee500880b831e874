package schedule

import "errors"

var (
	// ErrSettingsNotFound возвращается, когда настройки ещё не сохранены
	ErrSettingsNotFound = errors.New("schedule.repository: settings not found")

	// ErrTimeBlockNotFound возвращается, когда блокировка времени не найдена
	ErrTimeBlockNotFound = errors.New("schedule.repository: time block not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
