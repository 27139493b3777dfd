package worker

import (
	"context"
)

// Worker - общий контракт фоновых процессов сервиса
type Worker interface {
	// Start запускает цикл воркера и блокируется до остановки
	Start(ctx context.Context) error

	// Stop сигнализирует воркеру о завершении
	Stop() error

	// Name возвращает имя воркера для логов
	Name() string
}
