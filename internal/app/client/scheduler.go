package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultAutoSyncInterval интервал автоматической загрузки по умолчанию
const DefaultAutoSyncInterval = 5 * time.Minute

// autoSync владеет фоновым циклом: функция отмены и канал завершения
type autoSync struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// StartAutoSync запускает автоматическую загрузку с сервера. Отправка
// автоматически не выполняется. Повторный запуск останавливает предыдущий цикл.
func (s *SyncService) StartAutoSync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultAutoSyncInterval
	}

	s.auto.mu.Lock()
	defer s.auto.mu.Unlock()

	s.auto.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.auto.cancel = cancel
	s.auto.done = done

	s.log.Info("Запуск автоматической синхронизации", "interval", interval)
	go s.autoSyncLoop(loopCtx, interval, done)
}

// StopAutoSync останавливает цикл и ждет его завершения. После возврата
// ни одна итерация уже не начнется.
func (s *SyncService) StopAutoSync() {
	s.auto.mu.Lock()
	defer s.auto.mu.Unlock()

	s.auto.stopLocked()
}

// AutoSyncRunning сообщает, запущен ли фоновый цикл
func (s *SyncService) AutoSyncRunning() bool {
	s.auto.mu.Lock()
	defer s.auto.mu.Unlock()

	if s.auto.done == nil {
		return false
	}
	select {
	case <-s.auto.done:
		return false
	default:
		return true
	}
}

func (a *autoSync) stopLocked() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil
	a.done = nil
}

func (s *SyncService) autoSyncLoop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Автоматическая синхронизация остановлена")
			return
		case <-ticker.C:
			// select не гарантирует порядок, отмена важнее тика
			if ctx.Err() != nil {
				return
			}
			s.autoSyncTick(ctx)
		}
	}
}

func (s *SyncService) autoSyncTick(ctx context.Context) {
	if !s.authenticated() || s.IsSyncing() {
		return
	}

	_, err := s.SyncFromServer(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrOffline), errors.Is(err, ErrSyncInProgress), errors.Is(err, ErrNotAuthenticated):
		s.log.Debug("Автоматическая синхронизация пропущена", "reason", err)
	case errors.Is(err, context.Canceled):
	default:
		s.log.Error("Ошибка автоматической синхронизации", "error", err)
	}
}
