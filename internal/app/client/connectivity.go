package client

import (
	"context"
	"net"
	"time"

	"golang.org/x/exp/slog"
)

const defaultHealthTimeout = 5 * time.Second

// HealthChecker — запрос /health к серверу
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Probe проверяет сетевую доступность сервера и его ответ на /health.
// Результат не кэшируется.
type Probe struct {
	addr    string
	health  HealthChecker
	timeout time.Duration
	dialer  *net.Dialer
	log     *slog.Logger
}

func NewProbe(serverAddress string, health HealthChecker, timeout time.Duration, log *slog.Logger) *Probe {
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	return &Probe{
		addr:    serverAddress,
		health:  health,
		timeout: timeout,
		dialer:  &net.Dialer{},
		log:     log.With("component", "probe"),
	}
}

// IsOnline возвращает true только если TCP-соединение установлено и
// /health ответил 2xx в пределах таймаута
func (p *Probe) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		p.log.Debug("Сервер недоступен по сети", "addr", p.addr, "error", err)
		return false
	}
	conn.Close()

	if err := p.health.HealthCheck(ctx); err != nil {
		p.log.Debug("Проверка /health не пройдена", "error", err)
		return false
	}

	return true
}
