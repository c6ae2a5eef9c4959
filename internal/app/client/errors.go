package client

import (
	"errors"
	"fmt"

	"salesync/internal/app/client/translate"
	"salesync/internal/domain/entity"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrOffline          = errors.New("server unreachable")
	ErrSyncInProgress   = errors.New("sync already in progress")
	ErrStoreUnavailable = errors.New("local store unavailable")
)

// TransportError сетевая ошибка или таймаут при обращении к серверу
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError ответ сервера с кодом вне диапазона 2xx
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Message)
}

// StoreError ошибка локального хранилища при записи сущности или маппинга
type StoreError struct {
	Kind entity.Kind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// TranslationError неразрешенная ссылка на родителя или некорректное поле
type TranslationError = translate.Error
