// Package memory хранит пользователей и датасеты в памяти процесса.
// Используется сервером без DATABASE_URI и в тестах.
package memory

import (
	"context"
	"sync"
	"time"

	"salesync/internal/domain/dataset"
	"salesync/internal/domain/entity"
	"salesync/internal/domain/user"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int
	byName map[string]user.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byName: make(map[string]user.User)}
}

func (r *UserRepository) Create(_ context.Context, login, passwordHash string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[login]; ok {
		return 0, user.ErrAlreadyExists
	}
	r.nextID++
	r.byName[login] = user.User{
		ID:        r.nextID,
		Login:     login,
		Password:  passwordHash,
		CreatedAt: time.Now(),
	}
	return r.nextID, nil
}

func (r *UserRepository) FindByLogin(_ context.Context, login string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byName[login]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type recordKey struct {
	kind     entity.Kind
	remoteID string
}

type userData struct {
	order   []recordKey
	records map[recordKey]dataset.Record
}

type DatasetRepository struct {
	mu    sync.RWMutex
	users map[int]*userData
}

func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{users: make(map[int]*userData)}
}

func (r *DatasetRepository) Upsert(_ context.Context, userID int, records []dataset.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.users[userID]
	if !ok {
		data = &userData{records: make(map[recordKey]dataset.Record)}
		r.users[userID] = data
	}

	now := time.Now()
	for _, rec := range records {
		key := recordKey{kind: rec.Kind, remoteID: rec.RemoteID}
		if _, exists := data.records[key]; !exists {
			data.order = append(data.order, key)
		}
		rec.Payload = append([]byte(nil), rec.Payload...)
		rec.UpdatedAt = now
		data.records[key] = rec
	}
	return nil
}

// List возвращает записи в порядке первой вставки
func (r *DatasetRepository) List(_ context.Context, userID int) ([]dataset.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.users[userID]
	if !ok {
		return nil, nil
	}
	out := make([]dataset.Record, 0, len(data.order))
	for _, key := range data.order {
		out = append(out, data.records[key])
	}
	return out, nil
}
