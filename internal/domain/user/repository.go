package user

import (
	"context"
)

// Repository хранилище пользователей. Create возвращает ErrAlreadyExists
// для занятого логина, FindByLogin — ErrNotFound для неизвестного.
type Repository interface {
	Create(ctx context.Context, login, passwordHash string) (int, error)
	FindByLogin(ctx context.Context, login string) (User, error)
}
