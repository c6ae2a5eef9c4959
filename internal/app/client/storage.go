package client

import (
	"context"

	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
)

// Storage локальное хранилище устройства: CRUD по видам сущностей,
// поиск по естественным ключам и таблица маппинга идентификаторов.
type Storage interface {
	mapping.Repository

	Ping(ctx context.Context) error
	List(ctx context.Context, kind entity.Kind) ([]entity.Local, error)
	Get(ctx context.Context, kind entity.Kind, id int64) (entity.Local, error)
	Add(ctx context.Context, e entity.Local) (int64, error)
	Update(ctx context.Context, e entity.Local) error
	Delete(ctx context.Context, kind entity.Kind, id int64) error
	Count(ctx context.Context, kind entity.Kind) (int, error)

	// Поиск кандидатов по естественному ключу, в порядке возрастания id
	FindClientsByPhone(ctx context.Context, phoneKey string) ([]*entity.Client, error)
	FindTemplates(ctx context.Context, name, message string) ([]*entity.Template, error)
	FindSales(ctx context.Context, clientID int64, total float64, from, to int64) ([]*entity.Sale, error)

	// Wipe удаляет все данные, включая маппинги
	Wipe(ctx context.Context) error
	Close() error
}
