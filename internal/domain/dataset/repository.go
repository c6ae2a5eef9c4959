package dataset

import (
	"context"
)

// Repository хранилище датасетов. Upsert перезаписывает запись с тем же
// (kind, remote_id), List возвращает все записи пользователя.
type Repository interface {
	Upsert(ctx context.Context, userID int, records []Record) error
	List(ctx context.Context, userID int) ([]Record, error)
}
