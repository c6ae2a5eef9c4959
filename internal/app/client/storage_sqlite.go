package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"salesync/internal/domain/entity"
	"salesync/internal/domain/mapping"
	"salesync/internal/infrastructure/migration"
)

var tableByKind = map[entity.Kind]string{
	entity.KindClient:   "clients",
	entity.KindSale:     "sales",
	entity.KindPayment:  "payments",
	entity.KindProduct:  "products",
	entity.KindTemplate: "templates",
	entity.KindGoal:     "goals",
	entity.KindExpense:  "expenses",
	entity.KindReminder: "reminders",
}

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Схема создается миграциями до открытия рабочего соединения
	if err := migration.SQLite(path).Up(); err != nil {
		return nil, fmt.Errorf("ошибка миграции базы данных: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStorage) List(ctx context.Context, kind entity.Kind) ([]entity.Local, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, payload FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, storeErr(fmt.Errorf("ошибка выполнения запроса: %w", err))
	}
	defer rows.Close()

	var out []entity.Local
	for rows.Next() {
		e, err := scanEntity(rows, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	return out, nil
}

func (s *SQLiteStorage) Get(ctx context.Context, kind entity.Kind, id int64) (entity.Local, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT id, payload FROM "+table+" WHERE id = ?", id)
	e, err := scanEntity(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s #%d", entity.ErrNotFound, kind, id)
	}
	return e, err
}

func (s *SQLiteStorage) Add(ctx context.Context, e entity.Local) (int64, error) {
	table, err := tableFor(e.Kind())
	if err != nil {
		return 0, err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	cols, vals := naturalKey(e)
	cols = append([]string{"payload"}, cols...)
	vals = append([]any{string(payload)}, vals...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	res, err := s.db.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, storeErr(fmt.Errorf("ошибка сохранения записи: %w", err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr(err)
	}
	e.SetLocalID(id)

	return id, nil
}

func (s *SQLiteStorage) Update(ctx context.Context, e entity.Local) error {
	table, err := tableFor(e.Kind())
	if err != nil {
		return err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	cols, vals := naturalKey(e)
	set := "payload = ?, updated_at = CURRENT_TIMESTAMP"
	for _, c := range cols {
		set += ", " + c + " = ?"
	}
	args := append([]any{string(payload)}, vals...)
	args = append(args, e.LocalID())

	res, err := s.db.ExecContext(ctx, "UPDATE "+table+" SET "+set+" WHERE id = ?", args...)
	if err != nil {
		return storeErr(fmt.Errorf("ошибка обновления записи: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s #%d", entity.ErrNotFound, e.Kind(), e.LocalID())
	}

	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, kind entity.Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return storeErr(fmt.Errorf("ошибка удаления записи: %w", err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s #%d", entity.ErrNotFound, kind, id)
	}

	return nil
}

func (s *SQLiteStorage) Count(ctx context.Context, kind entity.Kind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, storeErr(fmt.Errorf("ошибка подсчета записей: %w", err))
	}

	return count, nil
}

func (s *SQLiteStorage) FindClientsByPhone(ctx context.Context, phoneKey string) ([]*entity.Client, error) {
	if phoneKey == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM clients WHERE phone_key = ? ORDER BY id", phoneKey)
	if err != nil {
		return nil, storeErr(err)
	}
	return collect[*entity.Client](rows, entity.KindClient)
}

func (s *SQLiteStorage) FindTemplates(ctx context.Context, name, message string) ([]*entity.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, payload FROM templates WHERE name = ? AND message = ? ORDER BY id", name, message)
	if err != nil {
		return nil, storeErr(err)
	}
	return collect[*entity.Template](rows, entity.KindTemplate)
}

func (s *SQLiteStorage) FindSales(ctx context.Context, clientID int64, total float64, from, to int64) ([]*entity.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload FROM sales
		WHERE client_id = ? AND total = ? AND sold_at > ? AND sold_at < ?
		ORDER BY id
	`, clientID, total, from, to)
	if err != nil {
		return nil, storeErr(err)
	}
	return collect[*entity.Sale](rows, entity.KindSale)
}

func (s *SQLiteStorage) SaveMapping(ctx context.Context, m mapping.Mapping) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	// Локальная строка может быть привязана только к одному удаленному id
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM id_mappings WHERE kind = ? AND local_id = ? AND remote_id != ?`,
		m.Kind, m.LocalID, m.RemoteID); err != nil {
		return storeErr(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO id_mappings (kind, remote_id, local_id) VALUES (?, ?, ?)
		ON CONFLICT (kind, remote_id) DO UPDATE SET local_id = excluded.local_id
	`, m.Kind, m.RemoteID, m.LocalID); err != nil {
		return storeErr(err)
	}

	return storeErr(tx.Commit())
}

func (s *SQLiteStorage) LocalIDFor(ctx context.Context, kind entity.Kind, remoteID string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT local_id FROM id_mappings WHERE kind = ? AND remote_id = ?`, kind, remoteID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, mapping.ErrNotFound
	}
	return id, storeErr(err)
}

func (s *SQLiteStorage) RemoteIDFor(ctx context.Context, kind entity.Kind, localID int64) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT remote_id FROM id_mappings WHERE kind = ? AND local_id = ?`, kind, localID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", mapping.ErrNotFound
	}
	return id, storeErr(err)
}

func (s *SQLiteStorage) ListMappings(ctx context.Context) ([]mapping.Mapping, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, remote_id, local_id FROM id_mappings`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []mapping.Mapping
	for rows.Next() {
		var m mapping.Mapping
		if err := rows.Scan(&m.Kind, &m.RemoteID, &m.LocalID); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, m)
	}

	return out, storeErr(rows.Err())
}

func (s *SQLiteStorage) Wipe(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(err)
	}
	defer tx.Rollback()

	// sqlite_sequence не сбрасываем: локальные id не переиспользуются
	for _, kind := range entity.DownloadOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+tableByKind[kind]); err != nil {
			return storeErr(fmt.Errorf("ошибка очистки %s: %w", kind, err))
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM id_mappings"); err != nil {
		return storeErr(err)
	}

	return storeErr(tx.Commit())
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func tableFor(kind entity.Kind) (string, error) {
	table, ok := tableByKind[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", entity.ErrUnknownKind, kind)
	}
	return table, nil
}

// naturalKey возвращает дополнительные индексируемые колонки сущности
func naturalKey(e entity.Local) ([]string, []any) {
	switch v := e.(type) {
	case *entity.Client:
		return []string{"phone_key"}, []any{entity.NormalizePhone(v.Telephone)}
	case *entity.Template:
		return []string{"name", "message"}, []any{v.Name, v.Message}
	case *entity.Sale:
		return []string{"client_id", "total", "sold_at"}, []any{v.ClientID, v.Total, v.Date}
	}
	return nil, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner, kind entity.Kind) (entity.Local, error) {
	var (
		id      int64
		payload string
	)
	if err := row.Scan(&id, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, storeErr(fmt.Errorf("ошибка сканирования записи: %w", err))
	}

	e, err := entity.NewLocal(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), e); err != nil {
		return nil, fmt.Errorf("ошибка парсинга записи %s #%d: %w", kind, id, err)
	}
	e.SetLocalID(id)

	return e, nil
}

func collect[T entity.Local](rows *sql.Rows, kind entity.Kind) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		e, err := scanEntity(rows, kind)
		if err != nil {
			return nil, err
		}
		typed, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %s", entity.ErrKindMismatch, kind)
		}
		out = append(out, typed)
	}

	return out, storeErr(rows.Err())
}

// storeErr помечает ошибки, при которых хранилище непригодно для работы
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrCantOpen, sqlite3.ErrIoErr, sqlite3.ErrCorrupt, sqlite3.ErrNotADB, sqlite3.ErrFull, sqlite3.ErrReadonly:
			return true
		}
	}
	return false
}
