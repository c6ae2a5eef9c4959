package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"salesync/internal/app/client/config"
	"salesync/internal/domain/entity"
)

type App struct {
	config      *config.Config
	log         *slog.Logger
	httpClient  *httpClient
	credentials *FileCredentials
	storage     Storage
	state       *StateStore
	probe       *Probe
	syncService *SyncService
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	credentials := NewFileCredentials(cfg.TokenPath)
	httpCl := NewHTTPClient(cfg.ServerAddress, cfg.EnableTLS, credentials, log)

	// Инициализируем локальное хранилище (используем SQLite)
	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		log.Warn("Не удалось инициализировать SQLite, используем память", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	state := NewStateStore()
	probe := NewProbe(cfg.ServerAddress, httpCl, cfg.HealthTimeoutDuration(), log)

	app := &App{
		config:      cfg,
		log:         log,
		httpClient:  httpCl,
		credentials: credentials,
		storage:     storage,
		state:       state,
		probe:       probe,
		syncService: NewSyncService(storage, httpCl, credentials, probe, state, log),
	}

	if app.IsAuthenticated() {
		log.Debug("Токен загружен из файла")
	}

	return app, nil
}

// Run запускает автосинхронизацию и блокируется до сигнала завершения или отмены ctx
func (a *App) Run(ctx context.Context) error {
	return a.RunWithInterval(ctx, a.config.SyncIntervalDuration())
}

// RunWithInterval как Run, но с явным интервалом автосинхронизации
func (a *App) RunWithInterval(ctx context.Context, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a.syncService.StartAutoSync(ctx, interval)
	a.log.Info("Клиент запущен",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"interval", interval,
	)

	<-ctx.Done()
	a.syncService.StopAutoSync()

	return nil
}

// Shutdown останавливает фоновые задачи и закрывает хранилище
func (a *App) Shutdown() error {
	a.log.Info("Завершение работы клиента...")
	a.syncService.StopAutoSync()
	return a.storage.Close()
}

// IsAuthenticated проверяет, аутентифицирован ли пользователь
func (a *App) IsAuthenticated() bool {
	_, ok := a.credentials.Token()
	return ok
}

// CheckConnection проверяет соединение с сервером
func (a *App) CheckConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.config.HealthTimeoutDuration())
	defer cancel()

	return a.httpClient.HealthCheck(ctx)
}

// IsOnline — сеть и /health
func (a *App) IsOnline(ctx context.Context) bool {
	return a.probe.IsOnline(ctx)
}

func (a *App) Register(ctx context.Context, login, password string) error {
	if err := a.httpClient.Register(ctx, login, password); err != nil {
		return fmt.Errorf("ошибка регистрации: %w", err)
	}
	return nil
}

// Login выполняет вход и сохраняет токен
func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.httpClient.Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("ошибка входа: %w", err)
	}
	return a.credentials.Save(token)
}

// Logout удаляет токен; локальные данные остаются
func (a *App) Logout() error {
	return a.credentials.Clear()
}

// Add сохраняет новую локальную сущность и отмечает несинхронизированное изменение
func (a *App) Add(ctx context.Context, e entity.Local) (int64, error) {
	if err := a.checkRefs(ctx, e); err != nil {
		return 0, err
	}
	id, err := a.storage.Add(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения %s: %w", e.Kind(), err)
	}
	a.state.MarkPendingChange()
	return id, nil
}

// Update перезаписывает локальную сущность
func (a *App) Update(ctx context.Context, e entity.Local) error {
	if err := a.checkRefs(ctx, e); err != nil {
		return err
	}
	if err := a.storage.Update(ctx, e); err != nil {
		return fmt.Errorf("ошибка обновления %s: %w", e.Kind(), err)
	}
	a.state.MarkPendingChange()
	return nil
}

// Delete удаляет локальную сущность. Маппинг остается до полной очистки.
// Родителя, на которого еще ссылаются продажи, платежи или напоминания,
// удалить нельзя.
func (a *App) Delete(ctx context.Context, kind entity.Kind, id int64) error {
	if err := a.checkChildren(ctx, kind, id); err != nil {
		return err
	}
	if err := a.storage.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("ошибка удаления %s: %w", kind, err)
	}
	a.state.MarkPendingChange()
	return nil
}

func (a *App) AddClient(ctx context.Context, c *entity.Client) (int64, error) {
	return a.Add(ctx, c)
}

func (a *App) AddSale(ctx context.Context, s *entity.Sale) (int64, error) {
	if s.Date == 0 {
		s.Date = time.Now().UnixMilli()
	}
	return a.Add(ctx, s)
}

func (a *App) AddPayment(ctx context.Context, p *entity.Payment) (int64, error) {
	if p.Date == 0 {
		p.Date = time.Now().UnixMilli()
	}
	return a.Add(ctx, p)
}

func (a *App) AddProduct(ctx context.Context, p *entity.Product) (int64, error) {
	return a.Add(ctx, p)
}

func (a *App) AddTemplate(ctx context.Context, t *entity.Template) (int64, error) {
	return a.Add(ctx, t)
}

func (a *App) AddGoal(ctx context.Context, g *entity.Goal) (int64, error) {
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().UnixMilli()
	}
	return a.Add(ctx, g)
}

func (a *App) AddExpense(ctx context.Context, e *entity.Expense) (int64, error) {
	if e.Date == 0 {
		e.Date = time.Now().UnixMilli()
	}
	return a.Add(ctx, e)
}

func (a *App) AddReminder(ctx context.Context, r *entity.Reminder) (int64, error) {
	return a.Add(ctx, r)
}

func (a *App) List(ctx context.Context, kind entity.Kind) ([]entity.Local, error) {
	return a.storage.List(ctx, kind)
}

func (a *App) Get(ctx context.Context, kind entity.Kind, id int64) (entity.Local, error) {
	return a.storage.Get(ctx, kind, id)
}

// RemoteID возвращает удаленный id локальной сущности, если она уже синхронизировалась
func (a *App) RemoteID(ctx context.Context, kind entity.Kind, id int64) (string, bool) {
	rid, err := a.storage.RemoteIDFor(ctx, kind, id)
	return rid, err == nil
}

// Wipe удаляет все локальные данные вместе с маппингами
func (a *App) Wipe(ctx context.Context) error {
	if !a.state.TryBeginSync() {
		return ErrSyncInProgress
	}
	err := a.storage.Wipe(ctx)
	a.state.EndSync()
	if err != nil {
		return fmt.Errorf("ошибка очистки хранилища: %w", err)
	}
	a.state.Reset()
	return nil
}

func (a *App) SyncToServer(ctx context.Context) (*SyncResult, error) {
	return a.syncService.SyncToServer(ctx)
}

func (a *App) SyncFromServer(ctx context.Context) (*SyncResult, error) {
	return a.syncService.SyncFromServer(ctx)
}

func (a *App) FullSync(ctx context.Context) (*SyncResult, error) {
	return a.syncService.FullSync(ctx)
}

func (a *App) GetSyncService() *SyncService {
	return a.syncService
}

// State снимок состояния синхронизации
func (a *App) State() SyncState {
	return a.state.State()
}

// Subscribe подписывает на изменения состояния синхронизации
func (a *App) Subscribe(fn func(SyncState)) func() {
	return a.state.Subscribe(fn)
}

func (a *App) Updates(ctx context.Context) <-chan SyncState {
	return a.state.Updates(ctx)
}

// checkRefs не дает сохранить сущность со ссылкой на несуществующего родителя
func (a *App) checkRefs(ctx context.Context, e entity.Local) error {
	type ref struct {
		kind entity.Kind
		id   int64
	}
	var refs []ref

	switch v := e.(type) {
	case *entity.Sale:
		refs = append(refs, ref{entity.KindClient, v.ClientID})
	case *entity.Payment:
		refs = append(refs, ref{entity.KindSale, v.SaleID})
	case *entity.Reminder:
		refs = append(refs, ref{entity.KindClient, v.ClientID})
		if v.SaleID != 0 {
			refs = append(refs, ref{entity.KindSale, v.SaleID})
		}
	}

	for _, r := range refs {
		if _, err := a.storage.Get(ctx, r.kind, r.id); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return fmt.Errorf("%w: %s #%d не найден", entity.ErrInvalidData, r.kind, r.id)
			}
			return err
		}
	}
	return nil
}

// checkChildren ищет сущности, ссылающиеся на удаляемого родителя
func (a *App) checkChildren(ctx context.Context, kind entity.Kind, id int64) error {
	var childKinds []entity.Kind
	switch kind {
	case entity.KindClient:
		childKinds = []entity.Kind{entity.KindSale, entity.KindReminder}
	case entity.KindSale:
		childKinds = []entity.Kind{entity.KindPayment, entity.KindReminder}
	default:
		return nil
	}

	for _, ck := range childKinds {
		children, err := a.storage.List(ctx, ck)
		if err != nil {
			return fmt.Errorf("ошибка проверки ссылок на %s: %w", kind, err)
		}
		for _, c := range children {
			if refersTo(c, kind, id) {
				return fmt.Errorf("%w: на %s #%d ссылается %s #%d",
					entity.ErrInvalidData, kind, id, c.Kind(), c.LocalID())
			}
		}
	}
	return nil
}

func refersTo(e entity.Local, kind entity.Kind, id int64) bool {
	switch v := e.(type) {
	case *entity.Sale:
		return kind == entity.KindClient && v.ClientID == id
	case *entity.Payment:
		return kind == entity.KindSale && v.SaleID == id
	case *entity.Reminder:
		if kind == entity.KindClient {
			return v.ClientID == id
		}
		return kind == entity.KindSale && v.SaleID == id
	}
	return false
}

// Hint возвращает пользовательскую подсказку для ошибки синхронизации
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Выполните вход: salesync auth login"
	case errors.Is(err, ErrOffline):
		return "Сервер недоступен, данные останутся локально до следующей синхронизации"
	case errors.Is(err, ErrSyncInProgress):
		return "Синхронизация уже выполняется"
	}
	return ""
}
