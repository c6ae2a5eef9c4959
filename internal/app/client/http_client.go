package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"salesync/internal/domain/entity"
	"salesync/internal/domain/user"
)

const userAgent = "Salesync-Client/1.0"

// TokenSource отдает текущий токен; false если пользователь не вошел
type TokenSource interface {
	Token() (string, bool)
}

// PushSummary ответ сервера на POST /sync/all
type PushSummary struct {
	Status   string         `json:"status"`
	Received map[string]int `json:"received"`
}

type httpClient struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	tokens  TokenSource
}

// NewHTTPClient создает клиента удаленного API. Таймаут не задан:
// запросы ограничены контекстом вызывающего.
func NewHTTPClient(serverAddress string, enableTLS bool, tokens TokenSource, log *slog.Logger) *httpClient {
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	// Определяем протокол
	scheme := "http://"
	if enableTLS {
		scheme = "https://"
	}

	return &httpClient{
		client:  client,
		log:     log.With("component", "http"),
		baseURL: scheme + serverAddress,
		tokens:  tokens,
	}
}

// HealthCheck проверяет доступность сервера
func (h *httpClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

// FetchAll загружает полный набор данных пользователя
func (h *httpClient) FetchAll(ctx context.Context) (*entity.Dataset, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/sync/all", nil)
	if err != nil {
		return nil, err
	}

	dataset := entity.NewDataset()
	if err := h.parseResponse(resp, dataset); err != nil {
		return nil, err
	}
	return dataset, nil
}

// PushAll отправляет все локальные сущности одним запросом
func (h *httpClient) PushAll(ctx context.Context, dataset *entity.Dataset) (*PushSummary, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/sync/all", dataset)
	if err != nil {
		return nil, err
	}

	var summary PushSummary
	if err := h.parseResponse(resp, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (h *httpClient) Register(ctx context.Context, login, password string) error {
	resp, err := h.doRequest(ctx, http.MethodPost, "/auth/register", user.BaseRequest{
		Login:    login,
		Password: password,
	})
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *httpClient) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/auth/login", user.BaseRequest{
		Login:    login,
		Password: password,
	})
	if err != nil {
		return "", err
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := h.parseResponse(resp, &loginResp); err != nil {
		return "", err
	}
	if loginResp.Token == "" {
		return "", &ServerError{StatusCode: resp.StatusCode, Message: "пустой токен в ответе"}
	}

	return loginResp.Token, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	// Добавляем заголовки
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.tokens != nil {
		if token, ok := h.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	h.log.Debug("Отправка запроса",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read response", Err: err}
	}

	h.log.Debug("Получен ответ",
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return &ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("ошибка парсинга ответа: %v", err)}
		}
	}

	return nil
}

const maxErrorMessageRunes = 200

// errorMessage достает текст ошибки из {"error": ...}, из problem+json
// ({"title","detail"}) или возвращает тело как есть
func errorMessage(body []byte) string {
	var errResp struct {
		Error  string `json:"error"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Error != "":
			return errResp.Error
		case errResp.Detail != "":
			return errResp.Detail
		case errResp.Title != "":
			return errResp.Title
		}
	}

	msg := []rune(string(bytes.TrimSpace(body)))
	if len(msg) > maxErrorMessageRunes {
		msg = msg[:maxErrorMessageRunes]
	}
	return string(msg)
}
