package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileCredentials хранит токен аутентификации в файле с правами 0600
type FileCredentials struct {
	path string
}

func NewFileCredentials(path string) *FileCredentials {
	return &FileCredentials{path: path}
}

// Token читает токен при каждом вызове, чтобы вход и выход из другого
// процесса были видны сразу
func (c *FileCredentials) Token() (string, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Save сохраняет токен аутентификации
func (c *FileCredentials) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("ошибка сохранения токена: %w", err)
	}
	return nil
}

// Clear удаляет токен
func (c *FileCredentials) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления токена: %w", err)
	}
	return nil
}
