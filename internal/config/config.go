package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config - настройки подключения и поведения. Приоритет источников:
// значения по умолчанию -> TOML-файл -> переменные окружения.
type Config struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`

	DefaultListUID string   `toml:"default_list"`
	TargetLists    []string `toml:"target_lists"`

	Nextcloud bool `toml:"nextcloud"`
	Insecure  bool `toml:"insecure"`
	ReadOnly  bool `toml:"read_only"`
	Debug     bool `toml:"debug"`
}

// Load читает конфигурацию. Пустой path означает файл по умолчанию
// (~/.config/tasksdav/config.toml); его отсутствие - не ошибка.
func Load(path string) (Config, error) {
	cfg := Config{Nextcloud: true}

	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".config", "tasksdav", "config.toml")
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	// Переменные окружения перекрывают файл
	cfg.URL = getEnv("CALDAV_URL", cfg.URL)
	cfg.Username = getEnv("CALDAV_USERNAME", cfg.Username)
	cfg.Password = getEnv("CALDAV_PASSWORD", cfg.Password)
	cfg.DefaultListUID = getEnv("TASKSDAV_DEFAULT_LIST", cfg.DefaultListUID)
	if lists := os.Getenv("TASKSDAV_TARGET_LISTS"); lists != "" {
		cfg.TargetLists = splitList(lists)
	}
	if os.Getenv("TASKSDAV_DEBUG") != "" {
		cfg.Debug = true
	}

	return cfg, nil
}

// Validate проверяет поля, без которых нельзя подключиться к серверу.
func (c Config) Validate() error {
	var missing []string
	if c.URL == "" {
		missing = append(missing, "url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
