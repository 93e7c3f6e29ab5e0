// config — конфигурация ads-service и загрузка из YAML/ENV
// с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Известные виды источников каталога.
const (
	SourceAPI    = "api"
	SourcePazar3 = "pazar3"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Source    SourceConfig    `yaml:"source"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
	Limits    LimitsConfig    `yaml:"limits"`
	Debounce  DebounceConfig  `yaml:"debounce"`
	Session   SessionConfig   `yaml:"session"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// UpstreamConfig — апстрим с JSON-фидом объявлений.
type UpstreamConfig struct {
	// BaseURL — корень апстрима с /fetch_ads и /fetch_categories.
	BaseURL string        `yaml:"base_url" env:"UPSTREAM_BASE_URL"`
	Timeout time.Duration `yaml:"timeout"  env:"UPSTREAM_TIMEOUT" env-default:"15s"`
}

// SourceConfig — выбор источника каталога.
type SourceConfig struct {
	// Kind — api (JSON-фид) либо pazar3 (прямой скрейп листинга).
	Kind string `yaml:"kind" env:"SOURCE_KIND" env-default:"api"`
	// Pazar3URL — базовый URL листинга для скрейпера.
	Pazar3URL string `yaml:"pazar3_url" env:"SOURCE_PAZAR3_URL"`
	// Pazar3Pages — сколько страниц листинга обходить за проход.
	Pazar3Pages int `yaml:"pazar3_pages" env:"SOURCE_PAZAR3_PAGES" env-default:"3"`
}

// CatalogueConfig — жизненный цикл каталога.
type CatalogueConfig struct {
	// RefreshInterval — период фоновой перезагрузки фида; 0 — выключено.
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"REFRESH_INTERVAL" env-default:"10m"`
}

// LimitsConfig — объёмные лимиты выдачи.
type LimitsConfig struct {
	// PageSize — объявлений на страницу.
	PageSize int `yaml:"page_size" env:"PAGE_SIZE" env-default:"48"`
}

// DebounceConfig — коалесцирование всплесков ввода.
type DebounceConfig struct {
	// Interval — окно дебаунса для поиска и ценового диапазона; 0 — синхронно.
	Interval time.Duration `yaml:"interval" env:"DEBOUNCE_INTERVAL" env-default:"300ms"`
}

// SessionConfig — реестр сессионных контроллеров.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"30m"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		c, err := tryRead(path)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		c, err := tryRead(envPath)
		if err != nil {
			return nil, err
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		if err := cleanenv.ReadConfig("local.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read local.yaml: %w", err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourceAPI:
		if c.Upstream.BaseURL == "" {
			return fmt.Errorf("upstream.base_url is required for source.kind=api")
		}
	case SourcePazar3:
		if c.Source.Pazar3URL == "" {
			return fmt.Errorf("source.pazar3_url is required for source.kind=pazar3")
		}
		if c.Source.Pazar3Pages <= 0 {
			return fmt.Errorf("source.pazar3_pages must be > 0")
		}
	default:
		return fmt.Errorf("source.kind must be one of: %s, %s", SourceAPI, SourcePazar3)
	}

	if c.Limits.PageSize <= 0 {
		return fmt.Errorf("limits.page_size must be > 0")
	}
	if c.Debounce.Interval < 0 {
		return fmt.Errorf("debounce.interval must be >= 0")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0")
	}
	if c.Catalogue.RefreshInterval < 0 {
		return fmt.Errorf("catalogue.refresh_interval must be >= 0")
	}

	return nil
}
