// Управление конфигурацией сервиса из переменных окружения.
// Содержит структуру Config и функцию ReadConfig для ее загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из TOML файла и переменных окружения по тегам struct.
//   - Преобразование типов (string, int, bool, список через запятую).
//   - Маскировка секретных значений в логах.
//   - Значения по умолчанию и ограничение числа воркеров.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	DefaultHTTPAddr    = ":8080"
	DefaultMetricsAddr = ":2112"
	DefaultBodyLimit   = "5M"
	DefaultWorkers     = 4
	MaxWorkers         = 64
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" toml:"http_addr"`
	MetricsAddr string `env:"METRICS_ADDR" toml:"metrics_addr"`
	BodyLimit   string `env:"BODY_LIMIT" toml:"body_limit"`
	AccessToken string `env:"ACCESS_TOKEN" toml:"access_token"`

	Sanitize    bool     `env:"SANITIZE" toml:"sanitize"`
	MinifyInput bool     `env:"MINIFY_INPUT" toml:"minify_input"`
	NFC         bool     `env:"NFC" toml:"nfc"`
	KeepAttrs   []string `env:"KEEP_ATTRS" toml:"keep_attrs"`
	Select      string   `env:"SELECT" toml:"select"`
	Strip       []string `env:"STRIP" toml:"strip"`

	// RateLimit число запросов преобразования с одного IP в минуту, 0 без ограничения
	RateLimit int `env:"RATE_LIMIT" toml:"rate_limit"`

	Workers int  `env:"WORKERS" toml:"workers"`
	Trace   bool `env:"TRACE" toml:"trace"`

	// BodyLimitBytes разобранное значение BodyLimit
	BodyLimitBytes uint64 `toml:"-"`
}

// ReadConfig загружает конфигурацию из файла CONFIG_FILE (если задан) и переменных окружения.
// При некорректных значениях приложение завершается с ошибкой.
func ReadConfig() *Config {
	return ReadConfigFile(GetEnv("CONFIG_FILE"))
}

// ReadConfigFile как ReadConfig, но с явным путем к TOML файлу. Переменные окружения имеют приоритет над файлом.
func ReadConfigFile(path string) *Config {
	config := &Config{}

	if path != "" {
		if err := LoadFile(path, config); err != nil {
			slog.Error("Fail read config file", "err", err)
			os.Exit(1)
		}
	}

	envConfig("env", config)

	if err := config.Normalize(); err != nil {
		slog.Error("Incorrect config", "err", err)
		os.Exit(1)
	}

	return config
}

// Normalize подставляет значения по умолчанию и проверяет значения.
func (c *Config) Normalize() error {
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = DefaultMetricsAddr
	}
	if c.BodyLimit == "" {
		c.BodyLimit = DefaultBodyLimit
	}

	limit, err := humanize.ParseBytes(c.BodyLimit)
	if err != nil {
		return fmt.Errorf("BODY_LIMIT incorrect: %w", err)
	}
	if limit == 0 {
		return fmt.Errorf("BODY_LIMIT must be positive")
	}
	c.BodyLimitBytes = limit

	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}

	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}

	return nil
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		raw := GetEnv(fEnvTag)
		if raw == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", maskSecret(fName, raw)),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(raw)
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		case []string:
			v.Field(i).Set(reflect.ValueOf(GetListEnv(fEnvTag)))
		}
	}
}

// maskSecret оставляет первый и последний символ значения секретных полей
func maskSecret(field, value string) string {
	name := strings.ToLower(field)
	if !strings.Contains(name, "pass") && !strings.Contains(name, "secret") && !strings.Contains(name, "token") {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
