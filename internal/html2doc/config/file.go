package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadFile заполняет c значениями из TOML файла. Неизвестные ключи только логируются.
func LoadFile(path string, c *Config) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("Unknown config keys", "file", path, "keys", strings.Join(keys, ","))
	}

	for _, key := range meta.Keys() {
		slog.Info("Set config value",
			slog.String("key", key.String()),
			slog.String("source", path),
		)
	}
	return nil
}
