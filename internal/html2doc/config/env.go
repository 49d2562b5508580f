package config

import (
	"os"
	"strconv"
	"strings"
)

// Exist - true, если переменная key задана (даже пустой)
func Exist(key string) bool {
	_, exist := os.LookupEnv(key)
	return exist
}

// GetEnv - значение переменной без пробелов по краям
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetIntEnv - числовое значение переменной, 0 при ошибке разбора
func GetIntEnv(key string) int {
	v, _ := strconv.Atoi(GetEnv(key))
	return v
}

// GetBoolEnv - логическое значение переменной (1, t, true, yes, on), false при ошибке разбора
func GetBoolEnv(key string) bool {
	switch strings.ToLower(GetEnv(key)) {
	case "yes", "on":
		return true
	}
	v, _ := strconv.ParseBool(GetEnv(key))
	return v
}

// GetListEnv - непустые элементы списка через запятую
func GetListEnv(key string) []string {
	var res []string
	for _, item := range strings.Split(GetEnv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			res = append(res, item)
		}
	}
	return res
}
