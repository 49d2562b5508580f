// Ошибка с трассой мест возникновения и контекстом (этап преобразования, формат и т.п.) для одной записи в лог.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

type TrackerError struct {
	Context map[string]any
	// Trace места вызова TrackErrorStack, от первого к последнему (file.go:line)
	Trace []string
	cause error
}

// TrackErrorStack добавляет место вызова к трассе. Ошибка, уже содержащая TrackerError, дополняется,
// иначе оборачивается в новую.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{
			Context: make(map[string]any),
			cause:   err,
		}
	}
	te.Trace = append(te.Trace, callerLine(2))
	return te
}

// AddContext добавляет значение, если ключ еще не задан (сохраняется самый ранний контекст)
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

// Stage этап, на котором возникла ошибка, если он был указан
func (te *TrackerError) Stage() string {
	s, _ := te.Context["stage"].(string)
	return s
}

// GetError пишет ошибку в лог вместе с контекстом и запросом (c может быть nil)
func GetError(c echo.Context, err error) {
	var (
		te    *TrackerError
		attrs []any
	)
	if errors.As(err, &te) {
		attrs = te.attrs()
		slog.Debug("error trace", "trace", strings.Join(te.Trace, " <- "))
	} else {
		attrs = []any{slog.String("raw_error", err.Error())}
	}

	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
	}

	slog.Error("stack error", attrs...)
}

func (te *TrackerError) Error() string {
	if te.cause == nil {
		return "tracked error"
	}
	return te.cause.Error()
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// attrs контекст в порядке ключей и исходная ошибка
func (te *TrackerError) attrs() []any {
	res := make([]any, 0, len(te.Context)+1)
	for _, k := range slices.Sorted(maps.Keys(te.Context)) {
		res = append(res, slog.Any(k, te.Context[k]))
	}
	if te.cause != nil {
		res = append(res, slog.String("err", te.cause.Error()))
	}
	return res
}

func callerLine(skip int) string {
	_, path, no, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(path), no)
}
