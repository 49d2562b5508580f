// Ответы HTTP API с ошибками.
//
// Основные возможности:
//   - Единый формат ответа с ошибкой (apierrors.DefinedError).
//   - Сопоставление ошибок преобразования кодам API.
//   - Логирование непредвиденных ошибок с трассой и местом вызова.
package html2doc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/pipeline"
	stack_error "github.com/aisa-it/html2doc/internal/html2doc/stack-error"
	"github.com/labstack/echo/v4"
)

// EError отвечает ошибкой API. DefinedError и известные ошибки преобразования возвращаются как есть,
// остальные пишутся в лог и отвечают ErrInternal.
func EError(c echo.Context, err error) error {
	var defined apierrors.DefinedError
	if errors.As(err, &defined) {
		return EErrorDefined(c, defined)
	}
	if mapped, ok := conversionError(err); ok {
		slog.Debug("Conversion failed", "err", err, "url", c.Request().URL, getCallerFile())
		return EErrorDefined(c, mapped)
	}

	stack_error.GetError(c, err)
	return EErrorDefined(c, apierrors.ErrInternal)
}

// EErrorMsgStatus ответ на ошибку маршрутизации или middleware с HTTP статусом status
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status

	var he *echo.HTTPError
	if errors.As(err, &he) {
		er.Err = fmt.Sprint(he.Message)
	}

	if status >= http.StatusInternalServerError {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

func conversionError(err error) (apierrors.DefinedError, bool) {
	switch {
	case errors.Is(err, pipeline.ErrNoMatch):
		return apierrors.ErrSelectNoMatch, true
	case errors.Is(err, pipeline.ErrMinify):
		return apierrors.ErrMinifyFailed, true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierrors.ErrConvertTimeout, true
	}
	return apierrors.DefinedError{}, false
}

// getCallerFile возвращает файл и строку, из которых была вызвана функция логирования.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	return slog.String("caller", fmt.Sprintf("%s:%d", filepath.Base(path), no))
}
