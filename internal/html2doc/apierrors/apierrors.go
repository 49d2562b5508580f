// Пакет содержит определения ошибок HTTP API преобразования. Каждая ошибка имеет код, статус HTTP и описание на английском и русском.
//
// Основные возможности:
//   - Коды ошибок, сгруппированные по категориям (запрос, преобразование, общие).
//   - Статус HTTP для ответа.
//   - Форматирование сообщений с аргументами.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	RuErr      string `json:"ru_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - request errors
	ErrEmptyBody          = DefinedError{Code: 1001, StatusCode: http.StatusBadRequest, Err: "request body is empty", RuErr: "Тело запроса пустое"}
	ErrEntityToLarge      = DefinedError{Code: 1002, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Размер запроса превышает допустимый"}
	ErrUnsupportedCharset = DefinedError{Code: 1003, StatusCode: http.StatusUnsupportedMediaType, Err: "unsupported charset: %s", RuErr: "Неподдерживаемая кодировка: %s"}
	ErrUnsupportedFormat  = DefinedError{Code: 1004, StatusCode: http.StatusBadRequest, Err: "unsupported output format: %s", RuErr: "Неподдерживаемый формат результата: %s"}
	ErrRequestValidate    = DefinedError{Code: 1005, StatusCode: http.StatusBadRequest, Err: "request validation failed", RuErr: "Некорректные параметры запроса"}
	ErrInvalidToken       = DefinedError{Code: 1006, StatusCode: http.StatusUnauthorized, Err: "invalid access token", RuErr: "Неверный токен доступа"}
	ErrTooManyRequests    = DefinedError{Code: 1007, StatusCode: http.StatusTooManyRequests, Err: "too many requests", RuErr: "Слишком много запросов"}

	// 2*** - conversion errors
	ErrBadSelector    = DefinedError{Code: 2001, StatusCode: http.StatusBadRequest, Err: "invalid CSS selector: %s", RuErr: "Некорректный CSS селектор: %s"}
	ErrSelectNoMatch  = DefinedError{Code: 2002, StatusCode: http.StatusUnprocessableEntity, Err: "selector matched nothing", RuErr: "Селектор не нашел ни одного элемента"}
	ErrMinifyFailed   = DefinedError{Code: 2003, StatusCode: http.StatusUnprocessableEntity, Err: "failed to normalize input markup", RuErr: "Не удалось нормализовать входную разметку"}
	ErrConvertTimeout = DefinedError{Code: 2004, StatusCode: http.StatusServiceUnavailable, Err: "conversion cancelled", RuErr: "Преобразование прервано"}

	// 9*** - general errors
	ErrGeneric  = DefinedError{Code: 9000, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}
	ErrInternal = DefinedError{Code: 9001, StatusCode: http.StatusInternalServerError, Err: "internal error", RuErr: "Внутренняя ошибка сервера"}
)

// All список всех ошибок для генерации документации
var All = []DefinedError{
	ErrEmptyBody, ErrEntityToLarge, ErrUnsupportedCharset, ErrUnsupportedFormat, ErrRequestValidate, ErrInvalidToken, ErrTooManyRequests,
	ErrBadSelector, ErrSelectNoMatch, ErrMinifyFailed, ErrConvertTimeout,
	ErrGeneric, ErrInternal,
}

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
