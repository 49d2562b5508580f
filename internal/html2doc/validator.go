package html2doc

import (
	"errors"
	"strings"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/encode"
	"github.com/andybalholm/cascadia"
	"github.com/go-playground/validator"
)

// RequestValidator проверка параметров запроса преобразования.
// Дополнительные теги: selector (CSS селектор компилируется cascadia) и format (формат результата).
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	for tag, fn := range map[string]validator.Func{
		"selector": isSelector,
		"format":   isFormat,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &RequestValidator{validate: v}
}

// Validate возвращает только ошибки валидации полей, InvalidValidationError (не структура) игнорируется.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if _, ok := err.(validator.ValidationErrors); ok {
		return err
	}
	return nil
}

// validationError ошибка API для первого не прошедшего проверку поля
func validationError(err error) apierrors.DefinedError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierrors.ErrRequestValidate
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "selector":
		return apierrors.ErrBadSelector.WithFormattedMessage(fe.Value())
	case "format":
		return apierrors.ErrUnsupportedFormat.WithFormattedMessage(fe.Value())
	}
	return apierrors.ErrRequestValidate
}

// Пустой селектор допустим и означает отсутствие выбора
func isSelector(fl validator.FieldLevel) bool {
	sel := strings.TrimSpace(fl.Field().String())
	if sel == "" {
		return true
	}
	_, err := cascadia.Compile(sel)
	return err == nil
}

func isFormat(fl validator.FieldLevel) bool {
	_, err := encode.ParseFormat(fl.Field().String())
	return err == nil
}
