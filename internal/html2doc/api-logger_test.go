package html2doc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/pipeline"
	stack_error "github.com/aisa-it/html2doc/internal/html2doc/stack-error"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"defined", apierrors.ErrEmptyBody, http.StatusBadRequest, 1001},
		{"wrapped defined", fmt.Errorf("read: %w", apierrors.ErrInvalidToken), http.StatusUnauthorized, 1006},
		{"no match", stack_error.TrackErrorStack(pipeline.ErrNoMatch), http.StatusUnprocessableEntity, 2002},
		{"minify", fmt.Errorf("%w: eof", pipeline.ErrMinify), http.StatusUnprocessableEntity, 2003},
		{"canceled", stack_error.TrackErrorStack(context.Canceled), http.StatusServiceUnavailable, 2004},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, 2004},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, 9001},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/convert/", nil), rec)

			require.NoError(t, EError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestEErrorMsgStatus(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPut, "/api/convert/", nil), rec)
	require.NoError(t, EErrorMsgStatus(c, echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"code":9000,"error":"Method Not Allowed","ru_error":"Некорректный запрос"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodPost, "/api/convert/", nil), rec)
	require.NoError(t, EErrorMsgStatus(c, nil, http.StatusRequestEntityTooLarge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 1002, errorCode(t, rec))
}
