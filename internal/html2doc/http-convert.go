package html2doc

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/encode"
	"github.com/aisa-it/html2doc/internal/html2doc/pipeline"
	stack_error "github.com/aisa-it/html2doc/internal/html2doc/stack-error"
	"github.com/labstack/echo/v4"
)

// ConvertRequest параметры преобразования. Для запроса с HTML в теле параметры берутся из query.
type ConvertRequest struct {
	HTML     string   `json:"html"`
	Format   string   `json:"format" validate:"format"`
	Select   string   `json:"select" validate:"selector"`
	Strip    []string `json:"strip" validate:"omitempty,dive,selector"`
	Sanitize *bool    `json:"sanitize"`
	Minify   *bool    `json:"minify"`
	NFC      *bool    `json:"nfc"`
}

func (r *ConvertRequest) hasOverrides() bool {
	return r.Select != "" || len(r.Strip) > 0 || r.Sanitize != nil || r.Minify != nil || r.NFC != nil
}

func (s *Server) convertHandler(c echo.Context) error {
	req, defErr := s.readConvertRequest(c)
	if defErr != nil {
		return EErrorDefined(c, *defErr)
	}

	format, err := encode.ParseFormat(req.Format)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrUnsupportedFormat.WithFormattedMessage(req.Format))
	}

	p := s.pipeline
	if req.hasOverrides() {
		opts := p.Options()
		if req.Select != "" {
			opts.Select = req.Select
		}
		if len(req.Strip) > 0 {
			opts.Strip = req.Strip
		}
		if req.Sanitize != nil {
			opts.Sanitize = *req.Sanitize
		}
		if req.Minify != nil {
			opts.MinifyInput = *req.Minify
		}
		if req.NFC != nil {
			opts.NFC = *req.NFC
		}
		if p, err = pipeline.New(opts); err != nil {
			return EErrorDefined(c, apierrors.ErrBadSelector.WithFormattedMessage(err.Error()))
		}
	}

	doc, err := p.ConvertString(c.Request().Context(), req.HTML)
	if err != nil {
		return EError(c, stack_error.TrackErrorStack(err).AddContext("format", string(format)))
	}

	b, err := encode.Marshal(doc, format)
	if err != nil {
		return EError(c, stack_error.TrackErrorStack(err).AddContext("stage", "encode").AddContext("format", string(format)))
	}
	return c.Blob(http.StatusOK, format.ContentType(), b)
}

// readConvertRequest читает JSON запрос или HTML тело с параметрами в query.
func (s *Server) readConvertRequest(c echo.Context) (*ConvertRequest, *apierrors.DefinedError) {
	req := &ConvertRequest{}
	ctype := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(ctype, echo.MIMEApplicationJSON) {
		if err := c.Bind(req); err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
				return nil, &apierrors.ErrEntityToLarge
			}
			return nil, &apierrors.ErrRequestValidate
		}
	} else {
		src, err := pipeline.Decode(c.Request().Body, ctype)
		if err != nil {
			return nil, decodeError(err, ctype)
		}
		req.HTML = src

		if err := bindQuery(c, req); err != nil {
			return nil, &apierrors.ErrRequestValidate
		}
	}

	if strings.TrimSpace(req.HTML) == "" {
		return nil, &apierrors.ErrEmptyBody
	}

	if err := c.Validate(req); err != nil {
		e := validationError(err)
		return nil, &e
	}
	return req, nil
}

func bindQuery(c echo.Context, req *ConvertRequest) error {
	req.Format = c.QueryParam("format")
	req.Select = c.QueryParam("select")
	req.Strip = c.QueryParams()["strip"]

	for name, dst := range map[string]**bool{
		"sanitize": &req.Sanitize,
		"minify":   &req.Minify,
		"nfc":      &req.NFC,
	} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst = &v
	}
	return nil
}

func decodeError(err error, ctype string) *apierrors.DefinedError {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge:
		return &apierrors.ErrEntityToLarge
	case errors.Is(err, pipeline.ErrUnsupportedCharset):
		e := apierrors.ErrUnsupportedCharset.WithFormattedMessage(ctype)
		return &e
	}
	return &apierrors.ErrGeneric
}
