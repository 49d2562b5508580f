// Package encode сериализует дерево документа в выбранный формат.
package encode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aisa-it/html2doc/internal/html2doc/doctree"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	JSON       Format = "json"
	JSONPretty Format = "json-pretty"
	YAML       Format = "yaml"
	Msgpack    Format = "msgpack"
	// Text только текст документа без структуры
	Text Format = "text"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

// Formats список поддерживаемых форматов в порядке вывода в справке
var Formats = []Format{JSON, JSONPretty, YAML, Msgpack, Text}

// ParseFormat разбирает имя формата без учета регистра. Пустая строка означает JSON.
func ParseFormat(raw string) (Format, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "", "json":
		return JSON, nil
	case "json-pretty", "pretty":
		return JSONPretty, nil
	case "yaml", "yml":
		return YAML, nil
	case "msgpack", "mp":
		return Msgpack, nil
	case "text", "txt":
		return Text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
}

func (f Format) ContentType() string {
	switch f {
	case YAML:
		return "application/yaml"
	case Msgpack:
		return "application/msgpack"
	case Text:
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Ext расширение файла для результата
func (f Format) Ext() string {
	switch f {
	case YAML:
		return ".yaml"
	case Msgpack:
		return ".msgpack"
	case Text:
		return ".txt"
	}
	return ".json"
}

// Write пишет документ в w. JSON и текст завершаются переводом строки.
func Write(w io.Writer, doc *doctree.Node, f Format) error {
	switch f {
	case JSON, JSONPretty:
		enc := json.NewEncoder(w)
		if f == JSONPretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(doc)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case Msgpack:
		return msgpack.NewEncoder(w).Encode(doc)
	case Text:
		_, err := io.WriteString(w, doctree.ToString(doc)+"\n")
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// Marshal то же, что Write, но возвращает байты.
func Marshal(doc *doctree.Node, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
